package lz4stream

import (
	"errors"
	"testing"

	"github.com/pierrec/lz4/v4"
)

func TestBlockSizeBytes(t *testing.T) {
	cases := []struct {
		size BlockSize
		want int
	}{
		{BlockSizeDefault, 4 << 20},
		{BlockSize64KB, 64 << 10},
		{BlockSize256KB, 256 << 10},
		{BlockSize1MB, 1 << 20},
		{BlockSize4MB, 4 << 20},
	}
	for _, c := range cases {
		if got := c.size.Bytes(); got != c.want {
			t.Errorf("BlockSize(%d).Bytes() = %d, want %d", c.size, got, c.want)
		}
	}
}

func TestCodecParamsTranslation(t *testing.T) {
	p := Preferences{
		BlockSize:       BlockSize256KB,
		BlockMode:       BlockIndependent,
		BlockChecksum:   true,
		ContentChecksum: true,
		Level:           LevelMax,
		AutoFlush:       true,
	}
	params := p.codecParams()
	if params.BlockSizeIdx != 5 {
		t.Errorf("block size index = %d, want 5", params.BlockSizeIdx)
	}
	if params.Linked {
		t.Error("independent mode translated as linked")
	}
	if !params.BlockChecksum || !params.ContentChecksum || !params.AutoFlush {
		t.Error("boolean flags lost in translation")
	}
	if params.Level != lz4.Level9 {
		t.Errorf("level = %v, want %v", params.Level, lz4.Level9)
	}

	// Zero value: linked 4MB blocks, fast compressor.
	params = Preferences{}.codecParams()
	if params.BlockSizeIdx != 7 || !params.Linked || params.Level != lz4.Fast {
		t.Errorf("zero-value translation = %+v", params)
	}
}

func TestLevelMapping(t *testing.T) {
	cases := []struct {
		level CompressionLevel
		want  lz4.CompressionLevel
	}{
		{LevelFast, lz4.Fast},
		{LevelMin, lz4.Level3},
		{LevelDefault, lz4.Level6},
		{LevelOptMin, lz4.Level8},
		{LevelMax, lz4.Level9},
	}
	for _, c := range cases {
		if got := c.level.lz4Level(); got != c.want {
			t.Errorf("level %d maps to %v, want %v", c.level, got, c.want)
		}
	}
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	cases := []struct {
		name  string
		prefs Preferences
		field string
	}{
		{"block size", Preferences{BlockSize: 3}, "BlockSize"},
		{"block mode", Preferences{BlockMode: 2}, "BlockMode"},
		{"level", Preferences{Level: 7}, "Level"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.prefs.Validate()
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("err = %v, want a ConfigError", err)
			}
			if cerr.Field != c.field {
				t.Fatalf("field = %q, want %q", cerr.Field, c.field)
			}
		})
	}
}

func TestNewWriterValidates(t *testing.T) {
	if _, err := NewWriter(nil, Preferences{Level: 42}); err == nil {
		t.Fatal("invalid preferences accepted")
	}
}
