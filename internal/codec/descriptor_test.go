package codec

import (
	"testing"

	"github.com/pierrec/xxHash/xxHash32"
)

func TestBlockSizeForIndex(t *testing.T) {
	cases := []struct {
		idx  byte
		want int
	}{
		{4, 64 << 10},
		{5, 256 << 10},
		{6, 1 << 20},
		{7, 4 << 20},
		{0, 0},
		{3, 0},
		{8, 0},
	}
	for _, c := range cases {
		if got := BlockSizeForIndex(c.idx); got != c.want {
			t.Errorf("BlockSizeForIndex(%d) = %d, want %d", c.idx, got, c.want)
		}
	}
}

func TestFlagsBits(t *testing.T) {
	f := Flags(0x74) // version 1, independent, block checksums, content checksum
	if f.Version() != 1 {
		t.Errorf("version = %d, want 1", f.Version())
	}
	if !f.BlockIndependent() {
		t.Error("expected independent blocks")
	}
	if !f.BlockChecksum() {
		t.Error("expected block checksums")
	}
	if !f.ContentChecksum() {
		t.Error("expected content checksum")
	}
	if f.HasContentSize() {
		t.Error("unexpected content size flag")
	}
	if f.HasDictID() {
		t.Error("unexpected dict id flag")
	}
	if f.reservedSet() {
		t.Error("unexpected reserved bit")
	}
}

func TestBlockDescIndex(t *testing.T) {
	if got := BlockDesc(0x40).Index(); got != 4 {
		t.Errorf("index = %d, want 4", got)
	}
	if got := BlockDesc(0x70).Index(); got != 7 {
		t.Errorf("index = %d, want 7", got)
	}
	if !BlockDesc(0x41).reservedSet() {
		t.Error("low reserved bits not detected")
	}
	if !BlockDesc(0xC0).reservedSet() {
		t.Error("high reserved bit not detected")
	}
}

func TestHeaderChecksum(t *testing.T) {
	desc := []byte{0x60, 0x40}
	want := byte(xxHash32.Checksum(desc, 0) >> 8)
	if got := HeaderChecksum(desc); got != want {
		t.Errorf("HeaderChecksum = 0x%02x, want 0x%02x", got, want)
	}
}

func TestIsSkippableMagic(t *testing.T) {
	for m := uint32(0x184D2A50); m <= 0x184D2A5F; m++ {
		if !IsSkippableMagic(m) {
			t.Errorf("0x%08x should be skippable", m)
		}
	}
	if IsSkippableMagic(FrameMagic) {
		t.Error("frame magic reported skippable")
	}
	if IsSkippableMagic(LegacyMagic) {
		t.Error("legacy magic reported skippable")
	}
}
