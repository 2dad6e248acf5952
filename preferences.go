package lz4stream

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/harshithgowdakt/lz4stream/internal/codec"
)

// BlockSize selects the maximum size of a frame block. The values are the
// block size indexes of the frame descriptor.
type BlockSize int

const (
	// BlockSizeDefault selects 4MB blocks.
	BlockSizeDefault BlockSize = 0
	BlockSize64KB    BlockSize = 4
	BlockSize256KB   BlockSize = 5
	BlockSize1MB     BlockSize = 6
	BlockSize4MB     BlockSize = 7
)

// index returns the frame descriptor block size index.
func (b BlockSize) index() byte {
	if b == BlockSizeDefault {
		return byte(BlockSize4MB)
	}
	return byte(b)
}

// Bytes returns the block size in bytes.
func (b BlockSize) Bytes() int {
	return codec.BlockSizeForIndex(b.index())
}

// BlockMode selects whether blocks may reference match history from earlier
// blocks in the frame.
type BlockMode int

const (
	// BlockLinked lets later blocks reference earlier ones, which
	// improves ratio but forces sequential decompression.
	BlockLinked BlockMode = 0
	// BlockIndependent compresses every block on its own.
	BlockIndependent BlockMode = 1
)

// CompressionLevel selects the effort spent on block compression.
type CompressionLevel int

const (
	LevelFast    CompressionLevel = 0
	LevelMin     CompressionLevel = 3
	LevelDefault CompressionLevel = 6
	LevelOptMin  CompressionLevel = 8
	LevelMax     CompressionLevel = 9
)

// lz4Level maps a level to its pierrec block compressor equivalent.
func (l CompressionLevel) lz4Level() lz4.CompressionLevel {
	switch l {
	case LevelMin:
		return lz4.Level3
	case LevelDefault:
		return lz4.Level6
	case LevelOptMin:
		return lz4.Level8
	case LevelMax:
		return lz4.Level9
	default:
		return lz4.Fast
	}
}

// Preferences configures a Writer. The zero value compresses with the fast
// compressor into linked 4MB blocks with no checksums, matching the lz4
// frame defaults. Preferences are copied at construction and immutable
// afterwards.
type Preferences struct {
	BlockSize BlockSize
	BlockMode BlockMode
	// BlockChecksum appends an XXH32 checksum after every block.
	BlockChecksum bool
	// ContentChecksum appends an XXH32 checksum of the whole decompressed
	// content to the frame footer.
	ContentChecksum bool
	Level           CompressionLevel
	// AutoFlush emits a block on every Write instead of accumulating
	// input until a full block is available.
	AutoFlush bool
	// FavorDecSpeed is accepted for preference-set compatibility; the
	// block compressor used here has no equivalent tunable.
	FavorDecSpeed bool
}

// Validate checks that every enum field holds one of its defined values.
func (p Preferences) Validate() error {
	switch p.BlockSize {
	case BlockSizeDefault, BlockSize64KB, BlockSize256KB, BlockSize1MB, BlockSize4MB:
	default:
		return &ConfigError{Field: "BlockSize", Reason: fmt.Sprintf("unknown value %d", p.BlockSize)}
	}
	switch p.BlockMode {
	case BlockLinked, BlockIndependent:
	default:
		return &ConfigError{Field: "BlockMode", Reason: fmt.Sprintf("unknown value %d", p.BlockMode)}
	}
	switch p.Level {
	case LevelFast, LevelMin, LevelDefault, LevelOptMin, LevelMax:
	default:
		return &ConfigError{Field: "Level", Reason: fmt.Sprintf("unknown value %d", p.Level)}
	}
	return nil
}

// codecParams translates the preferences into codec parameters. Pure and
// deterministic; enum values are validated beforehand.
func (p Preferences) codecParams() codec.Params {
	return codec.Params{
		BlockSizeIdx:    p.BlockSize.index(),
		Linked:          p.BlockMode == BlockLinked,
		BlockChecksum:   p.BlockChecksum,
		ContentChecksum: p.ContentChecksum,
		AutoFlush:       p.AutoFlush,
		Level:           p.Level.lz4Level(),
	}
}
