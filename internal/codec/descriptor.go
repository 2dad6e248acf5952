package codec

import (
	"github.com/pierrec/xxHash/xxHash32"
)

// Frame magic numbers, little-endian on the wire.
const (
	// FrameMagic starts a regular LZ4 frame.
	FrameMagic uint32 = 0x184D2204
	// LegacyMagic starts a legacy (pre frame format) LZ4 stream.
	LegacyMagic uint32 = 0x184C2102
	// skippableMagicBase is the lowest of the 16 skippable-frame magic
	// numbers; the low nibble is user-defined.
	skippableMagicBase uint32 = 0x184D2A50
)

// IsSkippableMagic reports whether magic starts a skippable frame.
func IsSkippableMagic(magic uint32) bool {
	return magic&^0xF == skippableMagicBase
}

// Flags is the FLG byte of the frame descriptor.
//
//	bits 7-6: version (must be 01)
//	bit  5:   block independence
//	bit  4:   block checksums present
//	bit  3:   content size present in header
//	bit  2:   content checksum present after end mark
//	bit  1:   reserved, must be 0
//	bit  0:   dictionary id present in header
type Flags byte

const (
	flagDictID          Flags = 1 << 0
	flagReserved        Flags = 1 << 1
	flagContentChecksum Flags = 1 << 2
	flagContentSize     Flags = 1 << 3
	flagBlockChecksum   Flags = 1 << 4
	flagBlockIndep      Flags = 1 << 5

	descriptorVersion = 1
)

// Version returns the frame format version bits.
func (f Flags) Version() int { return int(f >> 6) }

// BlockIndependent reports whether blocks are compressed independently.
func (f Flags) BlockIndependent() bool { return f&flagBlockIndep != 0 }

// BlockChecksum reports whether each block is followed by a checksum.
func (f Flags) BlockChecksum() bool { return f&flagBlockChecksum != 0 }

// HasContentSize reports whether the header carries the content size.
func (f Flags) HasContentSize() bool { return f&flagContentSize != 0 }

// ContentChecksum reports whether the frame ends with a content checksum.
func (f Flags) ContentChecksum() bool { return f&flagContentChecksum != 0 }

// HasDictID reports whether the header carries a dictionary id.
func (f Flags) HasDictID() bool { return f&flagDictID != 0 }

func (f Flags) reservedSet() bool { return f&flagReserved != 0 }

// BlockDesc is the BD byte of the frame descriptor; bits 6-4 hold the
// block maximum size index, all other bits are reserved.
type BlockDesc byte

// Index returns the block maximum size index (valid values are 4 to 7).
func (b BlockDesc) Index() byte { return byte(b>>4) & 0x7 }

func (b BlockDesc) reservedSet() bool { return b&0x8F != 0 }

// Valid block size indexes per the frame format.
const (
	minBlockSizeIndex = 4
	maxBlockSizeIndex = 7
)

// BlockSizeForIndex returns the block maximum size in bytes for a
// descriptor index, or 0 if the index is out of range.
func BlockSizeForIndex(idx byte) int {
	if idx < minBlockSizeIndex || idx > maxBlockSizeIndex {
		return 0
	}
	// 4 -> 64KB, 5 -> 256KB, 6 -> 1MB, 7 -> 4MB
	return 1 << (8 + 2*idx)
}

// HeaderChecksum computes the HC byte over the descriptor bytes
// (everything after the magic number, excluding the HC byte itself).
func HeaderChecksum(desc []byte) byte {
	return byte(xxHash32.Checksum(desc, 0) >> 8)
}
