// Package codec implements the LZ4 frame container on top of the block
// primitives from github.com/pierrec/lz4/v4. An encode context turns raw
// chunks into frame bytes (header, length-prefixed blocks, end mark,
// checksums); a decode context walks frame bytes back into raw output,
// reporting after every call how many more source bytes it wants.
//
// Contexts are stateful and owned by exactly one stream; they are not safe
// for concurrent use.
package codec

import (
	"errors"

	"github.com/pierrec/lz4/v4"
)

// Frame-level decode failures.
var (
	ErrInvalidMagic    = errors.New("invalid frame magic number")
	ErrLegacyFrame     = errors.New("legacy lz4 stream format not supported")
	ErrVersion         = errors.New("unsupported frame version")
	ErrDescriptor      = errors.New("invalid frame descriptor")
	ErrDictionary      = errors.New("frames requiring an external dictionary not supported")
	ErrHeaderChecksum  = errors.New("frame header checksum mismatch")
	ErrBlockChecksum   = errors.New("block checksum mismatch")
	ErrContentChecksum = errors.New("content checksum mismatch")
	ErrContentSize     = errors.New("content size does not match frame header")
	ErrBlockTooLarge   = errors.New("block exceeds declared maximum block size")
)

// Params configures an encode context. It is the codec-native translation
// of the user-facing stream preferences.
type Params struct {
	// BlockSizeIdx is the frame descriptor block maximum size index (4-7).
	BlockSizeIdx byte
	// Linked clears the block independence flag in the frame descriptor.
	Linked bool
	// BlockChecksum appends an XXH32 checksum after every block.
	BlockChecksum bool
	// ContentChecksum appends an XXH32 checksum of the whole content
	// after the end mark.
	ContentChecksum bool
	// AutoFlush makes every Update emit a block instead of accumulating
	// input until a full block is available.
	AutoFlush bool
	// Level selects the block compression level; lz4.Fast (the zero
	// value) selects the fast compressor, anything else the HC one.
	Level lz4.CompressionLevel
}

// BlockSize returns the configured block maximum size in bytes.
func (p Params) BlockSize() int { return BlockSizeForIndex(p.BlockSizeIdx) }

// EncodeContext produces one LZ4 frame incrementally. All operations write
// into the caller-provided destination, which must hold at least
// FrameBound(blockSize, params) bytes, and return the number of bytes
// produced. Update input must not exceed the configured block size per call.
type EncodeContext interface {
	// Begin emits the frame header.
	Begin(dst []byte) (int, error)
	// Update compresses one chunk. A zero return with no error means the
	// chunk was buffered and will be emitted by a later call.
	Update(dst, src []byte) (int, error)
	// Flush emits any buffered input as a (possibly short) block.
	Flush(dst []byte) (int, error)
	// End flushes buffered input and emits the frame footer. The context
	// can encode another frame afterwards, starting with Begin.
	End(dst []byte) (int, error)
	// Release frees the context's internal buffers. Call exactly once.
	Release()
}

// DecodeContext consumes one LZ4 frame incrementally. Decompress consumes
// a prefix of src, produces a prefix of dst and returns a hint of how many
// further source bytes are advisable before the next call; a zero hint with
// zero produced bytes marks the end of the frame.
type DecodeContext interface {
	Decompress(dst, src []byte) (produced, consumed, hint int, err error)
	// BlockBoundary reports whether the context sits between whole frame
	// items, i.e. the source may stop here without truncating anything.
	BlockBoundary() bool
	// Reset returns the context to its initial state, keeping its buffers.
	Reset()
	// Release frees the context's internal buffers. Call exactly once.
	Release()
}

const (
	blockLenSize = 4
	checksumSize = 4
	endMarkSize  = 4

	// storedBit marks an uncompressed block in its length word.
	storedBit = 1 << 31
)

// FrameBound returns the worst-case number of bytes a single context
// operation may produce for the given block size: one incompressible block
// with its length prefix and optional checksum, plus the frame footer. The
// frame header is always smaller for any legal block size.
func FrameBound(blockSize int, p Params) int {
	n := blockLenSize + lz4.CompressBlockBound(blockSize) + endMarkSize + checksumSize
	if p.BlockChecksum {
		n += checksumSize
	}
	return n
}
