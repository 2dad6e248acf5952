package codec

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/pierrec/lz4/v4"
	"github.com/pierrec/xxHash/xxHash32"
)

// encoder is the production EncodeContext. The fast and HC compressors keep
// their hash tables across blocks, so one context amortizes that allocation
// over the whole stream.
type encoder struct {
	p         Params
	blockSize int
	fast      lz4.Compressor
	hc        lz4.CompressorHC
	// pending accumulates input until a full block is available when
	// AutoFlush is off. Never holds more than one block.
	pending []byte
	sum     hash.Hash32
}

// NewEncodeContext creates an encode context for one or more frames
// produced sequentially with the given parameters.
func NewEncodeContext(p Params) (EncodeContext, error) {
	blockSize := p.BlockSize()
	if blockSize == 0 {
		return nil, fmt.Errorf("%w: block size index %d", ErrDescriptor, p.BlockSizeIdx)
	}
	e := &encoder{
		p:         p,
		blockSize: blockSize,
		hc:        lz4.CompressorHC{Level: p.Level},
	}
	if !p.AutoFlush {
		e.pending = make([]byte, 0, blockSize)
	}
	return e, nil
}

func (e *encoder) Begin(dst []byte) (int, error) {
	binary.LittleEndian.PutUint32(dst, FrameMagic)

	flags := Flags(descriptorVersion << 6)
	if !e.p.Linked {
		flags |= flagBlockIndep
	}
	if e.p.BlockChecksum {
		flags |= flagBlockChecksum
	}
	if e.p.ContentChecksum {
		flags |= flagContentChecksum
		if e.sum == nil {
			e.sum = xxHash32.New(0)
		}
		e.sum.Reset()
	}
	dst[4] = byte(flags)
	dst[5] = byte(BlockDesc(e.p.BlockSizeIdx << 4))
	dst[6] = HeaderChecksum(dst[4:6])
	return 7, nil
}

func (e *encoder) Update(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	if len(src) > e.blockSize {
		return 0, fmt.Errorf("update chunk of %d bytes exceeds block size %d", len(src), e.blockSize)
	}
	if e.sum != nil {
		e.sum.Write(src)
	}
	if e.p.AutoFlush {
		// Nothing is ever left pending in auto-flush mode; the chunk
		// becomes a block of its own.
		return e.emitBlock(dst, src)
	}
	var written int
	for len(src) > 0 {
		if len(e.pending) == 0 && len(src) == e.blockSize {
			n, err := e.emitBlock(dst[written:], src)
			return written + n, err
		}
		take := e.blockSize - len(e.pending)
		if take > len(src) {
			take = len(src)
		}
		e.pending = append(e.pending, src[:take]...)
		src = src[take:]
		if len(e.pending) == e.blockSize {
			n, err := e.emitBlock(dst[written:], e.pending)
			written += n
			e.pending = e.pending[:0]
			if err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

func (e *encoder) Flush(dst []byte) (int, error) {
	if len(e.pending) == 0 {
		return 0, nil
	}
	n, err := e.emitBlock(dst, e.pending)
	e.pending = e.pending[:0]
	return n, err
}

func (e *encoder) End(dst []byte) (int, error) {
	written, err := e.Flush(dst)
	if err != nil {
		return written, err
	}
	binary.LittleEndian.PutUint32(dst[written:], 0) // end mark
	written += endMarkSize
	if e.sum != nil {
		binary.LittleEndian.PutUint32(dst[written:], e.sum.Sum32())
		written += checksumSize
	}
	return written, nil
}

func (e *encoder) Release() {
	e.pending = nil
	e.sum = nil
}

// emitBlock writes one length-prefixed block for src into dst. Incompressible
// input is stored verbatim with the high bit set in the length word.
func (e *encoder) emitBlock(dst, src []byte) (int, error) {
	body := dst[blockLenSize:]
	var (
		n   int
		err error
	)
	if e.p.Level == lz4.Fast {
		n, err = e.fast.CompressBlock(src, body)
	} else {
		n, err = e.hc.CompressBlock(src, body)
	}
	if err != nil {
		return 0, fmt.Errorf("lz4 block compress: %w", err)
	}
	if n == 0 || n >= len(src) {
		// Not compressible; store as-is.
		n = copy(body, src)
		binary.LittleEndian.PutUint32(dst, uint32(n)|storedBit)
	} else {
		binary.LittleEndian.PutUint32(dst, uint32(n))
	}
	total := blockLenSize + n
	if e.p.BlockChecksum {
		binary.LittleEndian.PutUint32(dst[total:], xxHash32.Checksum(body[:n], 0))
		total += checksumSize
	}
	return total, nil
}
