package lz4stream

import (
	"io"

	"github.com/harshithgowdakt/lz4stream/internal/codec"
)

// readAheadSize is the capacity of the compressed read-ahead buffer.
const readAheadSize = 64 << 10

// maxEmptyReads bounds the number of zero-byte source reads tolerated in a
// row before giving up, mirroring the stdlib io policy.
const maxEmptyReads = 100

// Reader decompresses an LZ4 frame pulled on demand from a source. It
// implements io.Reader, returning io.EOF once the frame's logical end is
// reached. Not safe for concurrent use.
type Reader struct {
	src io.Reader
	ctx codec.DecodeContext

	// rbuf holds compressed bytes pulled from the source but not yet
	// consumed by the codec. It is only refilled once fully drained.
	rbuf []byte
	rpos int
	rlen int

	srcEOF    bool
	done      bool
	closed    bool
	ownSource bool
}

// ReaderOption configures a Reader at construction.
type ReaderOption func(*Reader)

// OwnSource makes Close also close the source if it implements io.Closer.
func OwnSource() ReaderOption {
	return func(r *Reader) { r.ownSource = true }
}

// NewReader creates a Reader decompressing the LZ4 frame read from src.
// Close must be called to release the decoding context.
func NewReader(src io.Reader, opts ...ReaderOption) *Reader {
	r := &Reader{
		src:  src,
		ctx:  codec.NewDecodeContext(),
		rbuf: make([]byte, readAheadSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read fills p with as much decompressed data as is available, refilling
// the read-ahead buffer from the source as the codec asks for more input.
// A source that ends cleanly at a block boundary, even without the frame
// footer, reads as end-of-stream rather than an error; anything cut off
// mid-item is reported as a DecodeError.
func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if r.done || len(p) == 0 {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	var n int
	for n < len(p) {
		produced, consumed, hint, err := r.ctx.Decompress(p[n:], r.rbuf[r.rpos:r.rlen])
		r.rpos += consumed
		n += produced
		if err != nil {
			return n, &DecodeError{Err: err}
		}
		if hint == 0 {
			if produced == 0 {
				r.done = true
				break
			}
			// Buffered output remains; drain it before stopping.
			continue
		}
		if n == len(p) {
			break
		}
		if r.rpos < r.rlen {
			if produced == 0 && consumed == 0 {
				// No progress with data available; treat as end
				// of stream instead of looping forever.
				r.done = true
				break
			}
			continue
		}
		if r.srcEOF {
			if r.ctx.BlockBoundary() {
				r.done = true
				break
			}
			if n > 0 {
				break
			}
			return 0, &DecodeError{Err: io.ErrUnexpectedEOF}
		}
		if err := r.fill(hint); err != nil {
			return n, err
		}
	}
	if n == 0 && r.done {
		return 0, io.EOF
	}
	return n, nil
}

// WriteTo decompresses the whole frame into w, implementing io.WriterTo.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, readAheadSize)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			total += int64(wn)
			if werr != nil {
				return total, werr
			}
			if wn < n {
				return total, io.ErrShortWrite
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Rewind repositions the source to its start and resets the decoding
// context in place so the stream can be read again from scratch. The
// buffers are kept; no reallocation happens. Fails with ErrCannotRewind if
// the source is not an io.Seeker.
func (r *Reader) Rewind() error {
	if r.closed {
		return ErrClosed
	}
	s, ok := r.src.(io.Seeker)
	if !ok {
		return ErrCannotRewind
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return err
	}
	r.ctx.Reset()
	r.rpos, r.rlen = 0, 0
	r.srcEOF = false
	r.done = false
	return nil
}

// Close releases the decoding context and, with OwnSource, closes the
// source. The Reader is unusable afterwards; Close must only be called
// once.
func (r *Reader) Close() error {
	if r.closed {
		return ErrClosed
	}
	r.closed = true
	r.ctx.Release()
	r.rbuf = nil
	if r.ownSource {
		if c, ok := r.src.(io.Closer); ok {
			return c.Close()
		}
	}
	return nil
}

// Write always fails: a Reader is not a compression sink.
func (r *Reader) Write([]byte) (int, error) {
	return 0, ErrUnsupported
}

// Flush always fails: there is nothing to flush on the reading side.
func (r *Reader) Flush() error {
	return ErrUnsupported
}

// fill refills the drained read-ahead buffer with one source read, bounded
// by the codec's hint when it is smaller than the buffer. Source errors
// propagate unchanged; EOF is recorded, not returned.
func (r *Reader) fill(hint int) error {
	r.rpos, r.rlen = 0, 0
	limit := len(r.rbuf)
	if hint > 0 && hint < limit {
		limit = hint
	}
	for i := 0; i < maxEmptyReads; i++ {
		n, err := r.src.Read(r.rbuf[:limit])
		r.rlen = n
		if err == io.EOF {
			r.srcEOF = true
			return nil
		}
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
	}
	return io.ErrNoProgress
}
