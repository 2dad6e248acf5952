package lz4stream

import (
	"io"

	"github.com/harshithgowdakt/lz4stream/internal/codec"
)

// Writer compresses everything written to it into one LZ4 frame on the
// sink. The frame header is emitted on the first write, the footer by
// Close; a Writer that is never closed leaves a truncated frame behind.
// Not safe for concurrent use.
type Writer struct {
	sink  io.Writer
	ctx   codec.EncodeContext
	prefs Preferences

	// buf holds the compressed form of one block plus frame overhead and
	// is reused for every codec call.
	buf       []byte
	blockSize int

	wroteHeader bool
	closed      bool
	ownSink     bool
}

// WriterOption configures a Writer at construction.
type WriterOption func(*Writer)

// OwnSink makes Close also close the sink if it implements io.Closer.
func OwnSink() WriterOption {
	return func(w *Writer) { w.ownSink = true }
}

// NewWriter creates a Writer emitting an LZ4 frame to sink. Close must be
// called to complete the frame and release the encoding context.
func NewWriter(sink io.Writer, prefs Preferences, opts ...WriterOption) (*Writer, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	params := prefs.codecParams()
	ctx, err := codec.NewEncodeContext(params)
	if err != nil {
		return nil, err
	}
	blockSize := prefs.BlockSize.Bytes()
	w := &Writer{
		sink:      sink,
		ctx:       ctx,
		prefs:     prefs,
		buf:       make([]byte, codec.FrameBound(blockSize, params)),
		blockSize: blockSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Preferences returns the preferences the Writer was built with.
func (w *Writer) Preferences() Preferences { return w.prefs }

// Write compresses p into the current frame, forwarding every produced
// block to the sink immediately. Memory use is constant in len(p).
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	if err := w.ensureHeader(); err != nil {
		return 0, err
	}
	var written int
	for len(p) > 0 {
		chunk := p
		if len(chunk) > w.blockSize {
			chunk = chunk[:w.blockSize]
		}
		n, err := w.ctx.Update(w.buf, chunk)
		if err != nil {
			return written, &EncodeError{Op: "update", Err: err}
		}
		// n == 0 means the codec buffered the chunk; it holds at most
		// one block, so there is nothing to bound here and the data is
		// left to accumulate until a block fills or Flush is called.
		if err := w.writeOut(w.buf[:n]); err != nil {
			return written, err
		}
		p = p[len(chunk):]
		written += len(chunk)
	}
	return written, nil
}

// ReadFrom compresses r until EOF, implementing io.ReaderFrom.
func (w *Writer) ReadFrom(r io.Reader) (int64, error) {
	if w.closed {
		return 0, ErrClosed
	}
	chunk := make([]byte, w.blockSize)
	var total int64
	for {
		n, err := io.ReadFull(r, chunk)
		if n > 0 {
			if _, werr := w.Write(chunk[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Flush forces any input buffered by the codec out as a (possibly short)
// block and flushes the sink if it supports flushing. Calling Flush with
// nothing buffered produces no output.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrClosed
	}
	if w.wroteHeader {
		n, err := w.ctx.Flush(w.buf)
		if err != nil {
			return &EncodeError{Op: "flush", Err: err}
		}
		if err := w.writeOut(w.buf[:n]); err != nil {
			return err
		}
	}
	if f, ok := w.sink.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close completes the frame with its footer, releases the encoding context
// and, with OwnSink, closes the sink. The Writer is unusable afterwards;
// Close must only be called once.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed
	}
	err := w.ensureHeader()
	if err == nil {
		var n int
		if n, err = w.ctx.End(w.buf); err != nil {
			err = &EncodeError{Op: "end", Err: err}
		} else {
			err = w.writeOut(w.buf[:n])
		}
	}
	w.closed = true
	w.ctx.Release()
	w.buf = nil
	if w.ownSink {
		if c, ok := w.sink.(io.Closer); ok {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
	}
	return err
}

// Read always fails: a Writer is not a source of decompressed data.
func (w *Writer) Read([]byte) (int, error) {
	return 0, ErrUnsupported
}

// ensureHeader lazily emits the frame header before the first payload.
func (w *Writer) ensureHeader() error {
	if w.wroteHeader {
		return nil
	}
	n, err := w.ctx.Begin(w.buf)
	if err != nil {
		return &EncodeError{Op: "header", Err: err}
	}
	if err := w.writeOut(w.buf[:n]); err != nil {
		return err
	}
	w.wroteHeader = true
	return nil
}

// writeOut forwards produced bytes to the sink, propagating its error
// unchanged.
func (w *Writer) writeOut(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	_, err := w.sink.Write(b)
	return err
}
