// Package lz4stream implements streaming compression and decompression of
// the LZ4 frame format: a self-delimiting container of a header, a sequence
// of length-prefixed blocks and a footer, with optional XXH32 checksums.
//
// Writer turns a sequence of writes into one frame emitted incrementally to
// a sink; Reader turns frame bytes pulled from a source into decompressed
// output on demand. Both own an exclusive codec context that Close releases,
// so Close must always be called. Block compression itself is delegated to
// github.com/pierrec/lz4/v4.
package lz4stream

import (
	"bytes"
	"io"
)

// Compress returns src compressed into a single LZ4 frame.
func Compress(src []byte, prefs Preferences) ([]byte, error) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, prefs)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress returns the content of the LZ4 frame in src.
func Decompress(src []byte) ([]byte, error) {
	r := NewReader(bytes.NewReader(src))
	out, err := io.ReadAll(r)
	if err != nil {
		r.Close()
		return nil, err
	}
	if err := r.Close(); err != nil {
		return nil, err
	}
	return out, nil
}
