package lz4stream

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by any operation on a closed stream.
	ErrClosed = errors.New("lz4stream: stream is closed")
	// ErrUnsupported is returned when an operation is called against the
	// stream's direction, e.g. reading from a Writer.
	ErrUnsupported = errors.New("lz4stream: operation not supported by this stream")
	// ErrCannotRewind is returned by Rewind when the source cannot be
	// repositioned.
	ErrCannotRewind = errors.New("lz4stream: source does not support rewinding")
)

// ConfigError reports an invalid preference value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("lz4stream: invalid preferences: %s: %s", e.Field, e.Reason)
}

// EncodeError wraps a codec failure during frame production. The stream is
// unusable afterwards and must still be closed.
type EncodeError struct {
	Op  string // header, update, flush or end
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("lz4stream: encode %s: %v", e.Op, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError wraps a codec failure during frame consumption: the input is
// corrupted, truncated or not an LZ4 frame.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("lz4stream: decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
