// Package extprot implements the wire codec: reading and writing values of
// a given pkg/xtype type to and from their extprot binary form, over both
// in-memory buffers and streams.
package extprot

import (
	"errors"
	"fmt"

	"github.com/blockberries/extprot/internal/wire"
)

// Re-exported so callers of this package never need to import internal/wire
// directly to match errors with errors.Is.
var (
	// ErrEndOfStream indicates a clean stop at a top-level value boundary.
	ErrEndOfStream = wire.ErrEndOfStream

	// ErrTruncatedInput indicates the source was exhausted mid-value.
	ErrTruncatedInput = wire.ErrTruncated

	// ErrMalformedVarint indicates a varint overflowed or ran past the
	// maximum encodable length.
	ErrMalformedVarint = errors.New("extprot: malformed varint")
)

// DecodeError wraps a failure encountered while reading a value, recording
// where in the type tree it occurred.
type DecodeError struct {
	TypeName string
	Offset   int64
	Cause    error
}

func (e *DecodeError) Error() string {
	if e.TypeName != "" {
		return fmt.Sprintf("extprot: decode %s at offset %d: %v", e.TypeName, e.Offset, e.Cause)
	}
	return fmt.Sprintf("extprot: decode at offset %d: %v", e.Offset, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

func newDecodeError(typeName string, offset int64, cause error) *DecodeError {
	return &DecodeError{TypeName: typeName, Offset: offset, Cause: cause}
}

// EncodeError wraps a failure encountered while writing a value.
type EncodeError struct {
	TypeName string
	Cause    error
}

func (e *EncodeError) Error() string {
	if e.TypeName != "" {
		return fmt.Sprintf("extprot: encode %s: %v", e.TypeName, e.Cause)
	}
	return fmt.Sprintf("extprot: encode: %v", e.Cause)
}

func (e *EncodeError) Unwrap() error { return e.Cause }

func newEncodeError(typeName string, cause error) *EncodeError {
	return &EncodeError{TypeName: typeName, Cause: cause}
}
