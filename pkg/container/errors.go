package container

import (
	"errors"
	"fmt"
)

// Framing errors. All of them are fatal for the enclosing payload: the byte
// position of the next sibling is unknown once any of them occurs.
var (
	ErrMissingSeparator   = errors.New("header has no '#' separator")
	ErrUnterminatedHeader = errors.New("unterminated header text")
	ErrInvalidHeader      = errors.New("invalid header text")
	ErrBadLength          = errors.New("malformed payload length")
	ErrTruncated          = errors.New("declared length exceeds remaining bytes")
	ErrPastEnd            = errors.New("read past end of payload")
	ErrPayloadTooLarge    = errors.New("payload exceeds maximum size")
)

// FrameError reports where a container could not be framed.
type FrameError struct {
	Offset   int64 // absolute byte offset of the failing field
	Field    string
	Expected any
	Found    any
	Cause    error
}

// Error implements the error interface.
func (e *FrameError) Error() string {
	if e.Expected != nil {
		return fmt.Sprintf("container: %s at offset %d: expected %v, found %v: %v", e.Field, e.Offset, e.Expected, e.Found, e.Cause)
	}
	if e.Found != nil {
		return fmt.Sprintf("container: %s at offset %d: found %v: %v", e.Field, e.Offset, e.Found, e.Cause)
	}
	return fmt.Sprintf("container: %s at offset %d: %v", e.Field, e.Offset, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *FrameError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches the cause.
func (e *FrameError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ByteOffset returns the absolute offset of the failure.
func (e *FrameError) ByteOffset() int64 {
	return e.Offset
}
