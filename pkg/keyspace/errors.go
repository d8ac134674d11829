package keyspace

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyOutOfRange is a configuration error: the key does not fit the
	// key-space it is being encoded into.
	ErrKeyOutOfRange = errors.New("key out of range")
	// ErrShortKey means fewer bytes were supplied than the key-space width.
	ErrShortKey = errors.New("key code too short")
	// ErrReservedByte means a control byte was found where a digit was required.
	ErrReservedByte = errors.New("reserved byte in key code")
	// ErrUnsupportedWidth means a width outside 1..4 was requested.
	ErrUnsupportedWidth = errors.New("unsupported key width")
	// ErrAllocatorExhausted is returned once every 4-byte key has been handed out.
	ErrAllocatorExhausted = errors.New("key allocator exhausted")
)

// CodecError carries the position and the expected/found values of a key
// codec failure.
type CodecError struct {
	Op       string // "encode", "decode", "allocate", ...
	Offset   int    // byte offset within the code, -1 when not applicable
	Key      Key    // key being encoded, when applicable
	Expected any    // expected value (width, byte range, capacity)
	Found    any    // value actually seen
	Cause    error  // one of the sentinel errors above
}

// Error implements the error interface.
func (e *CodecError) Error() string {
	switch {
	case e.Offset >= 0 && e.Expected != nil:
		return fmt.Sprintf("keyspace: %s at offset %d: expected %v, found %v: %v", e.Op, e.Offset, e.Expected, e.Found, e.Cause)
	case e.Offset >= 0:
		return fmt.Sprintf("keyspace: %s at offset %d: %v", e.Op, e.Offset, e.Cause)
	case e.Expected != nil:
		return fmt.Sprintf("keyspace: %s key %d: expected %v, found %v: %v", e.Op, e.Key, e.Expected, e.Found, e.Cause)
	case e.Found != nil:
		return fmt.Sprintf("keyspace: %s: found %v: %v", e.Op, e.Found, e.Cause)
	default:
		return fmt.Sprintf("keyspace: %s key %d: %v", e.Op, e.Key, e.Cause)
	}
}

// Unwrap returns the sentinel cause.
func (e *CodecError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches the cause.
func (e *CodecError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}
