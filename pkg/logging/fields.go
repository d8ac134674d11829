package logging

import (
	"errors"
	"time"
)

func String(key, value string) Field        { return Field{Key: key, Value: value} }
func Int(key string, value int) Field       { return Field{Key: key, Value: value} }
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field     { return Field{Key: key, Value: value} }
func Any(key string, value any) Field       { return Field{Key: key, Value: value} }

// Error records err's message, and its byte offset when err carries one.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// offsetError is implemented by framing and codec errors that know where in
// the input they occurred.
type offsetError interface {
	ByteOffset() int64
}

// ErrorOffset returns an "offset" field for errors that carry a position, or
// an empty-keyed field that is dropped otherwise.
func ErrorOffset(err error) Field {
	var oe offsetError
	if errors.As(err, &oe) {
		return Offset(oe.ByteOffset())
	}
	return Field{}
}

// Archive-domain fields
func Component(name string) Field   { return String("component", name) }
func Chapter(label string) Field    { return String("chapter", label) }
func Scheme(iri string) Field       { return String("scheme", iri) }
func Label(label string) Field      { return String("label", label) }
func Offset(off int64) Field        { return Field{Key: "offset", Value: off} }
func Count(n uint64) Field          { return Uint64("count", n) }
func Width(w int) Field             { return Int("key_width", w) }
func Bytes(n int64) Field           { return Field{Key: "bytes", Value: n} }
func Path(p string) Field           { return String("path", p) }
func Latency(d time.Duration) Field { return String("latency", d.String()) }
