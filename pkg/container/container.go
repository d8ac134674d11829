// Package container frames the nested, self-delimiting chunks a BAT archive
// is made of.
//
// Wire format of one container:
//
//	<scheme> '#' <label> 0x00 <uvarint payload length> <payload bytes>
//
// The header text is UTF-8. The scheme is everything before the last '#',
// the label everything after it, so labels never contain '#'. The length is
// an unsigned LEB128 varint as written by encoding/binary.AppendUvarint. A
// payload is opaque; callers that store child containers in it decode it
// again with the same grammar.
package container

import (
	"encoding/binary"
	"strings"
	"unicode/utf8"
)

// Separator splits the scheme from the label in a header.
const Separator = '#'

// Terminator ends the header text.
const Terminator = 0x00

// Container is one framed chunk.
type Container struct {
	Scheme  string
	Label   string
	Payload []byte

	// offset of Payload within the buffer it was decoded from
	offset int64
}

// Offset returns the absolute offset of the payload when the container was
// produced by a Decoder or Reader.
func (c Container) Offset() int64 {
	return c.offset
}

// Children returns a decoder over the payload, for containers whose payload
// is itself a sequence of containers.
func (c Container) Children() *Decoder {
	return &Decoder{buf: c.Payload, base: c.offset}
}

// HeaderSize returns the number of bytes preceding the payload.
func (c Container) HeaderSize() int {
	var tmp [binary.MaxVarintLen64]byte
	return len(c.Scheme) + 1 + len(c.Label) + 1 + binary.PutUvarint(tmp[:], uint64(len(c.Payload)))
}

// Size returns the encoded size of the container.
func (c Container) Size() int {
	return c.HeaderSize() + len(c.Payload)
}

// Validate checks that the scheme and label can be framed unambiguously.
func (c Container) Validate() error {
	if c.Scheme == "" {
		return &FrameError{Offset: -1, Field: "scheme", Found: `""`, Cause: ErrInvalidHeader}
	}
	if strings.IndexByte(c.Label, Separator) >= 0 {
		return &FrameError{Offset: -1, Field: "label", Found: c.Label, Cause: ErrInvalidHeader}
	}
	if strings.IndexByte(c.Scheme, Terminator) >= 0 || strings.IndexByte(c.Label, Terminator) >= 0 {
		return &FrameError{Offset: -1, Field: "header", Found: "NUL byte", Cause: ErrInvalidHeader}
	}
	if !utf8.ValidString(c.Scheme) || !utf8.ValidString(c.Label) {
		return &FrameError{Offset: -1, Field: "header", Found: "invalid UTF-8", Cause: ErrInvalidHeader}
	}
	return nil
}

// Append appends the framed container to dst.
func Append(dst []byte, c Container) ([]byte, error) {
	dst, err := appendHeader(dst, c)
	if err != nil {
		return dst, err
	}
	return append(dst, c.Payload...), nil
}

func appendHeader(dst []byte, c Container) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return dst, err
	}
	dst = append(dst, c.Scheme...)
	dst = append(dst, Separator)
	dst = append(dst, c.Label...)
	dst = append(dst, Terminator)
	return binary.AppendUvarint(dst, uint64(len(c.Payload))), nil
}

// Encode returns the framed container.
func Encode(c Container) ([]byte, error) {
	return Append(make([]byte, 0, c.Size()), c)
}

// Concat frames each child in order, producing the payload of a parent
// container.
func Concat(children ...Container) ([]byte, error) {
	size := 0
	for _, c := range children {
		size += c.Size()
	}
	out := make([]byte, 0, size)
	var err error
	for _, c := range children {
		if out, err = Append(out, c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// splitHeader splits header text at its last separator. An empty scheme is
// rejected, matching Validate on the write side.
func splitHeader(text string) (scheme, label string, err error) {
	i := strings.LastIndexByte(text, Separator)
	switch {
	case i < 0:
		return "", "", ErrMissingSeparator
	case i == 0:
		return "", "", ErrInvalidHeader
	}
	return text[:i], text[i+1:], nil
}
