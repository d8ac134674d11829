package container

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"
)

// Decoder walks the sibling containers of one in-memory payload. Payloads are
// returned as sub-slices of the input; nothing is copied.
type Decoder struct {
	buf  []byte
	off  int
	base int64 // absolute offset of buf[0], for error reporting
	err  error
}

// NewDecoder returns a decoder over buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// NewDecoderAt returns a decoder over buf whose errors and child offsets are
// reported relative to base, the absolute offset of buf[0].
func NewDecoderAt(buf []byte, base int64) *Decoder {
	return &Decoder{buf: buf, base: base}
}

// Finished reports whether every byte of the payload has been consumed, i.e.
// no sibling container remains at this level.
func (d *Decoder) Finished() bool {
	return d.off == len(d.buf)
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.off
}

// Remaining returns the number of bytes not yet consumed.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.off
}

// Err returns the error that stopped the decoder, if any.
func (d *Decoder) Err() error {
	return d.err
}

// Child decodes the next sibling container. After a framing error every
// further call returns the same error.
func (d *Decoder) Child() (Container, error) {
	if d.err != nil {
		return Container{}, d.err
	}
	c, err := d.child()
	if err != nil {
		d.err = err
		return Container{}, err
	}
	return c, nil
}

func (d *Decoder) child() (Container, error) {
	if d.Finished() {
		return Container{}, d.fail(d.off, "header", len(d.buf), d.off, ErrPastEnd)
	}

	start := d.off
	end := bytes.IndexByte(d.buf[start:], Terminator)
	if end < 0 {
		return Container{}, d.fail(start, "header", nil, nil, ErrUnterminatedHeader)
	}
	text := d.buf[start : start+end]
	if !utf8.Valid(text) {
		return Container{}, d.fail(start, "header", nil, "invalid UTF-8", ErrInvalidHeader)
	}
	scheme, label, err := splitHeader(string(text))
	if err != nil {
		return Container{}, d.fail(start, "header", nil, string(text), err)
	}

	pos := start + end + 1
	n, size := binary.Uvarint(d.buf[pos:])
	if size == 0 {
		return Container{}, d.fail(pos, "length", nil, "unterminated varint", ErrBadLength)
	}
	if size < 0 {
		return Container{}, d.fail(pos, "length", nil, "varint overflow", ErrBadLength)
	}
	pos += size

	remaining := len(d.buf) - pos
	if n > uint64(remaining) {
		return Container{}, d.fail(pos, "payload", n, remaining, ErrTruncated)
	}
	end = pos + int(n)

	d.off = end
	return Container{
		Scheme:  scheme,
		Label:   label,
		Payload: d.buf[pos:end:end],
		offset:  d.base + int64(pos),
	}, nil
}

// All decodes every remaining sibling.
func (d *Decoder) All() ([]Container, error) {
	var out []Container
	for !d.Finished() {
		c, err := d.Child()
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (d *Decoder) fail(off int, field string, expected, found any, cause error) error {
	return &FrameError{
		Offset:   d.base + int64(off),
		Field:    field,
		Expected: expected,
		Found:    found,
		Cause:    cause,
	}
}
