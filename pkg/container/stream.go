package container

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/dd0wney/cluso-bat/pkg/pools"
)

const (
	// DefaultMaxPayload bounds a single payload read from a stream (1 GiB).
	DefaultMaxPayload = 1 << 30
	// DefaultMaxHeader bounds the header text of a streamed container.
	DefaultMaxHeader = 4096

	// initialPayloadBuffer caps the up-front allocation for a payload; the
	// buffer grows as bytes arrive.
	initialPayloadBuffer = 64 << 10
)

// Reader pulls top-level containers from a byte stream. It blocks until the
// full declared payload of a container has been read and never buffers more
// than one payload.
type Reader struct {
	r          *bufio.Reader
	offset     int64
	maxPayload uint64
	maxHeader  int
	err        error
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxPayload sets the largest payload the reader accepts.
func WithMaxPayload(max uint64) ReaderOption {
	return func(r *Reader) {
		r.maxPayload = max
	}
}

// WithMaxHeader sets the longest header text the reader accepts.
func WithMaxHeader(max int) ReaderOption {
	return func(r *Reader) {
		r.maxHeader = max
	}
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{
		r:          bufio.NewReader(r),
		maxPayload: DefaultMaxPayload,
		maxHeader:  DefaultMaxHeader,
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Offset returns the number of bytes consumed from the stream.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Next reads the next container. It returns io.EOF only when the stream ends
// exactly at a container boundary. Cancellation is checked before each
// container; a read in progress is not interrupted.
func (r *Reader) Next(ctx context.Context) (Container, error) {
	if r.err != nil {
		return Container{}, r.err
	}
	if err := ctx.Err(); err != nil {
		return Container{}, err
	}
	c, err := r.next()
	if err != nil {
		r.err = err
		return Container{}, err
	}
	return c, nil
}

func (r *Reader) next() (Container, error) {
	start := r.offset
	text, err := r.readHeader()
	if err != nil {
		return Container{}, err
	}
	scheme, label, err := splitHeader(string(text))
	if err != nil {
		return Container{}, &FrameError{Offset: start, Field: "header", Found: string(text), Cause: err}
	}

	lengthAt := r.offset
	n, err := binary.ReadUvarint(byteCounter{r})
	if err != nil {
		found := "varint overflow"
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			found = "unterminated varint"
		}
		return Container{}, &FrameError{Offset: lengthAt, Field: "length", Found: found, Cause: ErrBadLength}
	}
	if n > r.maxPayload {
		return Container{}, &FrameError{Offset: lengthAt, Field: "length", Expected: r.maxPayload, Found: n, Cause: ErrPayloadTooLarge}
	}

	payloadAt := r.offset
	var payload bytes.Buffer
	payload.Grow(int(min(n, initialPayloadBuffer)))
	got, err := io.CopyN(&payload, r.r, int64(n))
	r.offset += got
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Container{}, &FrameError{Offset: payloadAt, Field: "payload", Expected: n, Found: got, Cause: ErrTruncated}
		}
		return Container{}, err
	}

	return Container{Scheme: scheme, Label: label, Payload: payload.Bytes(), offset: payloadAt}, nil
}

func (r *Reader) readHeader() ([]byte, error) {
	start := r.offset
	var text []byte
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(text) == 0 {
					return nil, io.EOF
				}
				return nil, &FrameError{Offset: start, Field: "header", Cause: ErrUnterminatedHeader}
			}
			return nil, err
		}
		r.offset++
		if b == Terminator {
			break
		}
		if len(text) >= r.maxHeader {
			return nil, &FrameError{Offset: start, Field: "header", Expected: r.maxHeader, Found: len(text) + 1, Cause: ErrInvalidHeader}
		}
		text = append(text, b)
	}
	if !utf8.Valid(text) {
		return nil, &FrameError{Offset: start, Field: "header", Found: "invalid UTF-8", Cause: ErrInvalidHeader}
	}
	return text, nil
}

// byteCounter feeds binary.ReadUvarint while keeping the offset current.
type byteCounter struct {
	r *Reader
}

func (b byteCounter) ReadByte() (byte, error) {
	c, err := b.r.r.ReadByte()
	if err == nil {
		b.r.offset++
	}
	return c, err
}

// Writer frames containers onto a byte stream.
type Writer struct {
	w       io.Writer
	written int64
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write frames c and writes it. It returns the number of bytes written.
func (w *Writer) Write(c Container) (int, error) {
	header, err := appendHeader(pools.GetBytes(c.HeaderSize()), c)
	defer pools.PutBytes(header)
	if err != nil {
		return 0, err
	}
	n, err := w.w.Write(header)
	w.written += int64(n)
	if err != nil {
		return n, err
	}
	m, err := w.w.Write(c.Payload)
	w.written += int64(m)
	return n + m, err
}

// Written returns the total number of bytes written.
func (w *Writer) Written() int64 {
	return w.written
}
