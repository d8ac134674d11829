// Package archive assembles term chapters into a framed archive: a header
// container naming the dataset, followed by a dictionary container whose
// chapters map every term to a dense fixed-width key.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-bat/pkg/container"
	"github.com/dd0wney/cluso-bat/pkg/logging"
	"github.com/dd0wney/cluso-bat/pkg/metrics"
	"github.com/dd0wney/cluso-bat/pkg/schema"
)

// FormatVersion is written into every archive header.
const FormatVersion uint8 = 1

const headerSize = 1 + 16

// Header identifies an archive.
type Header struct {
	Version   uint8
	DatasetID uuid.UUID
}

// Container returns the header container.
func (h Header) Container() container.Container {
	payload := make([]byte, 0, headerSize)
	payload = append(payload, h.Version)
	payload = append(payload, h.DatasetID[:]...)
	return container.Container{
		Scheme:  schema.CodeHeader.Scheme(),
		Label:   schema.CodeHeader.Label(),
		Payload: payload,
	}
}

// ParseHeader decodes a header container.
func ParseHeader(c container.Container) (Header, error) {
	const op = "parse header"
	if c.Scheme != schema.EncodingDataset || c.Label != schema.CodeHeader.Label() {
		return Header{}, &ArchiveError{Op: op, Context: c.Scheme + string(container.Separator) + c.Label, Cause: ErrMissingHeader}
	}
	if len(c.Payload) != headerSize {
		return Header{}, &ArchiveError{
			Op:      op,
			Context: fmt.Sprintf("expected %d bytes, found %d", headerSize, len(c.Payload)),
			Cause:   ErrMalformedChapter,
		}
	}
	h := Header{Version: c.Payload[0]}
	if h.Version != FormatVersion {
		return Header{}, &ArchiveError{Op: op, Context: fmt.Sprintf("version %d", h.Version), Cause: ErrUnsupportedVersion}
	}
	copy(h.DatasetID[:], c.Payload[1:])
	return h, nil
}

// Archive is an archive under construction.
type Archive struct {
	Header     Header
	Dictionary *Dictionary
}

// New returns an empty archive with a fresh dataset id.
func New() *Archive {
	return &Archive{
		Header:     Header{Version: FormatVersion, DatasetID: uuid.New()},
		Dictionary: NewDictionary(),
	}
}

// Writer serializes an archive to an io.Writer.
type Writer struct {
	archive *Archive
	opts    EncodeOptions
}

// NewWriter returns a writer for a.
func NewWriter(a *Archive, opts EncodeOptions) *Writer {
	return &Writer{archive: a, opts: opts}
}

// WriteTo implements io.WriterTo.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	return w.Write(context.Background(), dst)
}

// Write encodes the dictionary and writes the header and dictionary
// containers to dst.
func (w *Writer) Write(ctx context.Context, dst io.Writer) (n int64, err error) {
	log := w.opts.logger().With(logging.Component("archive"))
	timer := logging.StartTimer(log, "archive written")
	start := time.Now()
	defer func() {
		w.record("write", start, err)
		if err != nil {
			timer.EndError(err)
			return
		}
		timer.End(logging.Bytes(n))
	}()

	dict, err := w.archive.Dictionary.Encode(ctx, w.opts)
	if err != nil {
		return 0, err
	}

	cw := container.NewWriter(dst)
	for _, c := range []container.Container{w.archive.Header.Container(), dict} {
		if _, err := cw.Write(c); err != nil {
			return cw.Written(), &ArchiveError{Op: "write", Context: c.Label, Cause: err}
		}
		if w.opts.Metrics != nil {
			w.opts.Metrics.RecordContainerWritten(c.Scheme, len(c.Payload))
		}
	}
	if w.opts.Metrics != nil {
		w.opts.Metrics.RecordArchiveBytes(metrics.DirectionWrite, cw.Written())
	}
	return cw.Written(), nil
}

func (w *Writer) record(op string, start time.Time, err error) {
	if w.opts.Metrics == nil {
		return
	}
	w.opts.Metrics.RecordArchiveOperation(op, status(err), time.Since(start))
	w.opts.Metrics.RecordCodecError(err)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// View is a parsed archive.
type View struct {
	Header     Header
	Dictionary *DictionaryView

	// Extra holds top-level containers other than the header and the
	// dictionary, in stream order.
	Extra []container.Container
}

// ReadOptions controls archive reading.
type ReadOptions struct {
	Reader  []container.ReaderOption
	Logger  logging.Logger
	Metrics *metrics.Registry
}

// ReadArchive reads one archive from r. The first container must be the
// header; the dictionary may appear anywhere after it.
func ReadArchive(ctx context.Context, r io.Reader, opts ReadOptions) (view *View, err error) {
	log := logging.Logger(logging.NopLogger{})
	if opts.Logger != nil {
		log = opts.Logger
	}
	log = log.With(logging.Component("archive"))
	start := time.Now()
	cr := container.NewReader(r, opts.Reader...)
	defer func() {
		if opts.Metrics != nil {
			opts.Metrics.RecordArchiveOperation("read", status(err), time.Since(start))
			opts.Metrics.RecordArchiveBytes(metrics.DirectionRead, cr.Offset())
			opts.Metrics.RecordCodecError(err)
		}
		if err != nil {
			log.Error("archive read failed", logging.Error(err), logging.ErrorOffset(err))
		}
	}()

	next := func() (container.Container, error) {
		c, err := cr.Next(ctx)
		if err != nil {
			if opts.Metrics != nil && !errors.Is(err, io.EOF) {
				opts.Metrics.RecordFramingError(err)
			}
			return c, err
		}
		if opts.Metrics != nil {
			opts.Metrics.RecordContainerRead(c.Scheme, len(c.Payload))
		}
		return c, nil
	}

	first, err := next()
	if errors.Is(err, io.EOF) {
		return nil, &ArchiveError{Op: "read", Cause: ErrMissingHeader}
	}
	if err != nil {
		return nil, &ArchiveError{Op: "read", Cause: err}
	}
	header, err := ParseHeader(first)
	if err != nil {
		return nil, err
	}

	view = &View{Header: header}
	for {
		c, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ArchiveError{Op: "read", Cause: err}
		}
		if c.Scheme == schema.EncodingDictionaryPP12OC && view.Dictionary == nil {
			if view.Dictionary, err = ParseDictionary(c); err != nil {
				return nil, err
			}
			continue
		}
		log.Debug("skipping container", logging.Scheme(c.Scheme), logging.Label(c.Label), logging.Offset(c.Offset()))
		view.Extra = append(view.Extra, c)
	}
	if view.Dictionary == nil {
		return nil, &ArchiveError{Op: "read", Cause: ErrMissingDictionary}
	}
	log.Info("archive read",
		logging.String("dataset", header.DatasetID.String()),
		logging.Int("chapters", len(view.Dictionary.Codes())),
		logging.Bytes(cr.Offset()))
	return view, nil
}

// ParseArchive parses an archive already held in buf without copying it.
// Terms in the returned view alias buf.
func ParseArchive(buf []byte) (*View, error) {
	d := container.NewDecoder(buf)
	first, err := d.Child()
	if err != nil {
		return nil, &ArchiveError{Op: "parse", Cause: err}
	}
	header, err := ParseHeader(first)
	if err != nil {
		return nil, err
	}
	view := &View{Header: header}
	for !d.Finished() {
		c, err := d.Child()
		if err != nil {
			return nil, &ArchiveError{Op: "parse", Cause: err}
		}
		if c.Scheme == schema.EncodingDictionaryPP12OC && view.Dictionary == nil {
			if view.Dictionary, err = ParseDictionary(c); err != nil {
				return nil, err
			}
			continue
		}
		view.Extra = append(view.Extra, c)
	}
	if view.Dictionary == nil {
		return nil, &ArchiveError{Op: "parse", Cause: ErrMissingDictionary}
	}
	return view, nil
}
