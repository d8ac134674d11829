package metrics

import (
	"errors"
	"time"

	"github.com/dd0wney/cluso-bat/pkg/container"
	"github.com/dd0wney/cluso-bat/pkg/keyspace"
)

// Directions used as label values
const (
	DirectionWrite = "write"
	DirectionRead  = "read"
)

// RecordContainerWritten records one framed container
func (r *Registry) RecordContainerWritten(scheme string, payloadBytes int) {
	r.ContainersWrittenTotal.WithLabelValues(scheme).Inc()
	r.PayloadSizeBytes.WithLabelValues(DirectionWrite).Observe(float64(payloadBytes))
}

// RecordContainerRead records one parsed container
func (r *Registry) RecordContainerRead(scheme string, payloadBytes int) {
	r.ContainersReadTotal.WithLabelValues(scheme).Inc()
	r.PayloadSizeBytes.WithLabelValues(DirectionRead).Observe(float64(payloadBytes))
}

// RecordFramingError classifies err by its framing sentinel
func (r *Registry) RecordFramingError(err error) {
	r.FramingErrorsTotal.WithLabelValues(FramingErrorKind(err)).Inc()
}

// RecordCodecError counts err under its key codec operation when err wraps a
// *keyspace.CodecError, and reports whether it did.
func (r *Registry) RecordCodecError(err error) bool {
	var ce *keyspace.CodecError
	if !errors.As(err, &ce) {
		return false
	}
	r.CodecErrorsTotal.WithLabelValues(ce.Op).Inc()
	return true
}

// RecordChapterSealed records the final size and key width of a chapter
func (r *Registry) RecordChapterSealed(chapter string, terms uint64, width int) {
	r.KeysAllocatedTotal.WithLabelValues(chapter).Add(float64(terms))
	r.ChapterTerms.WithLabelValues(chapter).Set(float64(terms))
	r.ChapterKeyWidth.WithLabelValues(chapter).Set(float64(width))
}

// RecordArchiveOperation records an archive-level operation
func (r *Registry) RecordArchiveOperation(operation, status string, duration time.Duration) {
	r.ArchiveOperationsTotal.WithLabelValues(operation, status).Inc()
	r.ArchiveOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordArchiveBytes adds n to the bytes written or read
func (r *Registry) RecordArchiveBytes(direction string, n int64) {
	r.ArchiveBytesTotal.WithLabelValues(direction).Add(float64(n))
}

// FramingErrorKind maps an error to a short label value
func FramingErrorKind(err error) string {
	switch {
	case errors.Is(err, container.ErrMissingSeparator):
		return "missing_separator"
	case errors.Is(err, container.ErrUnterminatedHeader):
		return "unterminated_header"
	case errors.Is(err, container.ErrInvalidHeader):
		return "invalid_header"
	case errors.Is(err, container.ErrBadLength):
		return "bad_length"
	case errors.Is(err, container.ErrTruncated):
		return "truncated"
	case errors.Is(err, container.ErrPastEnd):
		return "past_end"
	case errors.Is(err, container.ErrPayloadTooLarge):
		return "payload_too_large"
	case errors.Is(err, keyspace.ErrReservedByte), errors.Is(err, keyspace.ErrShortKey):
		return "bad_key"
	default:
		return "other"
	}
}
