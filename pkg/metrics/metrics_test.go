package metrics

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/dd0wney/cluso-bat/pkg/container"
	"github.com/dd0wney/cluso-bat/pkg/keyspace"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	if err := g.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Gauge.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.ContainersWrittenTotal == nil || r.KeysAllocatedTotal == nil || r.ArchiveOperationsTotal == nil {
		t.Fatal("metrics not initialized")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Fatal("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordContainers(t *testing.T) {
	r := NewRegistry()
	r.RecordContainerWritten("s#", 10)
	r.RecordContainerWritten("s#", 20)
	r.RecordContainerRead("s#", 10)

	if got := counterValue(t, r.ContainersWrittenTotal.WithLabelValues("s#")); got != 2 {
		t.Errorf("written = %v, want 2", got)
	}
	if got := counterValue(t, r.ContainersReadTotal.WithLabelValues("s#")); got != 1 {
		t.Errorf("read = %v, want 1", got)
	}
}

func TestRecordChapterSealed(t *testing.T) {
	r := NewRegistry()
	r.RecordChapterSealed("prefixes", 300, 2)

	if got := counterValue(t, r.KeysAllocatedTotal.WithLabelValues("prefixes")); got != 300 {
		t.Errorf("keys allocated = %v", got)
	}
	if got := gaugeValue(t, r.ChapterKeyWidth.WithLabelValues("prefixes")); got != 2 {
		t.Errorf("key width = %v", got)
	}
}

func TestFramingErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&container.FrameError{Cause: container.ErrTruncated}, "truncated"},
		{fmt.Errorf("wrapped: %w", container.ErrMissingSeparator), "missing_separator"},
		{&keyspace.CodecError{Cause: keyspace.ErrReservedByte}, "bad_key"},
		{io.ErrUnexpectedEOF, "other"},
	}
	for _, tt := range tests {
		if got := FramingErrorKind(tt.err); got != tt.want {
			t.Errorf("FramingErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}

	r := NewRegistry()
	r.RecordFramingError(&container.FrameError{Cause: container.ErrBadLength})
	if got := counterValue(t, r.FramingErrorsTotal.WithLabelValues("bad_length")); got != 1 {
		t.Errorf("framing errors = %v", got)
	}
}

func TestRecordCodecError(t *testing.T) {
	r := NewRegistry()
	wrapped := fmt.Errorf("chapter prefixes: %w", &keyspace.CodecError{Op: "decode", Cause: keyspace.ErrShortKey})
	if !r.RecordCodecError(wrapped) {
		t.Fatal("RecordCodecError should recognise a wrapped codec error")
	}
	r.RecordCodecError(&keyspace.CodecError{Op: "decode", Cause: keyspace.ErrReservedByte})
	if r.RecordCodecError(container.ErrTruncated) {
		t.Error("RecordCodecError counted a framing error")
	}
	if r.RecordCodecError(nil) {
		t.Error("RecordCodecError counted a nil error")
	}

	if got := counterValue(t, r.CodecErrorsTotal.WithLabelValues("decode")); got != 2 {
		t.Errorf("decode codec errors = %v, want 2", got)
	}
	if got := counterValue(t, r.CodecErrorsTotal.WithLabelValues("encode")); got != 0 {
		t.Errorf("encode codec errors = %v, want 0", got)
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordArchiveOperation("write", "success", 5*time.Millisecond)
	r.RecordArchiveBytes(DirectionWrite, 64)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{"bat_archive_operations_total", "bat_archive_bytes_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("exposition missing %s", name)
		}
	}
}
