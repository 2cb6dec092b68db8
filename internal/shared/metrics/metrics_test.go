package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	var buf bytes.Buffer
	writeHistogram(&buf, "x", "help", h.Snapshot())

	out := buf.String()
	for _, want := range []string{
		`x_bucket{le="10"} 1`,
		`x_bucket{le="100"} 2`,
		`x_bucket{le="+Inf"} 3`,
		"x_sum 555",
		"x_count 3",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestHistogramBucketsNeverExceedCount(t *testing.T) {
	h := newHistogram([]float64{1, 2, 4})
	for _, v := range []float64{0, 1, 1, 3} {
		h.Observe(v)
	}

	snap := h.Snapshot()
	if got := snap.counts; got[0] != 3 || got[1] != 0 || got[2] != 1 {
		t.Fatalf("unexpected per-bucket counts %v", got)
	}

	var buf bytes.Buffer
	writeHistogram(&buf, "y", "help", snap)
	out := buf.String()
	for _, want := range []string{
		`y_bucket{le="1"} 3`,
		`y_bucket{le="2"} 3`,
		`y_bucket{le="4"} 4`,
		`y_bucket{le="+Inf"} 4`,
		"y_count 4",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestHandlerRendersFileCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	before := uploadsTotal.Load()
	IncUpload()
	ObserveUploadBytes(13)

	r := gin.New()
	r.GET("/metrics", Handler())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := resp.Body.String()
	if uploadsTotal.Load() != before+1 {
		t.Fatalf("expected counter to advance")
	}
	for _, want := range []string{
		"# TYPE files_uploaded_total counter",
		"# TYPE files_upload_size_bytes histogram",
		"files_download_not_found_total",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}
