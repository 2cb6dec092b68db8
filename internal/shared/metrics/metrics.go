package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	uploadsTotal          atomic.Uint64
	uploadFailuresTotal   atomic.Uint64
	downloadsTotal        atomic.Uint64
	downloadMissesTotal   atomic.Uint64
	downloadFailuresTotal atomic.Uint64

	uploadSize = newHistogram([]float64{1 << 10, 16 << 10, 256 << 10, 1 << 20, 4 << 20, 10 << 20})
)

// IncUpload counts a stored file.
func IncUpload() {
	uploadsTotal.Add(1)
}

// IncUploadFailed counts an upload that hit a backend or decode error.
func IncUploadFailed() {
	uploadFailuresTotal.Add(1)
}

// IncDownload counts an issued download URL.
func IncDownload() {
	downloadsTotal.Add(1)
}

// IncDownloadMiss counts a download for an unknown file id.
func IncDownloadMiss() {
	downloadMissesTotal.Add(1)
}

// IncDownloadFailed counts a download that hit a backend error.
func IncDownloadFailed() {
	downloadFailuresTotal.Add(1)
}

// ObserveUploadBytes records the decoded size of a stored file.
func ObserveUploadBytes(n int) {
	if n < 0 {
		n = 0
	}
	uploadSize.Observe(float64(n))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "files_uploaded_total", "Total files stored", uploadsTotal.Load())
	writeCounter(&buf, "files_upload_failed_total", "Total uploads failed with an internal error", uploadFailuresTotal.Load())
	writeCounter(&buf, "files_download_urls_total", "Total download URLs issued", downloadsTotal.Load())
	writeCounter(&buf, "files_download_not_found_total", "Total downloads for unknown file ids", downloadMissesTotal.Load())
	writeCounter(&buf, "files_download_failed_total", "Total downloads failed with an internal error", downloadFailuresTotal.Load())
	writeHistogram(&buf, "files_upload_size_bytes", "Decoded upload size in bytes", uploadSize.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	// Per-bucket counts; writeHistogram accumulates them.
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
