package client

import (
	"fmt"
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/hoxchess/hoxnet/rpc/common"
)

// workerMetrics holds the metrics of one worker. Every worker registers its
// metrics in its own set, so several workers can live in one process.
type workerMetrics struct {
	set            *metrics.Set
	failures       *metrics.Counter
	rejected       *metrics.Counter
	readRetries    *metrics.Counter
	routeErrors    *metrics.Counter
	requestSeconds *metrics.Histogram
}

func newWorkerMetrics() *workerMetrics {
	set := metrics.NewSet()
	return &workerMetrics{
		set:            set,
		failures:       set.NewCounter("hoxnet_request_failures_total"),
		rejected:       set.NewCounter("hoxnet_rejected_requests_total"),
		readRetries:    set.NewCounter("hoxnet_read_retries_total"),
		routeErrors:    set.NewCounter("hoxnet_route_errors_total"),
		requestSeconds: set.NewHistogram("hoxnet_request_duration_seconds"),
	}
}

// request counts a processed request of the given kind
func (m *workerMetrics) request(kind common.RequestKind, start time.Time) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`hoxnet_requests_total{kind=%q}`, kind.String())).Inc()
	m.requestSeconds.UpdateDuration(start)
}

// WritePrometheus writes the worker metrics in Prometheus text format
func (w *Worker) WritePrometheus(out io.Writer) {
	w.metrics.set.WritePrometheus(out)
}
