// Package metrics exposes prometheus counters and histograms for the
// discovery lifecycle, grounded on internal/watchd_ref/metrics.go's
// MustRegister + promhttp.Handler pattern.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	scansStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mappr_scans_started_total",
		Help: "Number of scans started, by scanner type.",
	}, []string{"type"})

	scansFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mappr_scans_finished_total",
		Help: "Number of scans finished, by scanner type and outcome.",
	}, []string{"type", "outcome"})

	scanDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mappr_scan_duration_seconds",
		Help:    "Scan duration in seconds, by scanner type.",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})

	hostsDiscovered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mappr_hosts_discovered_total",
		Help: "Number of hosts discovered, by scanner type.",
	}, []string{"type"})

	hostsResolved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mappr_hosts_resolved_total",
		Help: "Number of hosts whose hostname was resolved via PTR lookup.",
	})
)

func init() {
	prometheus.MustRegister(scansStarted, scansFinished, scanDuration, hostsDiscovered, hostsResolved)
}

// Serve starts an HTTP server exposing /metrics on addr until ctx is
// cancelled. Errors other than a clean shutdown are logged, not returned,
// since metrics serving is never load-bearing for discovery itself.
func Serve(ctx context.Context, addr string, log *zap.SugaredLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		if log != nil {
			log.Warnw("metrics server exited", "error", err)
		}
	}
}

// ScanRecorder wraps a running scan's metrics bookkeeping: call Finish once
// the scan completes to record its duration and outcome.
type ScanRecorder struct {
	scannerType string
	start       time.Time
}

// StartScan records a scan start and returns a recorder to close it out.
func StartScan(scannerType string) *ScanRecorder {
	scansStarted.WithLabelValues(scannerType).Inc()
	return &ScanRecorder{scannerType: scannerType, start: time.Now()}
}

// Finish records the scan's duration, outcome, and host count.
func (r *ScanRecorder) Finish(err error, hostCount int) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	scanDuration.WithLabelValues(r.scannerType).Observe(time.Since(r.start).Seconds())
	scansFinished.WithLabelValues(r.scannerType, outcome).Inc()
	if hostCount > 0 {
		hostsDiscovered.WithLabelValues(r.scannerType).Add(float64(hostCount))
	}
}

// RecordHostResolved increments the resolved-hostname counter.
func RecordHostResolved() {
	hostsResolved.Inc()
}
