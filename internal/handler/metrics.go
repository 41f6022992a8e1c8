package handler

import (
	"fmt"
	"net/http"

	"github.com/spendlog/spendlog/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "spendlog_report_cache_hits_total %d\n", snap.ReportCacheHits)
	writeMetric(w, "spendlog_report_cache_misses_total %d\n", snap.ReportCacheMisses)
	writeMetric(w, "spendlog_report_duration_seconds_count %d\n", snap.ReportDurationCount)
	writeMetric(w, "spendlog_report_duration_seconds_sum %.6f\n", float64(snap.ReportDurationTotalNs)/1e9)

	writeMetric(w, "spendlog_expenses_created_total %d\n", snap.ExpensesCreated)
	writeMetric(w, "spendlog_expenses_updated_total %d\n", snap.ExpensesUpdated)
	writeMetric(w, "spendlog_expenses_deleted_total %d\n", snap.ExpensesDeleted)

	writeMetric(w, "spendlog_exports_total{format=\"pdf\"} %d\n", snap.ExportsPDF)
	writeMetric(w, "spendlog_exports_total{format=\"excel\"} %d\n", snap.ExportsExcel)

	writeMetric(w, "spendlog_hooks_failed_total %d\n", snap.HooksFailed)
	writeMetric(w, "spendlog_alerts_sent_total{status=\"success\"} %d\n", snap.AlertsSent)
	writeMetric(w, "spendlog_alerts_sent_total{status=\"failed\"} %d\n", snap.AlertsFailed)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
