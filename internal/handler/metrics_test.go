package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spendlog/spendlog/internal/metrics"
)

func TestMetricsHandler(t *testing.T) {
	t.Parallel()

	m := metrics.NewInMemory()
	m.IncReportCacheHit()
	m.IncReportCacheMiss()
	m.ObserveReportDuration(1500 * time.Millisecond)
	m.IncExportGenerated("pdf")
	m.IncAlertSent("failed")

	rec := httptest.NewRecorder()
	NewMetricsHandler(m).Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, line := range []string{
		"spendlog_report_cache_hits_total 1",
		"spendlog_report_cache_misses_total 1",
		"spendlog_report_duration_seconds_sum 1.500000",
		`spendlog_exports_total{format="pdf"} 1`,
		`spendlog_exports_total{format="excel"} 0`,
		`spendlog_alerts_sent_total{status="failed"} 1`,
	} {
		if !strings.Contains(body, line+"\n") {
			t.Errorf("missing %q in:\n%s", line, body)
		}
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewMetricsHandler(nil).Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}
}
