// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Report metrics
	IncReportCacheHit()
	IncReportCacheMiss()
	ObserveReportDuration(duration time.Duration)

	// Expense record metrics
	IncExpenseCreated()
	IncExpenseUpdated()
	IncExpenseDeleted()

	// Export metrics
	IncExportGenerated(format string) // format: "pdf" or "excel"

	// Post-create hooks and alerts
	IncHookFailed()
	IncAlertSent(status string) // status: "success" or "failed"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
