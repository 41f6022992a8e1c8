package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncReportCacheHit() {}
func (n *NoopRecorder) IncReportCacheMiss() {}
func (n *NoopRecorder) ObserveReportDuration(time.Duration) {}
func (n *NoopRecorder) IncExpenseCreated() {}
func (n *NoopRecorder) IncExpenseUpdated() {}
func (n *NoopRecorder) IncExpenseDeleted() {}
func (n *NoopRecorder) IncExportGenerated(string) {}
func (n *NoopRecorder) IncHookFailed() {}
func (n *NoopRecorder) IncAlertSent(string) {}
