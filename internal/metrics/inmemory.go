package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ReportCacheHits       uint64
	ReportCacheMisses     uint64
	ReportDurationCount   uint64
	ReportDurationTotalNs int64

	ExpensesCreated uint64
	ExpensesUpdated uint64
	ExpensesDeleted uint64

	ExportsPDF   uint64
	ExportsExcel uint64

	HooksFailed  uint64
	AlertsSent   uint64
	AlertsFailed uint64
}

// InMemoryRecorder stores metrics in memory.
// It backs the /metrics endpoint and is used directly in tests.
type InMemoryRecorder struct {
	reportCacheHits       atomic.Uint64
	reportCacheMisses     atomic.Uint64
	reportDurationCount   atomic.Uint64
	reportDurationTotalNs atomic.Int64

	expensesCreated atomic.Uint64
	expensesUpdated atomic.Uint64
	expensesDeleted atomic.Uint64

	exportsPDF   atomic.Uint64
	exportsExcel atomic.Uint64

	hooksFailed  atomic.Uint64
	alertsSent   atomic.Uint64
	alertsFailed atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		ReportCacheHits:       m.reportCacheHits.Load(),
		ReportCacheMisses:     m.reportCacheMisses.Load(),
		ReportDurationCount:   m.reportDurationCount.Load(),
		ReportDurationTotalNs: m.reportDurationTotalNs.Load(),
		ExpensesCreated:       m.expensesCreated.Load(),
		ExpensesUpdated:       m.expensesUpdated.Load(),
		ExpensesDeleted:       m.expensesDeleted.Load(),
		ExportsPDF:            m.exportsPDF.Load(),
		ExportsExcel:          m.exportsExcel.Load(),
		HooksFailed:           m.hooksFailed.Load(),
		AlertsSent:            m.alertsSent.Load(),
		AlertsFailed:          m.alertsFailed.Load(),
	}
}

// IncReportCacheHit increments the report cache hit counter.
func (m *InMemoryRecorder) IncReportCacheHit() { m.reportCacheHits.Add(1) }

// IncReportCacheMiss increments the report cache miss counter.
func (m *InMemoryRecorder) IncReportCacheMiss() { m.reportCacheMisses.Add(1) }

// ObserveReportDuration records how long a report request took.
func (m *InMemoryRecorder) ObserveReportDuration(duration time.Duration) {
	m.reportDurationCount.Add(1)
	m.reportDurationTotalNs.Add(duration.Nanoseconds())
}

// IncExpenseCreated increments the expense created counter.
func (m *InMemoryRecorder) IncExpenseCreated() { m.expensesCreated.Add(1) }

// IncExpenseUpdated increments the expense updated counter.
func (m *InMemoryRecorder) IncExpenseUpdated() { m.expensesUpdated.Add(1) }

// IncExpenseDeleted increments the expense deleted counter.
func (m *InMemoryRecorder) IncExpenseDeleted() { m.expensesDeleted.Add(1) }

// IncExportGenerated increments the export counter for format.
func (m *InMemoryRecorder) IncExportGenerated(format string) {
	switch format {
	case "pdf":
		m.exportsPDF.Add(1)
	case "excel":
		m.exportsExcel.Add(1)
	}
}

// IncHookFailed increments the failed post-create hook counter.
func (m *InMemoryRecorder) IncHookFailed() { m.hooksFailed.Add(1) }

// IncAlertSent increments the alert counter for status.
func (m *InMemoryRecorder) IncAlertSent(status string) {
	if status == "success" {
		m.alertsSent.Add(1)
		return
	}
	m.alertsFailed.Add(1)
}
