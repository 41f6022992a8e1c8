package cache

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlog/spendlog/internal/model"
)

type memoryEntry struct {
	report    *model.Report
	expiresAt time.Time
}

// MemoryStore is an in-process ReportCache.
// Expired entries are dropped when read; nothing runs in the background.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty store. A nil clock means time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

// Get returns the cached report or ErrCacheMiss.
func (s *MemoryStore) Get(_ context.Context, key ReportKey) (*model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key.String()
	entry, ok := s.entries[k]
	if !ok {
		return nil, ErrCacheMiss
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, k)
		return nil, ErrCacheMiss
	}
	return cloneReport(entry.report), nil
}

// Set stores report under key for ttl, replacing any previous entry.
func (s *MemoryStore) Set(_ context.Context, key ReportKey, report *model.Report, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key.String()] = memoryEntry{
		report:    cloneReport(report),
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func cloneReport(r *model.Report) *model.Report {
	out := &model.Report{
		UserID: r.UserID,
		Totals: maps.Clone(r.Totals),
	}
	if r.Month != nil {
		m := *r.Month
		out.Month = &m
	}
	if out.Totals == nil {
		out.Totals = map[model.Category]decimal.Decimal{}
	}
	return out
}
