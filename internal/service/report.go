package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendlog/spendlog/internal/access"
	"github.com/spendlog/spendlog/internal/cache"
	"github.com/spendlog/spendlog/internal/metrics"
	"github.com/spendlog/spendlog/internal/model"
)

// ErrInvalidMonth is returned for month filters not in YYYY-MM form.
var ErrInvalidMonth = errors.New("invalid month format, use YYYY-MM")

// DefaultReportTTL is how long a computed report is served from cache.
const DefaultReportTTL = 10 * time.Minute

// ReportStore aggregates expense totals.
type ReportStore interface {
	SumByCategory(ctx context.Context, scope model.Scope, month *model.Month) (map[model.Category]decimal.Decimal, error)
}

// ReportService computes per-category spending summaries.
// Results are cached per user and month and are not invalidated by later
// writes; a report can lag behind the records for up to the TTL.
type ReportService struct {
	store   ReportStore
	cache   cache.ReportCache
	ttl     time.Duration
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewReportService creates a new ReportService. A non-positive ttl uses DefaultReportTTL.
func NewReportService(store ReportStore, reportCache cache.ReportCache, ttl time.Duration, recorder metrics.Recorder, logger *slog.Logger) *ReportService {
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		store:   store,
		cache:   reportCache,
		ttl:     ttl,
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

// MonthlyReport returns the caller's totals per category for month (YYYY-MM),
// or for all time when month is empty. Categories with no spending are absent.
func (s *ReportService) MonthlyReport(ctx context.Context, p *model.Principal, month string) (*model.Report, error) {
	if p == nil || p.UserID == "" {
		return nil, ErrUnauthenticated
	}
	start := s.now()
	defer func() { s.metrics.ObserveReportDuration(s.now().Sub(start)) }()

	var filter *model.Month
	if month != "" {
		m, err := model.ParseMonth(month)
		if err != nil {
			return nil, ErrInvalidMonth
		}
		filter = &m
	}

	key := cache.ReportKey{UserID: p.UserID}
	if filter != nil {
		key.Month = filter.String()
	}

	if cached, ok := s.lookup(ctx, key); ok {
		s.metrics.IncReportCacheHit()
		return cached, nil
	}
	s.metrics.IncReportCacheMiss()

	totals, err := s.store.SumByCategory(ctx, access.ScopeFor(p, access.ActionReport), filter)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate expenses: %w", err)
	}

	report := &model.Report{
		UserID: p.UserID,
		Month:  filter,
		Totals: totals,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report, s.ttl); err != nil {
			s.logger.Warn("report cache write failed",
				slog.String("key", key.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	return report, nil
}

// lookup reads the cache; any failure is logged and treated as a miss.
func (s *ReportService) lookup(ctx context.Context, key cache.ReportKey) (*model.Report, bool) {
	if s.cache == nil {
		return nil, false
	}
	report, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("report cache read failed",
				slog.String("key", key.String()),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}
	return report, true
}
