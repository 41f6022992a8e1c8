package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/spendlog/spendlog/internal/model"
)

// reportKeyPrefix is the Redis key prefix for monthly reports.
const reportKeyPrefix = "report:monthly:"

// allTime is the month component of keys for unfiltered reports.
const allTime = "all"

// ReportKey identifies one cached report.
type ReportKey struct {
	UserID string
	// Month is YYYY-MM, or empty for all-time.
	Month string
}

// String renders the key as it is stored.
func (k ReportKey) String() string {
	month := k.Month
	if month == "" {
		month = allTime
	}
	return reportKeyPrefix + k.UserID + ":" + month
}

// ReportCache stores computed reports for a fixed time.
// Set always overwrites; Get returns ErrCacheMiss for absent or expired keys.
type ReportCache interface {
	Get(ctx context.Context, key ReportKey) (*model.Report, error)
	Set(ctx context.Context, key ReportKey, report *model.Report, ttl time.Duration) error
}

// cachedReport is the JSON form of a report.
type cachedReport struct {
	UserID string                     `json:"user_id"`
	Month  string                     `json:"month,omitempty"`
	Totals map[string]decimal.Decimal `json:"totals"`
}

func encodeReport(r *model.Report) ([]byte, error) {
	cached := cachedReport{
		UserID: r.UserID,
		Month:  r.MonthLabel(),
		Totals: make(map[string]decimal.Decimal, len(r.Totals)),
	}
	for cat, sum := range r.Totals {
		cached.Totals[string(cat)] = sum
	}
	return json.Marshal(cached)
}

func decodeReport(data []byte) (*model.Report, error) {
	var cached cachedReport
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	r := &model.Report{
		UserID: cached.UserID,
		Totals: make(map[model.Category]decimal.Decimal, len(cached.Totals)),
	}
	if cached.Month != "" {
		m, err := model.ParseMonth(cached.Month)
		if err != nil {
			return nil, err
		}
		r.Month = &m
	}
	for cat, sum := range cached.Totals {
		r.Totals[model.Category(cat)] = sum
	}
	return r, nil
}

// RedisReportStore keeps reports in Redis with SET ... EX.
type RedisReportStore struct {
	cache *Cache
}

// NewRedisReportStore creates a report store on top of c.
func NewRedisReportStore(c *Cache) *RedisReportStore {
	return &RedisReportStore{cache: c}
}

// Get returns the cached report or ErrCacheMiss.
func (s *RedisReportStore) Get(ctx context.Context, key ReportKey) (*model.Report, error) {
	data, err := s.cache.client.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get report: %w", err)
	}

	r, err := decodeReport(data)
	if err != nil {
		// Corrupted entry - treat as miss
		return nil, ErrCacheMiss
	}
	return r, nil
}

// Set stores report under key for ttl.
func (s *RedisReportStore) Set(ctx context.Context, key ReportKey, report *model.Report, ttl time.Duration) error {
	data, err := encodeReport(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := s.cache.client.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set report: %w", err)
	}
	return nil
}
