package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthLayout is the format of month specifiers ("2024-04").
const MonthLayout = "2006-01"

// Month identifies a calendar year-month.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, err
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return m.Start().Format(MonthLayout)
}

// Start returns the first instant of the month in UTC.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the following month in UTC.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, 0)
}

// Report is a per-category spending summary for one user.
// Categories with no spending are absent from Totals.
type Report struct {
	UserID string
	// Month is nil for all-time reports.
	Month  *Month
	Totals map[Category]decimal.Decimal
}

// MonthLabel returns the month as YYYY-MM, or empty for all-time reports.
func (r *Report) MonthLabel() string {
	if r.Month == nil {
		return ""
	}
	return r.Month.String()
}
