package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spendlog/spendlog/internal/access"
	"github.com/spendlog/spendlog/internal/export"
	"github.com/spendlog/spendlog/internal/metrics"
	"github.com/spendlog/spendlog/internal/model"
)

// ErrNoData is returned when the caller has nothing to export.
var ErrNoData = errors.New("no expense data found")

// ExportStore reads the full record set for a download.
type ExportStore interface {
	ExportExpenses(ctx context.Context, scope model.Scope) ([]*model.Expense, error)
}

// ExportService renders the caller's records as PDF or XLSX files.
type ExportService struct {
	store   ExportStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewExportService creates a new ExportService.
func NewExportService(store ExportStore, recorder metrics.Recorder, logger *slog.Logger) *ExportService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		store:   store,
		metrics: recorder,
		logger:  logger,
	}
}

// Export renders every record owned by the caller, newest first.
// Staff get their own records only.
func (s *ExportService) Export(ctx context.Context, p *model.Principal, format export.Format) (*export.File, error) {
	if p == nil || p.UserID == "" {
		return nil, ErrUnauthenticated
	}

	expenses, err := s.store.ExportExpenses(ctx, access.ScopeFor(p, access.ActionExport))
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses for export: %w", err)
	}
	if len(expenses) == 0 {
		return nil, ErrNoData
	}

	file, err := export.Render(format, expenses)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", format, err)
	}
	s.metrics.IncExportGenerated(string(format))

	s.logger.Debug("export generated",
		slog.String("user_id", p.UserID),
		slog.String("format", string(format)),
		slog.Int("rows", len(expenses)),
	)
	return file, nil
}
