package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/spendlog/spendlog/internal/export"
	"github.com/spendlog/spendlog/internal/handler/dto"
	"github.com/spendlog/spendlog/internal/model"
	"github.com/spendlog/spendlog/internal/service"
)

// Reporter computes monthly reports.
type Reporter interface {
	MonthlyReport(ctx context.Context, p *model.Principal, month string) (*model.Report, error)
}

// Exporter renders the caller's records as a download.
type Exporter interface {
	Export(ctx context.Context, p *model.Principal, format export.Format) (*export.File, error)
}

// ReportHandler serves the monthly report and the file downloads.
type ReportHandler struct {
	reports Reporter
	exports Exporter
	logger  *slog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports Reporter, exports Exporter, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		exports: exports,
		logger:  logger,
	}
}

// Monthly handles GET /api/report/monthly?month=YYYY-MM.
// Without month the report covers all of the caller's records.
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	report, err := h.reports.MonthlyReport(r.Context(), p, r.URL.Query().Get("month"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToReportResponse(report))
}

// Download handles GET /api/report/download/{format} for pdf and excel.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	file, err := h.exports.Export(r.Context(), p, format)
	if err != nil {
		if errors.Is(err, service.ErrNoData) {
			writeJSON(w, http.StatusNotFound, dto.MessageResponse{Message: "No expense data found."})
			return
		}
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("report_exported",
		"user_id", p.UserID,
		"format", string(format),
		"bytes", len(file.Data),
	)

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
