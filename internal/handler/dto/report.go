package dto

import "github.com/spendlog/spendlog/internal/model"

// ReportResponse is the monthly report body.
// Month is null for all-time reports; categories without spending are omitted.
type ReportResponse struct {
	Month         *string           `json:"month"`
	MonthlyReport map[string]string `json:"monthly_report"`
}

// ToReportResponse converts a Report model to ReportResponse DTO.
func ToReportResponse(r *model.Report) ReportResponse {
	totals := make(map[string]string, len(r.Totals))
	for category, sum := range r.Totals {
		totals[string(category)] = FormatAmount(sum)
	}

	resp := ReportResponse{MonthlyReport: totals}
	if label := r.MonthLabel(); label != "" {
		resp.Month = &label
	}
	return resp
}
