package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/spendlog/spendlog/internal/model"
)

const (
	PDFFileName    = "expense_report.pdf"
	PDFContentType = "application/pdf"
	PDFTitle       = "Expense Report"
)

// Layout in points on A4 portrait.
const (
	pdfLeftMargin   = 100.0
	pdfTopBaseline  = 42.0
	pdfLineHeight   = 20.0
	pdfBottomMargin = 36.0
	pdfFontSize     = 12.0
)

// RenderPDF builds a plain text listing, one line per expense.
func RenderPDF(expenses []*model.Expense) ([]byte, error) {
	pdf := buildPDF(expenses)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func buildPDF(expenses []*model.Expense) *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(PDFTitle, false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", pdfFontSize)

	_, pageHeight := pdf.GetPageSize()
	maxBaseline := pageHeight - pdfBottomMargin

	pdf.AddPage()
	y := pdfTopBaseline
	pdf.Text(pdfLeftMargin, y, PDFTitle)
	y += pdfLineHeight

	for _, e := range expenses {
		if y > maxBaseline {
			pdf.AddPage()
			y = pdfTopBaseline
		}
		pdf.Text(pdfLeftMargin, y, pdfLine(e))
		y += pdfLineHeight
	}
	return pdf
}

// pdfLine formats one expense as "2024-04-03 - Food: $12.50".
func pdfLine(e *model.Expense) string {
	return fmt.Sprintf("%s - %s: $%s", e.DateString(), e.Category, e.Amount.StringFixed(2))
}
