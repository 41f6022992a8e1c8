package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/spendlog/spendlog/internal/model"
)

const (
	ExcelFileName    = "expense_report.xlsx"
	ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ExcelSheetName   = "Expenses"
)

var excelHeaders = []string{"date", "category", "amount", "description"}

// RenderExcel builds an in-memory workbook with one row per expense.
func RenderExcel(expenses []*model.Expense) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ExcelSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, header := range excelHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ExcelSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, e := range expenses {
		row := i + 2
		values := []any{
			e.DateString(),
			string(e.Category),
			e.Amount.InexactFloat64(),
			e.DescriptionText(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(ExcelSheetName, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	if len(expenses) > 0 {
		// builtin number format 2 is "0.00"
		style, err := f.NewStyle(&excelize.Style{NumFmt: 2})
		if err != nil {
			return nil, fmt.Errorf("create amount style: %w", err)
		}
		last := fmt.Sprintf("C%d", len(expenses)+1)
		if err := f.SetCellStyle(ExcelSheetName, "C2", last, style); err != nil {
			return nil, fmt.Errorf("apply amount style: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
