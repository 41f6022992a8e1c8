package export

import (
	"bytes"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spendlog/spendlog/internal/model"
)

func expense(day int, amount string, category model.Category, desc *string) *model.Expense {
	return &model.Expense{
		ID:          "e" + strconv.Itoa(day),
		UserID:      "u1",
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Description: desc,
		Date:        time.Date(2024, time.April, day, 0, 0, 0, 0, time.UTC),
	}
}

func ptr(s string) *string { return &s }

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"pdf", FormatPDF, false},
		{"excel", FormatExcel, false},
		{"PDF", "", true},
		{"csv", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnknownFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_FileMetadata(t *testing.T) {
	t.Parallel()

	rows := []*model.Expense{expense(3, "12.50", model.CategoryFood, nil)}

	pdf, err := Render(FormatPDF, rows)
	require.NoError(t, err)
	assert.Equal(t, "expense_report.pdf", pdf.Name)
	assert.Equal(t, "application/pdf", pdf.ContentType)

	xlsx, err := Render(FormatExcel, rows)
	require.NoError(t, err)
	assert.Equal(t, "expense_report.xlsx", xlsx.Name)
	assert.Equal(t, ExcelContentType, xlsx.ContentType)

	_, err = Render(Format("csv"), rows)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRenderExcel(t *testing.T) {
	t.Parallel()

	rows := []*model.Expense{
		expense(9, "12.50", model.CategoryFood, ptr("lunch")),
		expense(3, "100", model.CategoryTravel, nil),
	}

	data, err := RenderExcel(rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{ExcelSheetName}, f.GetSheetList())

	got, err := f.GetRows(ExcelSheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []string{"date", "category", "amount", "description"}, got[0])

	assert.Equal(t, "2024-04-09", got[1][0])
	assert.Equal(t, "Food", got[1][1])
	amount, err := strconv.ParseFloat(got[1][2], 64)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, amount, 0.001)
	assert.Equal(t, "lunch", got[1][3])

	// Rows keep the given order and an empty description leaves the cell blank.
	assert.Equal(t, "2024-04-03", got[2][0])
	assert.Equal(t, "Travel", got[2][1])
	if len(got[2]) > 3 {
		assert.Empty(t, got[2][3])
	}
}

func TestRenderExcel_Empty(t *testing.T) {
	t.Parallel()

	data, err := RenderExcel(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := f.GetRows(ExcelSheetName)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRenderPDF(t *testing.T) {
	t.Parallel()

	data, err := RenderPDF([]*model.Expense{expense(3, "12.5", model.CategoryFood, nil)})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "output should be a PDF document")
}

func TestPDFLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2024-04-03 - Food: $12.50", pdfLine(expense(3, "12.5", model.CategoryFood, nil)))
	assert.Equal(t, "2024-04-10 - Rent: $1200.00", pdfLine(expense(10, "1200", model.CategoryRent, ptr("ignored"))))
}

func TestBuildPDF_Pagination(t *testing.T) {
	t.Parallel()

	rows := func(n int) []*model.Expense {
		out := make([]*model.Expense, n)
		for i := range out {
			out[i] = expense(1, "1.00", model.CategoryFood, nil)
		}
		return out
	}

	tests := []struct {
		name  string
		n     int
		pages int
	}{
		{"empty", 0, 1},
		{"first page full", 38, 1},
		{"spills to second page", 39, 2},
		{"second page full", 38 + 39, 2},
		{"third page", 38 + 39 + 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pdf := buildPDF(rows(tt.n))
			require.NoError(t, pdf.Error())
			assert.Equal(t, tt.pages, pdf.PageCount())
		})
	}
}
