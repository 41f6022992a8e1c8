// Package export renders expense records as downloadable files.
package export

import (
	"errors"
	"fmt"

	"github.com/spendlog/spendlog/internal/model"
)

// Format is a supported download format.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
)

// ErrUnknownFormat is returned for formats other than pdf and excel.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat validates a format name from a URL.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatPDF, FormatExcel:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// File is a rendered download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Render builds the file for expenses in the given format.
// Rows are written in the order given.
func Render(format Format, expenses []*model.Expense) (*File, error) {
	switch format {
	case FormatPDF:
		data, err := RenderPDF(expenses)
		if err != nil {
			return nil, err
		}
		return &File{Name: PDFFileName, ContentType: PDFContentType, Data: data}, nil
	case FormatExcel:
		data, err := RenderExcel(expenses)
		if err != nil {
			return nil, err
		}
		return &File{Name: ExcelFileName, ContentType: ExcelContentType, Data: data}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
