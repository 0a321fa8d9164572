package export

import (
	"fmt"
	"strings"
)

// Format identifies a rendered file type.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat normalises a user supplied format, defaulting to CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

// Table is ordered tabular content: every row has one cell per header.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Renderer turns a table into file bytes.
type Renderer interface {
	Render(table Table) ([]byte, error)
}

// RendererFor returns the renderer for a format.
func RendererFor(f Format) Renderer {
	if f == FormatPDF {
		return NewPDFRenderer()
	}
	return NewCSVRenderer()
}

func validate(table Table) error {
	if len(table.Headers) == 0 {
		return fmt.Errorf("table requires at least one header")
	}
	for i, row := range table.Rows {
		if len(row) != len(table.Headers) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(table.Headers))
		}
	}
	return nil
}
