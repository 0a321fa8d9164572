package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer lays the table out on landscape A4 pages.
type PDFRenderer struct{}

// NewPDFRenderer constructs a PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render creates a PDF document with the title and a bordered table, repeating headers per page.
func (r *PDFRenderer) Render(table Table) ([]byte, error) {
	if err := validate(table); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	colWidth := 277.0 / float64(len(table.Headers))
	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(235, 235, 235)
		for _, h := range table.Headers {
			pdf.CellFormat(colWidth, 8, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	pdf.SetHeaderFunc(func() {
		if table.Title != "" {
			pdf.SetFont("Arial", "B", 13)
			pdf.CellFormat(0, 9, tr(table.Title), "", 1, "L", false, 0, "")
			pdf.Ln(2)
		}
		header()
	})
	pdf.AddPage()

	for _, row := range table.Rows {
		for _, cell := range row {
			pdf.CellFormat(colWidth, 7, tr(cell), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
