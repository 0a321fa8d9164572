package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVRenderer writes the header row followed by the data rows.
type CSVRenderer struct{}

// NewCSVRenderer builds a CSV renderer.
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

// Render produces CSV encoded bytes.
func (r *CSVRenderer) Render(table Table) ([]byte, error) {
	if err := validate(table); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(table.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}
