package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterTable() Table {
	return Table{
		Title:   "Solo Dance - Registered Students",
		Headers: []string{"Name", "Email", "Gender"},
		Rows: [][]string{
			{"Asha R", "asha@example.com", "Female"},
			{"Vik, S", "vik@example.com", "Male"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestCSVRender(t *testing.T) {
	out, err := RendererFor(FormatCSV).Render(rosterTable())
	require.NoError(t, err)
	assert.Equal(t, "Name,Email,Gender\nAsha R,asha@example.com,Female\n\"Vik, S\",vik@example.com,Male\n", string(out))
}

func TestRenderRejectsRaggedRows(t *testing.T) {
	table := rosterTable()
	table.Rows = append(table.Rows, []string{"only one"})
	_, err := NewCSVRenderer().Render(table)
	assert.Error(t, err)

	_, err = NewPDFRenderer().Render(Table{})
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	out, err := RendererFor(FormatPDF).Render(rosterTable())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
