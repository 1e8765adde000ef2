package docsource

import (
	"context"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/income-verify/internal/config"
)

func word(s string, x, w float64) pdf.Text {
	return pdf.Text{S: s, X: x, W: w}
}

func TestSplitCells(t *testing.T) {
	row := pdf.TextHorizontal{
		word("Gross", 10, 30),
		word("Pay", 42, 20), // small gap: same cell
		word("4,056.31", 200, 50),
	}
	cells := splitCells(row)
	require.Len(t, cells, 2)
	assert.Equal(t, "GrossPay", cells[0])
	assert.Equal(t, "4,056.31", cells[1])
}

func TestSplitCells_Empty(t *testing.T) {
	assert.Nil(t, splitCells(nil))
}

func TestSplitCells_UnorderedInput(t *testing.T) {
	row := pdf.TextHorizontal{
		word("2769.80", 300, 50),
		word("Net", 10, 25),
	}
	cells := splitCells(row)
	require.Len(t, cells, 2)
	assert.Equal(t, "Net", cells[0])
	assert.Equal(t, "2769.80", cells[1])
}

func TestTableAccuracy(t *testing.T) {
	uniform := [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}}
	assert.InDelta(t, 100.0, tableAccuracy(uniform), 0.01)

	ragged := [][]string{{"a", "b"}, {"c", "d", "e"}, {"f", "g"}, {"h", "i"}}
	assert.InDelta(t, 75.0, tableAccuracy(ragged), 0.01)
}

func TestTableText(t *testing.T) {
	tbl := Table{Rows: [][]string{{"Gross Pay", "4056.31"}, {"Net Pay", "2769.80"}}}
	assert.Equal(t, "Gross Pay 4056.31\nNet Pay 2769.80\n", tbl.Text())
}

func TestNewTextSource(t *testing.T) {
	src, err := NewTextSource(config.OCRConfig{Provider: "native"})
	require.NoError(t, err)
	assert.IsType(t, &PDFReader{}, src)

	src, err = NewTextSource(config.OCRConfig{Provider: "pdftotext", PdfToTextPath: "/usr/bin/pdftotext"})
	require.NoError(t, err)
	assert.IsType(t, &PdfToText{}, src)

	_, err = NewTextSource(config.OCRConfig{Provider: "camelot"})
	assert.Error(t, err)
}

func TestProbe_MissingFile(t *testing.T) {
	err := Probe("/nonexistent/doc.pdf")
	require.Error(t, err)
}

func TestPdfToText_MissingBinary(t *testing.T) {
	p := NewPdfToText("/nonexistent/pdftotext")
	_, err := p.ExtractText(context.Background(), "doc.pdf")
	assert.Error(t, err)
}
