// Package docsource provides the document collaborators the extraction
// pipeline reads from: page images, detected tables, and linearized text.
package docsource

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/income-verify/internal/config"
)

// Page is one rendered or embedded page image with its dimensions.
type Page struct {
	Number int
	Width  float64
	Height float64
	Image  []byte // JPEG or PNG bytes
}

// PageSet is the ordered page images of a document.
type PageSet []Page

// Table is one detected table as rows of cell text. Accuracy is a
// detector-specific quality estimate in [0,100].
type Table struct {
	Index    int
	Page     int
	Accuracy float64
	Rows     [][]string
}

// Text flattens the table to whitespace-separated text for pattern matching.
func (t Table) Text() string {
	var out []byte
	for _, row := range t.Rows {
		for i, cell := range row {
			if i > 0 {
				out = append(out, ' ')
			}
			out = append(out, cell...)
		}
		out = append(out, '\n')
	}
	return string(out)
}

// TableSet is all tables detected in a document.
type TableSet []Table

// PageSource provides rendered page images for visual analysis.
type PageSource interface {
	Pages(ctx context.Context, path string) (PageSet, error)
}

// TableSource provides detected tables with cell text.
type TableSource interface {
	Tables(ctx context.Context, path string) (TableSet, error)
}

// TextSource provides linearized text for a document. May return an empty
// string when the document has no selectable text layer.
type TextSource interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// NewTextSource creates a TextSource based on config.
func NewTextSource(cfg config.OCRConfig) (TextSource, error) {
	switch cfg.Provider {
	case "native", "":
		return NewPDFReader(), nil
	case "pdftotext":
		return NewPdfToText(cfg.PdfToTextPath), nil
	default:
		return nil, eris.Errorf("docsource: unknown text provider %q", cfg.Provider)
	}
}
