package docsource

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/income-verify/internal/model"
)

// cellGapPoints is the minimum horizontal gap between words that starts a
// new table cell.
const cellGapPoints = 18.0

// Probe checks that the input is a valid, parseable PDF. Returns an error
// wrapping model.ErrUnreadableDocument when it is not.
func Probe(path string) error {
	if _, err := os.Stat(path); err != nil {
		return eris.Wrapf(model.ErrUnreadableDocument, "docsource: stat %s: %v", path, err)
	}
	conf := pdfmodel.NewDefaultConfiguration()
	if err := api.ValidateFile(path, conf); err != nil {
		return eris.Wrapf(model.ErrUnreadableDocument, "docsource: validate %s: %v", path, err)
	}
	return nil
}

// PDFReader extracts the text layer in-process.
type PDFReader struct{}

// NewPDFReader creates an in-process text source.
func NewPDFReader() *PDFReader {
	return &PDFReader{}
}

// ExtractText reads the selectable text layer page by page. Returns an empty
// string (not an error) for image-only documents.
func (r *PDFReader) ExtractText(ctx context.Context, path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", eris.Wrapf(err, "docsource: open %s", path)
	}
	defer f.Close()

	var b strings.Builder
	total := reader.NumPage()
	for pageIndex := 1; pageIndex <= total; pageIndex++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		p := reader.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			zap.L().Debug("docsource: text rows failed",
				zap.String("path", path),
				zap.Int("page", pageIndex),
				zap.Error(err),
			)
			continue
		}
		for _, row := range rows {
			prevEnd := -1.0
			for _, word := range row.Content {
				if prevEnd >= 0 && word.X-prevEnd > cellGapPoints {
					b.WriteString("  ")
				}
				b.WriteString(word.S)
				prevEnd = word.X + word.W
			}
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// PDFTables detects tables from word geometry: consecutive text rows whose
// words split into two or more aligned columns.
type PDFTables struct{}

// NewPDFTables creates a geometry-based table source.
func NewPDFTables() *PDFTables {
	return &PDFTables{}
}

// Tables scans every page for column-aligned row groups and returns them as
// cell grids.
func (t *PDFTables) Tables(ctx context.Context, path string) (TableSet, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "docsource: open %s", path)
	}
	defer f.Close()

	var tables TableSet
	total := reader.NumPage()
	for pageIndex := 1; pageIndex <= total; pageIndex++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p := reader.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			continue
		}

		var current [][]string
		flush := func() {
			if len(current) >= 2 {
				tables = append(tables, Table{
					Index:    len(tables),
					Page:     pageIndex,
					Accuracy: tableAccuracy(current),
					Rows:     current,
				})
			}
			current = nil
		}

		for _, row := range rows {
			cells := splitCells(row.Content)
			if len(cells) >= 2 {
				current = append(current, cells)
			} else {
				flush()
			}
		}
		flush()
	}

	zap.L().Debug("docsource: table detection complete",
		zap.String("path", path),
		zap.Int("tables", len(tables)),
	)
	return tables, nil
}

// splitCells groups a row's words into cells wherever the horizontal gap
// exceeds cellGapPoints.
func splitCells(words pdf.TextHorizontal) []string {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]pdf.Text, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var cells []string
	var cell strings.Builder
	prevEnd := -1.0
	for _, w := range sorted {
		if prevEnd >= 0 && w.X-prevEnd > cellGapPoints {
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		}
		cell.WriteString(w.S)
		prevEnd = w.X + w.W
	}
	if s := strings.TrimSpace(cell.String()); s != "" {
		cells = append(cells, s)
	}
	return cells
}

// tableAccuracy estimates detection quality from column-count consistency
// across rows.
func tableAccuracy(rows [][]string) float64 {
	counts := make(map[int]int)
	for _, r := range rows {
		counts[len(r)]++
	}
	best := 0
	for _, n := range counts {
		if n > best {
			best = n
		}
	}
	return 100 * float64(best) / float64(len(rows))
}

// PDFPages provides page images for visual analysis by extracting embedded
// page images with pdfcpu. Dimensions come from the page media boxes.
type PDFPages struct{}

// NewPDFPages creates a page-image source.
func NewPDFPages() *PDFPages {
	return &PDFPages{}
}

// Pages extracts images from the first page of the document. Scanned
// documents carry the full page scan as a single embedded image, which is
// what the visual method needs.
func (p *PDFPages) Pages(ctx context.Context, path string) (PageSet, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "docsource: page dims %s", path)
	}

	tempDir, err := os.MkdirTemp("", "income-verify-pages")
	if err != nil {
		return nil, eris.Wrap(err, "docsource: create temp dir")
	}
	defer os.RemoveAll(tempDir)

	conf := pdfmodel.NewDefaultConfiguration()
	if err := api.ExtractImagesFile(path, tempDir, []string{"1"}, conf); err != nil {
		return nil, eris.Wrapf(err, "docsource: extract images %s", path)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return nil, eris.Wrap(err, "docsource: read temp dir")
	}

	var pages PageSet
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(tempDir, entry.Name()))
		if err != nil {
			continue
		}
		page := Page{Number: len(pages) + 1, Image: data}
		if len(dims) > 0 {
			page.Width = dims[0].Width
			page.Height = dims[0].Height
		}
		pages = append(pages, page)
	}

	return pages, nil
}
