package extract

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/income-verify/internal/docsource"
	"github.com/sells-group/income-verify/internal/model"
)

// minTextChars is the threshold below which the text layer is considered
// absent (scanned image with no OCR layer).
const minTextChars = 20

// RawText extracts fields from the document's linearized text layer. It is
// the second method in the chain: less precise than tables but works on
// any document with selectable text.
type RawText struct {
	source docsource.TextSource
}

// NewRawText creates the raw-text extractor.
func NewRawText(source docsource.TextSource) *RawText {
	return &RawText{source: source}
}

func (r *RawText) Method() model.Method { return model.MethodText }

func (r *RawText) Extract(ctx context.Context, req Request) (Result, error) {
	text, err := r.source.ExtractText(ctx, req.Path)
	if err != nil {
		outcome := model.OutcomeFailed
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = model.OutcomeUnavailable
		}
		zap.L().Warn("text extraction failed",
			zap.String("path", req.Path),
			zap.Error(err),
		)
		return Result{
			Fields:  make(model.FieldMap),
			Outcome: outcome,
			Detail:  "text layer read failed",
		}, eris.Wrap(err, "extract: read text layer")
	}

	if len(text) < minTextChars {
		return Result{
			Fields:    make(model.FieldMap),
			Outcome:   model.OutcomeFailed,
			TextChars: len(text),
			Detail:    "no usable text layer",
		}, nil
	}

	var fields model.FieldMap
	switch req.Kind {
	case model.KindW2:
		fields = ParseW2Text(text, model.MethodText)
	default:
		fields = ParsePaystubText(text, model.MethodText)
	}

	zap.L().Debug("text extraction complete",
		zap.String("path", req.Path),
		zap.Int("chars", len(text)),
		zap.Int("fields", len(fields)),
	)

	return Result{
		Fields:    fields,
		Outcome:   classify(req.Kind, fields),
		TextChars: len(text),
	}, nil
}
