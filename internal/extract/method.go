// Package extract implements the three extraction methods that attempt to
// populate a partial record from a document: structured tables, the raw
// text layer, and visual page analysis.
package extract

import (
	"context"

	"github.com/sells-group/income-verify/internal/model"
)

// Request describes one extraction attempt against a document on disk.
type Request struct {
	Path string
	Kind model.DocumentKind
	// Prior carries the fields already merged from earlier methods. Only the
	// visual method reads it, to seed its prompt in enhancement mode.
	Prior model.FieldMap
}

// Result is the output of one extraction attempt. Fields may be sparse even
// on success; the outcome reports how the attempt ended, not correctness.
type Result struct {
	Fields      model.FieldMap
	Outcome     model.MethodOutcome
	TablesFound int
	TextChars   int
	Detail      string
}

// Extractor is one extraction method. Extract never panics and never lets
// an internal error escape as a hard failure: errors are folded into the
// outcome, and the returned error exists for logging only.
type Extractor interface {
	Method() model.Method
	Extract(ctx context.Context, req Request) (Result, error)
}

// classify maps a populated field map onto a success outcome: full success
// when the sufficiency predicate holds, partial otherwise.
func classify(kind model.DocumentKind, fields model.FieldMap) model.MethodOutcome {
	if model.Sufficient(kind, fields) {
		return model.OutcomeSuccess
	}
	return model.OutcomePartial
}
