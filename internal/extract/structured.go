package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/income-verify/internal/docsource"
	"github.com/sells-group/income-verify/internal/model"
)

// Structured extracts fields from detected tables. It is the cheapest and
// most precise method when the document has a real table grid, and the
// first one the orchestrator tries.
type Structured struct {
	tables docsource.TableSource
}

// NewStructured creates the structured-table extractor.
func NewStructured(tables docsource.TableSource) *Structured {
	return &Structured{tables: tables}
}

func (s *Structured) Method() model.Method { return model.MethodStructured }

func (s *Structured) Extract(ctx context.Context, req Request) (Result, error) {
	tables, err := s.tables.Tables(ctx, req.Path)
	if err != nil {
		zap.L().Warn("structured extraction failed",
			zap.String("path", req.Path),
			zap.Error(err),
		)
		return Result{
			Fields:  make(model.FieldMap),
			Outcome: model.OutcomeFailed,
			Detail:  "table detection failed",
		}, err
	}

	if len(tables) == 0 {
		return Result{
			Fields:  make(model.FieldMap),
			Outcome: model.OutcomeFailed,
			Detail:  "no tables detected",
		}, nil
	}

	// Parse each table's flattened text, best-accuracy tables first so
	// their matches win the first-set-stays rule.
	ordered := make(docsource.TableSet, len(tables))
	copy(ordered, tables)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].Accuracy > ordered[j-1].Accuracy; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}

	fields := make(model.FieldMap)
	for _, table := range ordered {
		var parsed model.FieldMap
		switch req.Kind {
		case model.KindW2:
			parsed = ParseW2Text(table.Text(), model.MethodStructured)
		default:
			parsed = ParsePaystubText(table.Text(), model.MethodStructured)
		}
		for _, key := range parsed.Keys() {
			if !fields.Has(key) {
				fv, _ := parsed.Get(key)
				fields.Set(fv)
			}
		}
	}

	zap.L().Debug("structured extraction complete",
		zap.String("path", req.Path),
		zap.Int("tables", len(tables)),
		zap.Int("fields", len(fields)),
	)

	return Result{
		Fields:      fields,
		Outcome:     classify(req.Kind, fields),
		TablesFound: len(tables),
	}, nil
}
