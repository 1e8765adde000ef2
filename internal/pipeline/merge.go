package pipeline

import (
	"reflect"

	"github.com/sells-group/income-verify/internal/model"
)

// mergeFill folds a partial record into the accumulated fields. For each
// field the first non-empty value wins; a later method that disagrees gets
// recorded as a contradiction on the winning value instead of overwriting.
func mergeFill(acc model.FieldMap, partial model.PartialRecord) {
	for _, key := range partial.Fields.Keys() {
		incoming, _ := partial.Fields.Get(key)
		if !acc.Has(key) {
			acc.Set(incoming)
			continue
		}
		existing, _ := acc.Get(key)
		if existing.Contradiction == nil && !valuesAgree(existing.Value, incoming.Value) {
			existing.Contradiction = &model.Contradiction{
				OtherMethod: incoming.Method,
				OtherValue:  incoming.Value,
			}
			acc.Set(existing)
		}
	}
}

// mergeEnhance folds enhancement-mode fields in: gaps are filled as usual,
// but a populated field is replaced only when the cross-validator flagged
// it as an arithmetic suspect. The replaced value is kept as the
// contradiction record on the new winner.
func mergeEnhance(acc model.FieldMap, partial model.PartialRecord, suspects map[string]bool) {
	for _, key := range partial.Fields.Keys() {
		incoming, _ := partial.Fields.Get(key)
		if !acc.Has(key) {
			acc.Set(incoming)
			continue
		}
		existing, _ := acc.Get(key)
		if valuesAgree(existing.Value, incoming.Value) {
			continue
		}
		if suspects[key] {
			incoming.Contradiction = &model.Contradiction{
				OtherMethod: existing.Method,
				OtherValue:  existing.Value,
			}
			acc.Set(incoming)
			continue
		}
		if existing.Contradiction == nil {
			existing.Contradiction = &model.Contradiction{
				OtherMethod: incoming.Method,
				OtherValue:  incoming.Value,
			}
			acc.Set(existing)
		}
	}
}

// valuesAgree compares two field values for contradiction detection.
// Monetary and date values compare by their canonical representation;
// composites compare structurally.
func valuesAgree(a, b any) bool {
	switch av := a.(type) {
	case model.Money:
		if bv, ok := b.(model.Money); ok {
			return av.Cmp(bv) == 0
		}
	case model.Date:
		if bv, ok := b.(model.Date); ok {
			return av.String() == bv.String()
		}
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
	}
	return reflect.DeepEqual(a, b)
}
