package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/income-verify/internal/model"
)

func set(fields model.FieldMap, key string, value any) {
	fields.Set(model.FieldValue{FieldKey: key, Value: value, Method: model.MethodStructured})
}

func fullPaystubFields() model.FieldMap {
	fields := make(model.FieldMap)
	set(fields, model.FieldEmployerName, "Acme Staffing Inc")
	set(fields, model.FieldEmployeeName, "Jane Doe")
	set(fields, model.FieldPayDate, model.MustDate("2024-03-15"))
	set(fields, model.FieldGrossPayCurrent, model.MustMoney("4056.31"))
	set(fields, model.FieldNetPayCurrent, model.MustMoney("2769.80"))
	set(fields, model.FieldEarnings, []model.EarningLine{
		{Description: "Regular", CurrentAmount: model.MustMoney("4056.31")},
	})
	set(fields, model.FieldTaxes, []model.TaxLine{
		{TaxType: "Federal Income Tax", CurrentAmount: model.MustMoney("512.44")},
	})
	set(fields, model.FieldDeductions, []model.DeductionLine{
		{Description: "401k", CurrentAmount: model.MustMoney("243.38")},
	})
	return fields
}

func TestPerfectPaystubScore(t *testing.T) {
	meta := model.ProcessingMetadata{
		VisualInvoked: true,
		TablesFound:   2,
		TextChars:     1800,
	}

	score, breakdown := Score(model.KindPaystub, fullPaystubFields(), meta)
	assert.Equal(t, 1.0, score)

	require.Len(t, breakdown, 4)
	for _, cat := range breakdown {
		assert.Equal(t, cat.Possible, cat.Earned, cat.Category)
	}
}

func TestEmptyRecordScoresZero(t *testing.T) {
	score, breakdown := Score(model.KindPaystub, make(model.FieldMap), model.ProcessingMetadata{})
	assert.Equal(t, 0.0, score)
	for _, cat := range breakdown {
		assert.Zero(t, cat.Earned)
	}
}

func TestScoreIsPure(t *testing.T) {
	fields := fullPaystubFields()
	meta := model.ProcessingMetadata{TablesFound: 1, TextChars: 500}

	first, _ := Score(model.KindPaystub, fields, meta)
	second, _ := Score(model.KindPaystub, fields, meta)
	assert.Equal(t, first, second)
}

// Adding a previously-missing qualifying field must never lower the score.
func TestScoreMonotonicity(t *testing.T) {
	meta := model.ProcessingMetadata{TablesFound: 1}
	full := fullPaystubFields()

	partial := make(model.FieldMap)
	prev, _ := Score(model.KindPaystub, partial, meta)

	for _, key := range full.Keys() {
		fv, _ := full.Get(key)
		partial.Set(fv)
		score, _ := Score(model.KindPaystub, partial, meta)
		assert.GreaterOrEqual(t, score, prev, "adding %s lowered the score", key)
		prev = score
	}
}

func TestProcessingQualitySignals(t *testing.T) {
	fields := fullPaystubFields()

	base, _ := Score(model.KindPaystub, fields, model.ProcessingMetadata{})
	withVisual, _ := Score(model.KindPaystub, fields, model.ProcessingMetadata{VisualInvoked: true})
	withTables, _ := Score(model.KindPaystub, fields, model.ProcessingMetadata{TablesFound: 3})
	withText, _ := Score(model.KindPaystub, fields, model.ProcessingMetadata{TextChars: 101})

	assert.InDelta(t, base+0.05, withVisual, 1e-9)
	assert.InDelta(t, base+0.03, withTables, 1e-9)
	assert.InDelta(t, base+0.02, withText, 1e-9)
}

func TestW2Rubric(t *testing.T) {
	fields := make(model.FieldMap)
	set(fields, model.FieldEmployerName, "Midwest Logistics Corp")
	set(fields, model.FieldEmployeeName, "John Smith")
	set(fields, model.FieldTaxYear, "2023")
	set(fields, model.FieldWagesTips, model.MustMoney("85000.00"))
	set(fields, model.FieldFederalTaxWithheld, model.MustMoney("10200.00"))
	set(fields, model.FieldMedicareWages, model.MustMoney("85000.00"))

	score, breakdown := Score(model.KindW2, fields, model.ProcessingMetadata{})

	// identity 30 + financial 40, no breakdowns, no processing signals
	assert.InDelta(t, 0.70, score, 1e-9)

	byCategory := make(map[string]model.CategoryScore)
	for _, cat := range breakdown {
		byCategory[cat.Category] = cat
	}
	assert.Equal(t, float64(40), byCategory["financial"].Earned)
	assert.Zero(t, byCategory["breakdowns"].Earned)

	// any single box of 3 through 6 earns the same 10 points
	delete(fields, model.FieldMedicareWages)
	set(fields, model.FieldSSWages, model.MustMoney("85000.00"))
	rescored, _ := Score(model.KindW2, fields, model.ProcessingMetadata{})
	assert.Equal(t, score, rescored)
}

func TestFinancialCategoryMaxWithAllCoreFields(t *testing.T) {
	fields := fullPaystubFields()
	_, breakdown := Score(model.KindPaystub, fields, model.ProcessingMetadata{})

	for _, cat := range breakdown {
		if cat.Category == "financial" {
			assert.Equal(t, float64(40), cat.Earned)
		}
	}
}
