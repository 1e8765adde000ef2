// Package scorer derives the confidence score for an extracted record from
// a fixed point-allocation rubric. The function is pure: the same field map
// and processing metadata always produce the same score, and adding a
// populated field never lowers it.
package scorer

import (
	"github.com/sells-group/income-verify/internal/model"
)

// Point budget shared by both document kinds.
const (
	identityPoints   = 30
	financialPoints  = 40
	breakdownPoints  = 20
	processingPoints = 10
)

// Score applies the rubric and returns the confidence in [0,1] together
// with the per-category breakdown retained for auditability.
//
// The processing-quality category awards points for invoking the visual
// method and for structural signals (tables found, text volume), not for
// field correctness. That bias is inherited from the rubric this one
// replicates and is kept intact so scores stay comparable.
func Score(kind model.DocumentKind, fields model.FieldMap, meta model.ProcessingMetadata) (float64, []model.CategoryScore) {
	var breakdown []model.CategoryScore
	switch kind {
	case model.KindW2:
		breakdown = []model.CategoryScore{
			scoreIdentityW2(fields),
			scoreFinancialW2(fields),
			scoreBreakdownsW2(fields),
			scoreProcessing(meta),
		}
	default:
		breakdown = []model.CategoryScore{
			scoreIdentityPaystub(fields),
			scoreFinancialPaystub(fields),
			scoreBreakdownsPaystub(fields),
			scoreProcessing(meta),
		}
	}

	var earned, possible float64
	for _, cat := range breakdown {
		earned += cat.Earned
		possible += cat.Possible
	}

	score := earned / possible
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, breakdown
}

func scoreIdentityPaystub(fields model.FieldMap) model.CategoryScore {
	cat := model.CategoryScore{Category: "identity", Possible: identityPoints}
	for _, key := range []string{model.FieldEmployerName, model.FieldEmployeeName, model.FieldPayDate} {
		if fields.Has(key) {
			cat.Earned += 10
		}
	}
	return cat
}

func scoreFinancialPaystub(fields model.FieldMap) model.CategoryScore {
	cat := model.CategoryScore{Category: "financial", Possible: financialPoints}
	if fields.Has(model.FieldGrossPayCurrent) {
		cat.Earned += 15
	}
	if fields.Has(model.FieldNetPayCurrent) {
		cat.Earned += 15
	}
	if fields.Has(model.FieldEarnings) {
		cat.Earned += 10
	}
	return cat
}

func scoreBreakdownsPaystub(fields model.FieldMap) model.CategoryScore {
	cat := model.CategoryScore{Category: "breakdowns", Possible: breakdownPoints}
	if fields.Has(model.FieldTaxes) {
		cat.Earned += 10
	}
	if fields.Has(model.FieldDeductions) {
		cat.Earned += 10
	}
	return cat
}

func scoreIdentityW2(fields model.FieldMap) model.CategoryScore {
	cat := model.CategoryScore{Category: "identity", Possible: identityPoints}
	for _, key := range []string{model.FieldEmployerName, model.FieldEmployeeName, model.FieldTaxYear} {
		if fields.Has(key) {
			cat.Earned += 10
		}
	}
	return cat
}

func scoreFinancialW2(fields model.FieldMap) model.CategoryScore {
	cat := model.CategoryScore{Category: "financial", Possible: financialPoints}
	if fields.Has(model.FieldWagesTips) {
		cat.Earned += 15
	}
	if fields.Has(model.FieldFederalTaxWithheld) {
		cat.Earned += 15
	}
	for _, key := range []string{
		model.FieldSSWages, model.FieldSSTaxWithheld,
		model.FieldMedicareWages, model.FieldMedicareWithheld,
	} {
		if fields.Has(key) {
			cat.Earned += 10
			break
		}
	}
	return cat
}

func scoreBreakdownsW2(fields model.FieldMap) model.CategoryScore {
	cat := model.CategoryScore{Category: "breakdowns", Possible: breakdownPoints}
	if fields.Has(model.FieldBox12Codes) {
		cat.Earned += 10
	}
	if fields.Has(model.FieldStateLocal) {
		cat.Earned += 10
	}
	return cat
}

func scoreProcessing(meta model.ProcessingMetadata) model.CategoryScore {
	cat := model.CategoryScore{Category: "processing_quality", Possible: processingPoints}
	if meta.VisualInvoked {
		cat.Earned += 5
	}
	if meta.TablesFound > 0 {
		cat.Earned += 3
	}
	if meta.TextChars > 100 {
		cat.Earned += 2
	}
	return cat
}
