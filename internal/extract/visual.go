package extract

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/income-verify/internal/docsource"
	"github.com/sells-group/income-verify/internal/model"
	"github.com/sells-group/income-verify/pkg/vision"
)

// Visual extracts fields by sending the rendered first page to the visual
// inference service. It is the most expensive method and runs last, or in
// enhancement mode after the cheaper methods already reached sufficiency.
type Visual struct {
	pages  docsource.PageSource
	client vision.Client
}

// NewVisual creates the visual-analysis extractor.
func NewVisual(pages docsource.PageSource, client vision.Client) *Visual {
	return &Visual{pages: pages, client: client}
}

func (v *Visual) Method() model.Method { return model.MethodVisual }

func (v *Visual) Extract(ctx context.Context, req Request) (Result, error) {
	pages, err := v.pages.Pages(ctx, req.Path)
	if err != nil || len(pages) == 0 || len(pages[0].Image) == 0 {
		if err == nil {
			err = eris.New("extract: no page image available")
		}
		zap.L().Warn("visual extraction failed to render page",
			zap.String("path", req.Path),
			zap.Error(err),
		)
		return Result{
			Fields:  make(model.FieldMap),
			Outcome: model.OutcomeFailed,
			Detail:  "no page image",
		}, err
	}

	analysis, err := v.client.Analyze(ctx, vision.AnalyzeRequest{
		Kind:      visionKind(req.Kind),
		Image:     pages[0].Image,
		PriorJSON: priorJSON(req.Prior),
	})
	if err != nil {
		outcome := model.OutcomeFailed
		detail := "response rejected"
		switch {
		case errors.Is(err, vision.ErrServiceTimeout):
			outcome = model.OutcomeUnavailable
			detail = "service timeout"
		case errors.Is(err, vision.ErrServiceUnavailable):
			outcome = model.OutcomeUnavailable
			detail = "service unavailable"
		}
		zap.L().Warn("visual analysis failed",
			zap.String("path", req.Path),
			zap.String("detail", detail),
			zap.Error(err),
		)
		return Result{
			Fields:  make(model.FieldMap),
			Outcome: outcome,
			Detail:  detail,
		}, err
	}

	var fields model.FieldMap
	switch req.Kind {
	case model.KindW2:
		fields = convertW2Analysis(analysis.Fields)
	default:
		fields = convertPaystubAnalysis(analysis.Fields)
	}

	zap.L().Debug("visual extraction complete",
		zap.String("path", req.Path),
		zap.Int("fields", len(fields)),
	)

	return Result{
		Fields:  fields,
		Outcome: classify(req.Kind, fields),
	}, nil
}

func visionKind(kind model.DocumentKind) vision.DocumentKind {
	if kind == model.KindW2 {
		return vision.KindW2
	}
	return vision.KindPaystub
}

// priorJSON flattens already-merged fields into the plain JSON shape the
// prompt injects for verification.
func priorJSON(prior model.FieldMap) []byte {
	if len(prior) == 0 {
		return nil
	}
	flat := make(map[string]any, len(prior))
	for _, key := range prior.Keys() {
		fv, _ := prior.Get(key)
		flat[key] = fv.Value
	}
	b, err := json.Marshal(flat)
	if err != nil {
		return nil
	}
	return b
}

// --- analysis conversion ---

func convertPaystubAnalysis(raw map[string]any) model.FieldMap {
	fields := make(model.FieldMap)
	m := model.MethodVisual

	setString(fields, m, model.FieldEmployerName, str(raw, "employer_name"))
	setString(fields, m, model.FieldEmployerAddress, str(raw, "employer_address"))
	setString(fields, m, model.FieldEmployeeName, str(raw, "employee_name"))
	setString(fields, m, model.FieldEmployeeAddress, str(raw, "employee_address"))
	setString(fields, m, model.FieldEmployeeID, str(raw, "employee_id"))
	setString(fields, m, model.FieldPayFrequency, normalizeFrequency(str(raw, "pay_frequency")))

	setAnalysisDate(fields, m, model.FieldPayDate, raw, "pay_date")
	setAnalysisDate(fields, m, model.FieldPeriodStart, raw, "pay_period_start")
	setAnalysisDate(fields, m, model.FieldPeriodEnd, raw, "pay_period_end")

	setAnalysisMoney(fields, m, model.FieldGrossPayCurrent, raw, "gross_pay_current")
	setAnalysisMoney(fields, m, model.FieldGrossPayYTD, raw, "gross_pay_ytd")
	setAnalysisMoney(fields, m, model.FieldNetPayCurrent, raw, "net_pay_current")
	setAnalysisMoney(fields, m, model.FieldNetPayYTD, raw, "net_pay_ytd")

	if earnings := convertEarnings(raw["earnings"]); len(earnings) > 0 {
		fields.Set(model.FieldValue{FieldKey: model.FieldEarnings, Value: earnings, Method: m})
	}
	if deductions := convertDeductions(raw["deductions"]); len(deductions) > 0 {
		fields.Set(model.FieldValue{FieldKey: model.FieldDeductions, Value: deductions, Method: m})
	}
	if taxes := convertTaxes(raw["taxes"]); len(taxes) > 0 {
		fields.Set(model.FieldValue{FieldKey: model.FieldTaxes, Value: taxes, Method: m})
	}

	return fields
}

func convertW2Analysis(raw map[string]any) model.FieldMap {
	fields := make(model.FieldMap)
	m := model.MethodVisual

	if year, ok := raw["tax_year"].(float64); ok {
		setString(fields, m, model.FieldTaxYear, strconv.Itoa(int(year)))
	}
	setString(fields, m, model.FieldEmployeeName, str(raw, "employee_name"))
	setString(fields, m, model.FieldEmployeeSSNFull, str(raw, "employee_ssn"))
	setString(fields, m, model.FieldEmployeeAddress, str(raw, "employee_address"))
	setString(fields, m, model.FieldEmployerName, str(raw, "employer_name"))
	setString(fields, m, model.FieldEmployerEIN, str(raw, "employer_ein"))
	setString(fields, m, model.FieldEmployerAddress, str(raw, "employer_address"))
	setString(fields, m, model.FieldControlNumber, str(raw, "control_number"))

	for key, visionKey := range map[string]string{
		model.FieldWagesTips:          "wages_tips",
		model.FieldFederalTaxWithheld: "federal_tax_withheld",
		model.FieldSSWages:            "social_security_wages",
		model.FieldSSTaxWithheld:      "social_security_tax",
		model.FieldMedicareWages:      "medicare_wages",
		model.FieldMedicareWithheld:   "medicare_tax",
		model.FieldSSTips:             "social_security_tips",
		model.FieldAllocatedTips:      "allocated_tips",
		model.FieldDependentCare:      "dependent_care_benefits",
		model.FieldNonqualifiedPlans:  "nonqualified_plans",
	} {
		setAnalysisMoney(fields, m, key, raw, visionKey)
	}

	if codes := convertBox12(raw["box12_codes"]); len(codes) > 0 {
		fields.Set(model.FieldValue{FieldKey: model.FieldBox12Codes, Value: codes, Method: m})
	}
	if entries := convertStateEntries(raw["state_entries"]); len(entries) > 0 {
		fields.Set(model.FieldValue{FieldKey: model.FieldStateLocal, Value: entries, Method: m})
	}

	for key, visionKey := range map[string]string{
		model.FieldStatutoryEmployee: "statutory_employee",
		model.FieldRetirementPlan:    "retirement_plan",
		model.FieldThirdPartySickPay: "third_party_sick_pay",
	} {
		if b, ok := raw[visionKey].(bool); ok && b {
			fields.Set(model.FieldValue{FieldKey: key, Value: true, Method: m})
		}
	}

	return fields
}

func convertEarnings(raw any) []model.EarningLine {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []model.EarningLine
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		desc := str(entry, "description")
		amount, err := model.MoneyFromString(str(entry, "amount"))
		if desc == "" || err != nil {
			continue
		}
		line := model.EarningLine{
			Description:            desc,
			CurrentAmount:          amount,
			IsEmployerContribution: IsEmployerContribution(desc),
		}
		if rate, err := model.MoneyFromString(str(entry, "rate")); err == nil {
			d := rate.Decimal()
			line.Rate = &d
		}
		if hours, err := model.MoneyFromString(str(entry, "hours")); err == nil {
			d := hours.Decimal()
			line.Hours = &d
		}
		if ytd, err := model.MoneyFromString(str(entry, "ytd_amount")); err == nil {
			line.YTDAmount = &ytd
		}
		out = append(out, line)
	}
	return out
}

func convertDeductions(raw any) []model.DeductionLine {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []model.DeductionLine
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		desc := str(entry, "description")
		amount, err := model.MoneyFromString(str(entry, "amount"))
		if desc == "" || err != nil {
			continue
		}
		line := model.DeductionLine{Description: desc, CurrentAmount: amount}
		if preTax, ok := entry["pre_tax"].(bool); ok {
			line.IsPreTax = preTax
		} else {
			line.IsPreTax = isPreTax(desc)
		}
		if ytd, err := model.MoneyFromString(str(entry, "ytd_amount")); err == nil {
			line.YTDAmount = &ytd
		}
		out = append(out, line)
	}
	return out
}

func convertTaxes(raw any) []model.TaxLine {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []model.TaxLine
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		desc := str(entry, "description")
		amount, err := model.MoneyFromString(str(entry, "amount"))
		if desc == "" || err != nil {
			continue
		}
		line := model.TaxLine{TaxType: desc, CurrentAmount: amount}
		if ytd, err := model.MoneyFromString(str(entry, "ytd_amount")); err == nil {
			line.YTDAmount = &ytd
		}
		out = append(out, line)
	}
	return out
}

func convertBox12(raw any) []model.Box12Code {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []model.Box12Code
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		code := str(entry, "code")
		if code == "" {
			continue
		}
		box := model.Box12Code{Code: code}
		if amt, err := model.MoneyFromString(str(entry, "amount")); err == nil {
			box.Amount = &amt
		}
		out = append(out, box)
	}
	return out
}

func convertStateEntries(raw any) []model.StateLocal {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []model.StateLocal
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		sl := model.StateLocal{
			State:    str(entry, "state"),
			Locality: str(entry, "locality"),
		}
		if sl.State == "" {
			continue
		}
		if amt, err := model.MoneyFromString(str(entry, "state_wages")); err == nil {
			sl.StateWages = &amt
		}
		if amt, err := model.MoneyFromString(str(entry, "state_tax")); err == nil {
			sl.StateIncomeTax = &amt
		}
		if amt, err := model.MoneyFromString(str(entry, "local_wages")); err == nil {
			sl.LocalWages = &amt
		}
		if amt, err := model.MoneyFromString(str(entry, "local_tax")); err == nil {
			sl.LocalIncomeTax = &amt
		}
		out = append(out, sl)
	}
	return out
}

func str(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func setAnalysisMoney(fields model.FieldMap, method model.Method, key string, raw map[string]any, visionKey string) {
	s := str(raw, visionKey)
	if s == "" {
		return
	}
	if amt, err := model.MoneyFromString(s); err == nil {
		setMoney(fields, method, key, amt)
	}
}

func setAnalysisDate(fields model.FieldMap, method model.Method, key string, raw map[string]any, visionKey string) {
	s := str(raw, visionKey)
	if s == "" {
		return
	}
	if d, err := model.ParseDate(s); err == nil {
		setDate(fields, method, key, d)
	}
}
