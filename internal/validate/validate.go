package validate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sells-group/income-verify/internal/model"
)

// Validator runs the cross-validation battery. Pure: same record in, same
// warnings out, regardless of check execution order.
type Validator struct {
	rules Rules
}

// New creates a validator with the given bounds.
func New(rules Rules) *Validator {
	return &Validator{rules: rules}
}

// paystubCheck is one independent check. Each emits zero or one warning and
// never reads another check's output.
type paystubCheck func(*Validator, *model.PaystubData, model.FieldMap) *model.Warning

var paystubChecks = []paystubCheck{
	(*Validator).checkGrossEarnings,
	(*Validator).checkNetReconciliation,
	(*Validator).checkNetExceedsGross,
	(*Validator).checkPeriodOrder,
	(*Validator).checkGrossRange,
	(*Validator).checkHourlyRates,
	(*Validator).checkPaystubCompleteness,
}

type w2Check func(*Validator, *model.W2Data, model.FieldMap) *model.Warning

var w2Checks = []w2Check{
	(*Validator).checkTaxYear,
	(*Validator).checkAnnualWages,
	(*Validator).checkW2Completeness,
}

// Paystub runs every paystub check and returns the warnings sorted by code.
func (v *Validator) Paystub(p *model.PaystubData, fields model.FieldMap) []model.Warning {
	var warnings []model.Warning
	for _, check := range paystubChecks {
		if w := check(v, p, fields); w != nil {
			warnings = append(warnings, *w)
		}
	}
	sortWarnings(warnings)
	return warnings
}

// W2 runs every wage-statement check and returns the warnings sorted by code.
func (v *Validator) W2(w *model.W2Data, fields model.FieldMap) []model.Warning {
	var warnings []model.Warning
	for _, check := range w2Checks {
		if warn := check(v, w, fields); warn != nil {
			warnings = append(warnings, *warn)
		}
	}
	sortWarnings(warnings)
	return warnings
}

// ArithmeticSuspects returns the field keys implicated by arithmetic
// warnings. The orchestrator uses them as contradiction flags that let
// enhancement-mode visual analysis overwrite those fields.
func ArithmeticSuspects(warnings []model.Warning) []string {
	var keys []string
	for _, w := range warnings {
		switch w.Code {
		case model.WarnArithmeticGrossEarnings:
			keys = append(keys, model.FieldGrossPayCurrent, model.FieldEarnings)
		case model.WarnArithmeticNetReconcile, model.WarnNetExceedsGross:
			keys = append(keys, model.FieldGrossPayCurrent, model.FieldNetPayCurrent)
		}
	}
	sort.Strings(keys)
	return dedupe(keys)
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}

func sortWarnings(warnings []model.Warning) {
	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].Code < warnings[j].Code
	})
}

// withinTolerance absorbs rounding noise: amounts agree when they differ by
// at most max(1 currency unit, 0.5% of the larger operand).
func withinTolerance(a, b model.Money) bool {
	diff := a.Sub(b).Abs().Decimal()

	larger := a.Abs().Decimal()
	if other := b.Abs().Decimal(); other.GreaterThan(larger) {
		larger = other
	}

	tol := decimal.NewFromInt(1)
	if pct := larger.Mul(decimal.NewFromFloat(0.005)); pct.GreaterThan(tol) {
		tol = pct
	}
	return diff.LessThanOrEqual(tol)
}

// --- paystub checks ---

func (v *Validator) checkGrossEarnings(p *model.PaystubData, _ model.FieldMap) *model.Warning {
	if p.GrossPayCurrent == nil || len(p.Earnings) == 0 {
		return nil
	}
	total := p.EmployeeEarningsTotal()
	if withinTolerance(*p.GrossPayCurrent, total) {
		return nil
	}
	return &model.Warning{
		Code: model.WarnArithmeticGrossEarnings,
		Message: fmt.Sprintf("gross pay %s does not match employee earnings total %s",
			p.GrossPayCurrent, total),
		Severity: model.SeverityWarning,
	}
}

func (v *Validator) checkNetReconciliation(p *model.PaystubData, _ model.FieldMap) *model.Warning {
	if p.GrossPayCurrent == nil || p.NetPayCurrent == nil {
		return nil
	}
	if len(p.Deductions) == 0 && len(p.Taxes) == 0 {
		return nil
	}
	expected := p.GrossPayCurrent.Sub(p.DeductionsTotal()).Sub(p.TaxesTotal())
	if withinTolerance(expected, *p.NetPayCurrent) {
		return nil
	}
	return &model.Warning{
		Code: model.WarnArithmeticNetReconcile,
		Message: fmt.Sprintf("gross %s minus deductions and taxes is %s, but net pay is %s",
			p.GrossPayCurrent, expected, p.NetPayCurrent),
		Severity: model.SeverityWarning,
	}
}

func (v *Validator) checkNetExceedsGross(p *model.PaystubData, _ model.FieldMap) *model.Warning {
	if p.GrossPayCurrent == nil || p.NetPayCurrent == nil {
		return nil
	}
	if p.NetPayCurrent.Cmp(*p.GrossPayCurrent) <= 0 {
		return nil
	}
	return &model.Warning{
		Code: model.WarnNetExceedsGross,
		Message: fmt.Sprintf("net pay %s exceeds gross pay %s",
			p.NetPayCurrent, p.GrossPayCurrent),
		Severity: model.SeverityError,
	}
}

func (v *Validator) checkPeriodOrder(p *model.PaystubData, _ model.FieldMap) *model.Warning {
	start, end, pay := p.PayrollPeriod.StartDate, p.PayrollPeriod.EndDate, p.PayrollPeriod.PayDate

	var violations []string
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		violations = append(violations, fmt.Sprintf("period start %s is after period end %s", start, end))
	}
	if !end.IsZero() && !pay.IsZero() && end.After(pay) {
		violations = append(violations, fmt.Sprintf("period end %s is after pay date %s", end, pay))
	}
	if len(violations) == 0 {
		return nil
	}
	return &model.Warning{
		Code:     model.WarnTemporalPeriodOrder,
		Message:  strings.Join(violations, "; "),
		Severity: model.SeverityWarning,
	}
}

func (v *Validator) checkGrossRange(p *model.PaystubData, _ model.FieldMap) *model.Warning {
	if p.GrossPayCurrent == nil {
		return nil
	}
	gross := p.GrossPayCurrent.Float64()
	switch {
	case gross < v.rules.GrossPayMin:
		return &model.Warning{
			Code: model.WarnRangeGrossLow,
			Message: fmt.Sprintf("gross pay %s is below the plausible per-period minimum %.2f",
				p.GrossPayCurrent, v.rules.GrossPayMin),
			Severity: model.SeverityInfo,
		}
	case gross > v.rules.GrossPayMax:
		return &model.Warning{
			Code: model.WarnRangeGrossHigh,
			Message: fmt.Sprintf("gross pay %s is above the plausible per-period maximum %.2f",
				p.GrossPayCurrent, v.rules.GrossPayMax),
			Severity: model.SeverityInfo,
		}
	}
	return nil
}

func (v *Validator) checkHourlyRates(p *model.PaystubData, _ model.FieldMap) *model.Warning {
	for _, e := range p.Earnings {
		if e.Rate == nil {
			continue
		}
		rate, _ := e.Rate.Float64()
		if rate < v.rules.HourlyRateMin || rate > v.rules.HourlyRateMax {
			return &model.Warning{
				Code: model.WarnRangeHourlyRate,
				Message: fmt.Sprintf("hourly rate %s for %q is outside the plausible range [%.2f, %.2f]",
					e.Rate, e.Description, v.rules.HourlyRateMin, v.rules.HourlyRateMax),
				Severity: model.SeverityInfo,
			}
		}
	}
	return nil
}

func (v *Validator) checkPaystubCompleteness(_ *model.PaystubData, fields model.FieldMap) *model.Warning {
	return completeness(model.KindPaystub, fields)
}

// --- W-2 checks ---

func (v *Validator) checkTaxYear(w *model.W2Data, _ model.FieldMap) *model.Warning {
	if w.TaxYear == "" {
		return nil
	}
	year, err := strconv.Atoi(w.TaxYear)
	if err != nil || year < v.rules.TaxYearMin || year > v.rules.TaxYearMax {
		return &model.Warning{
			Code: model.WarnTemporalTaxYear,
			Message: fmt.Sprintf("tax year %q is outside the accepted window [%d, %d]",
				w.TaxYear, v.rules.TaxYearMin, v.rules.TaxYearMax),
			Severity: model.SeverityWarning,
		}
	}
	return nil
}

func (v *Validator) checkAnnualWages(w *model.W2Data, _ model.FieldMap) *model.Warning {
	if w.IncomeTaxInfo.WagesTipsCompensation == nil {
		return nil
	}
	wages := w.IncomeTaxInfo.WagesTipsCompensation.Float64()
	if wages >= v.rules.AnnualWagesMin && wages <= v.rules.AnnualWagesMax {
		return nil
	}
	return &model.Warning{
		Code: model.WarnRangeAnnualWages,
		Message: fmt.Sprintf("annual wages %s are outside the plausible range [%.2f, %.2f]",
			w.IncomeTaxInfo.WagesTipsCompensation, v.rules.AnnualWagesMin, v.rules.AnnualWagesMax),
		Severity: model.SeverityInfo,
	}
}

func (v *Validator) checkW2Completeness(_ *model.W2Data, fields model.FieldMap) *model.Warning {
	return completeness(model.KindW2, fields)
}

func completeness(kind model.DocumentKind, fields model.FieldMap) *model.Warning {
	var missing []string
	for _, key := range model.RequiredFields(kind) {
		if !fields.Has(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &model.Warning{
		Code:     model.WarnCompletenessMissingFields,
		Message:  "missing required fields: " + strings.Join(missing, ", "),
		Severity: model.SeverityWarning,
	}
}
