package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/income-verify/internal/model"
)

// Pattern battery for text-layer parsing. Ordered: earlier patterns are
// more specific and win.
var (
	amountPattern = regexp.MustCompile(`\$?\s*(-?[0-9][0-9,]*\.[0-9]{2})`)
	datePatterns  = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`),
		regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{2,4})\b`),
		regexp.MustCompile(`\b(\d{1,2}-\d{1,2}-\d{4})\b`),
	}
	ssnPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{3}-\d{2}-\d{4})\b`),
		regexp.MustCompile(`(\*{3,5}\d{4})`),
		regexp.MustCompile(`\b(XXX-XX-\d{4})\b`),
	}
	einPattern        = regexp.MustCompile(`\b(\d{2}-\d{7})\b`)
	employeeIDPattern = regexp.MustCompile(`(?i)Employee\s+(?:ID|Number|No\.?)[:\s#]*([A-Za-z0-9\-]+)`)
	frequencyPattern  = regexp.MustCompile(`(?i)\b(weekly|bi-?weekly|semi-?monthly|monthly|quarterly|annual)\b`)
	taxYearPattern    = regexp.MustCompile(`\b(20\d{2})\b`)
	box12Pattern      = regexp.MustCompile(`(?i)\b(?:12[a-d]\s+)?([A-HJ-Z]{1,2})\s+\$?\s*([0-9][0-9,]*\.[0-9]{2})`)
	personNamePattern = regexp.MustCompile(`\b([A-Z][a-z]+(?: [A-Z]\.?)? [A-Z][a-z]+(?:-[A-Z][a-z]+)?)\b`)
	companyPattern    = regexp.MustCompile(`(?m)^\s*([A-Z][A-Za-z&,\.' ]{2,60}(?:Inc|LLC|Corp|Company|Group|Ltd|Incorporated|Corporation|Associates|Partners|Enterprises|Services|Systems|Solutions|Technologies|Industries|Holdings|International)\.?)`)
)

// Label vocabularies for matching amounts to fields. Checked in order so
// "net pay" never falls through to the gross bucket.
var (
	grossLabels = []string{
		"gross pay", "gross earnings", "total earnings", "gross wages",
		"total gross", "gross amount", "total compensation", "gross income",
	}
	netLabels = []string{
		"net pay", "take home", "net earnings", "net wages", "net amount",
		"net income", "direct deposit amount",
	}
	taxLabels = []string{
		"federal income tax", "federal tax", "federal withholding",
		"state income tax", "state tax", "state withholding",
		"social security", "medicare", "fica", "local tax", "sdi", "sui",
	}
	earningLabels = []string{
		"regular", "salary", "hourly", "overtime", "bonus", "commission",
		"holiday", "vacation", "pto", "sick", "incentive", "tips",
	}
	deductionLabels = []string{
		"401k", "403b", "dental", "vision", "medical", "health", "hsa", "fsa",
		"life insurance", "disability", "union dues", "garnishment", "loan",
		"pension", "parking",
	}
	employerContributionLabels = []string{
		"401k match", "employer match", "company match", "employer contribution",
		"company contribution", "employer paid", "company paid", "employer hsa",
		"company hsa", "retirement match", "er cost",
	}
	preTaxLabels = []string{
		"401k", "403b", "pension", "hsa", "fsa", "pre-tax", "pretax",
	}
	// Tokens that disqualify a capitalized phrase from being a person name.
	nameStopwords = []string{
		"pay", "statement", "earnings", "employee", "employer", "period",
		"gross", "net", "date", "federal", "state", "social", "security",
		"medicare", "income", "tax", "check", "deposit", "company", "wage",
		"total", "hours", "rate", "current", "deduction",
		"street", "avenue", "drive", "road", "lane", "suite", "way", "blvd",
	}
)

// IsEmployerContribution reports whether an earning description names an
// employer-paid benefit row that must not count toward employee earnings.
func IsEmployerContribution(description string) bool {
	d := strings.ToLower(description)
	for _, kw := range employerContributionLabels {
		if strings.Contains(d, kw) {
			return true
		}
	}
	return false
}

func isPreTax(description string) bool {
	d := strings.ToLower(description)
	for _, kw := range preTaxLabels {
		if strings.Contains(d, kw) {
			return true
		}
	}
	return false
}

func matchesAny(line string, labels []string) bool {
	for _, l := range labels {
		if strings.Contains(line, l) {
			return true
		}
	}
	return false
}

// lineAmounts returns every two-decimal amount on a line, in order.
func lineAmounts(line string) []model.Money {
	var out []model.Money
	for _, m := range amountPattern.FindAllStringSubmatch(line, -1) {
		amt, err := model.MoneyFromString(m[1])
		if err != nil {
			continue
		}
		out = append(out, amt)
	}
	return out
}

func firstMatch(text string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func setString(fields model.FieldMap, method model.Method, key, val string) {
	if val == "" || fields.Has(key) {
		return
	}
	fields.Set(model.FieldValue{FieldKey: key, Value: strings.TrimSpace(val), Method: method})
}

func setMoney(fields model.FieldMap, method model.Method, key string, val model.Money) {
	if fields.Has(key) {
		return
	}
	fields.Set(model.FieldValue{FieldKey: key, Value: val, Method: method})
}

func setDate(fields model.FieldMap, method model.Method, key string, val model.Date) {
	if val.IsZero() || fields.Has(key) {
		return
	}
	fields.Set(model.FieldValue{FieldKey: key, Value: val, Method: method})
}

// ParsePaystubText scans linearized paystub text for labeled fields and
// line items. First match wins per field; later lines never overwrite.
func ParsePaystubText(text string, method model.Method) model.FieldMap {
	fields := make(model.FieldMap)

	setString(fields, method, model.FieldEmployeeSSN, firstMatch(text, ssnPatterns))
	if m := employeeIDPattern.FindStringSubmatch(text); m != nil {
		setString(fields, method, model.FieldEmployeeID, m[1])
	}
	if m := frequencyPattern.FindStringSubmatch(text); m != nil {
		setString(fields, method, model.FieldPayFrequency, normalizeFrequency(m[1]))
	}
	if m := companyPattern.FindStringSubmatch(text); m != nil {
		setString(fields, method, model.FieldEmployerName, m[1])
	}
	setString(fields, method, model.FieldEmployeeName,
		findPersonName(text, fields.String(model.FieldEmployerName)))

	var (
		earnings   []model.EarningLine
		deductions []model.DeductionLine
		taxes      []model.TaxLine
	)

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.ToLower(rawLine)
		amounts := lineAmounts(rawLine)

		switch {
		case matchesAny(line, netLabels):
			if len(amounts) > 0 {
				setMoney(fields, method, model.FieldNetPayCurrent, amounts[0])
			}
			if len(amounts) > 1 {
				setMoney(fields, method, model.FieldNetPayYTD, amounts[len(amounts)-1])
			}
		case matchesAny(line, grossLabels):
			if len(amounts) > 0 {
				setMoney(fields, method, model.FieldGrossPayCurrent, amounts[0])
			}
			if len(amounts) > 1 {
				setMoney(fields, method, model.FieldGrossPayYTD, amounts[len(amounts)-1])
			}
		case matchesAny(line, taxLabels):
			if len(amounts) > 0 {
				tl := model.TaxLine{TaxType: lineDescription(rawLine), CurrentAmount: amounts[0]}
				if len(amounts) > 1 {
					ytd := amounts[len(amounts)-1]
					tl.YTDAmount = &ytd
				}
				taxes = append(taxes, tl)
			}
		case matchesAny(line, deductionLabels) || IsEmployerContribution(rawLine):
			if len(amounts) > 0 && IsEmployerContribution(rawLine) {
				el := model.EarningLine{
					Description:            lineDescription(rawLine),
					CurrentAmount:          amounts[0],
					IsEmployerContribution: true,
				}
				earnings = append(earnings, el)
			} else if len(amounts) > 0 {
				dl := model.DeductionLine{
					Description:   lineDescription(rawLine),
					CurrentAmount: amounts[0],
					IsPreTax:      isPreTax(rawLine),
				}
				if len(amounts) > 1 {
					ytd := amounts[len(amounts)-1]
					dl.YTDAmount = &ytd
				}
				deductions = append(deductions, dl)
			}
		case matchesAny(line, earningLabels):
			if len(amounts) > 0 {
				el := model.EarningLine{
					Description:   lineDescription(rawLine),
					CurrentAmount: amounts[0],
				}
				switch len(amounts) {
				case 2:
					// current, ytd
					ytd := amounts[1]
					el.YTDAmount = &ytd
				case 3, 4:
					// rate, hours, current[, ytd]
					rate := amounts[0].Decimal()
					hours := amounts[1].Decimal()
					el.Rate = &rate
					el.Hours = &hours
					el.CurrentAmount = amounts[2]
					if len(amounts) == 4 {
						ytd := amounts[3]
						el.YTDAmount = &ytd
					}
				}
				earnings = append(earnings, el)
			}
		}
	}

	if len(earnings) > 0 {
		fields.Set(model.FieldValue{FieldKey: model.FieldEarnings, Value: earnings, Method: method})
	}
	if len(deductions) > 0 {
		fields.Set(model.FieldValue{FieldKey: model.FieldDeductions, Value: deductions, Method: method})
	}
	if len(taxes) > 0 {
		fields.Set(model.FieldValue{FieldKey: model.FieldTaxes, Value: taxes, Method: method})
	}

	parsePaystubDates(text, method, fields)

	return fields
}

// parsePaystubDates looks for labeled period dates first, then falls back
// to positional assignment of the detected dates.
func parsePaystubDates(text string, method model.Method, fields model.FieldMap) {
	labeled := map[string]*regexp.Regexp{
		model.FieldPeriodStart: regexp.MustCompile(`(?i)(?:period\s+(?:start|begin(?:ning)?)|pay\s+period)[:\s]*(\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2})`),
		model.FieldPeriodEnd:   regexp.MustCompile(`(?i)(?:period\s+end(?:ing)?|thru|through)[:\s]*(\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2})`),
		model.FieldPayDate:     regexp.MustCompile(`(?i)(?:pay\s+date|check\s+date|date\s+paid)[:\s]*(\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2})`),
	}
	for key, p := range labeled {
		if m := p.FindStringSubmatch(text); m != nil {
			if d, err := model.ParseDate(m[1]); err == nil {
				setDate(fields, method, key, d)
			}
		}
	}
	if fields.Has(model.FieldPeriodStart) || fields.Has(model.FieldPayDate) {
		return
	}

	var detected []model.Date
	for _, p := range datePatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if d, err := model.ParseDate(m[1]); err == nil {
				detected = append(detected, d)
			}
		}
	}
	if len(detected) >= 3 {
		setDate(fields, method, model.FieldPeriodStart, detected[0])
		setDate(fields, method, model.FieldPeriodEnd, detected[1])
		setDate(fields, method, model.FieldPayDate, detected[2])
	} else if len(detected) == 1 {
		setDate(fields, method, model.FieldPayDate, detected[0])
	}
}

// W-2 box labels in printed order. Matching is by label, not position,
// since text linearization scrambles the grid.
var w2BoxLabels = []struct {
	key    string
	labels []string
}{
	{model.FieldWagesTips, []string{"wages, tips, other comp", "wages, tips, other compensation", "wages tips other"}},
	{model.FieldFederalTaxWithheld, []string{"federal income tax withheld", "fed. income tax", "federal tax withheld"}},
	{model.FieldSSWages, []string{"social security wages"}},
	{model.FieldSSTaxWithheld, []string{"social security tax withheld"}},
	{model.FieldMedicareWages, []string{"medicare wages and tips", "medicare wages"}},
	{model.FieldMedicareWithheld, []string{"medicare tax withheld"}},
	{model.FieldSSTips, []string{"social security tips"}},
	{model.FieldAllocatedTips, []string{"allocated tips"}},
	{model.FieldDependentCare, []string{"dependent care benefits"}},
	{model.FieldNonqualifiedPlans, []string{"nonqualified plans"}},
}

// ParseW2Text scans linearized W-2 text for box values and identity fields.
func ParseW2Text(text string, method model.Method) model.FieldMap {
	fields := make(model.FieldMap)

	setString(fields, method, model.FieldEmployeeSSNFull, firstMatch(text, ssnPatterns))
	if m := einPattern.FindStringSubmatch(text); m != nil {
		setString(fields, method, model.FieldEmployerEIN, m[1])
	}
	if m := companyPattern.FindStringSubmatch(text); m != nil {
		setString(fields, method, model.FieldEmployerName, m[1])
	}
	setString(fields, method, model.FieldEmployeeName,
		findPersonName(text, fields.String(model.FieldEmployerName)))
	if m := taxYearPattern.FindStringSubmatch(text); m != nil {
		setString(fields, method, model.FieldTaxYear, m[1])
	}

	lowered := strings.ToLower(text)
	for _, box := range w2BoxLabels {
		for _, label := range box.labels {
			idx := strings.Index(lowered, label)
			if idx < 0 {
				continue
			}
			// The box value prints adjacent to its label; search a short
			// window after the label text.
			window := text[idx+len(label):]
			if len(window) > 80 {
				window = window[:80]
			}
			if m := amountPattern.FindStringSubmatch(window); m != nil {
				if amt, err := model.MoneyFromString(m[1]); err == nil {
					setMoney(fields, method, box.key, amt)
				}
			}
			break
		}
	}

	var codes []model.Box12Code
	seen := make(map[string]bool)
	for _, m := range box12Pattern.FindAllStringSubmatch(text, -1) {
		code := strings.ToUpper(m[1])
		if seen[code] || !validBox12Code(code) {
			continue
		}
		amt, err := model.MoneyFromString(m[2])
		if err != nil {
			continue
		}
		seen[code] = true
		codes = append(codes, model.Box12Code{Code: code, Amount: &amt})
	}
	if len(codes) > 0 {
		fields.Set(model.FieldValue{FieldKey: model.FieldBox12Codes, Value: codes, Method: method})
	}

	for flagKey, label := range map[string]string{
		model.FieldStatutoryEmployee: "statutory employee",
		model.FieldRetirementPlan:    "retirement plan",
		model.FieldThirdPartySickPay: "third-party sick pay",
	} {
		if markedCheckbox(lowered, label) {
			fields.Set(model.FieldValue{FieldKey: flagKey, Value: true, Method: method})
		}
	}

	return fields
}

// validBox12Code screens out label tokens the loose pattern also matches.
// Real codes are A through HH; two-letter codes always start with A-H.
func validBox12Code(code string) bool {
	if len(code) == 2 {
		return code[0] >= 'A' && code[0] <= 'H'
	}
	return len(code) == 1
}

// markedCheckbox reports whether a checkbox label appears with an X marker
// adjacent to it in the linearized text.
func markedCheckbox(lowered, label string) bool {
	idx := strings.Index(lowered, label)
	if idx < 0 {
		return false
	}
	start := idx - 4
	if start < 0 {
		start = 0
	}
	end := idx + len(label) + 4
	if end > len(lowered) {
		end = len(lowered)
	}
	window := lowered[start:end]
	return strings.Contains(window, "[x]") || strings.Contains(window, " x ") ||
		strings.HasSuffix(strings.TrimSpace(window), " x")
}

// findPersonName returns the first capitalized First Last phrase that is
// neither payroll vocabulary nor part of the employer name.
func findPersonName(text, employerName string) string {
	employer := strings.ToLower(employerName)
	for _, m := range personNamePattern.FindAllStringSubmatch(text, -1) {
		candidate := m[1]
		lowered := strings.ToLower(candidate)
		if employer != "" && strings.Contains(employer, lowered) {
			continue
		}
		ok := true
		for _, stop := range nameStopwords {
			if strings.Contains(lowered, stop) {
				ok = false
				break
			}
		}
		if ok {
			return candidate
		}
	}
	return ""
}

var multiSpacePattern = regexp.MustCompile(`\s{2,}`)

// lineDescription strips amounts and numeric columns from a line, leaving
// the label text.
func lineDescription(line string) string {
	cleaned := amountPattern.ReplaceAllString(line, "")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	return strings.Trim(strings.TrimSpace(cleaned), ":-")
}

func normalizeFrequency(raw string) string {
	f := strings.ToLower(strings.ReplaceAll(raw, "-", ""))
	switch f {
	case "biweekly":
		return "biweekly"
	case "semimonthly":
		return "semimonthly"
	default:
		return f
	}
}
