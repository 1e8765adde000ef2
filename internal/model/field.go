package model

import "sort"

// DocumentKind identifies the document variant being parsed.
type DocumentKind string

const (
	// KindPaystub is a per-pay-period payroll statement.
	KindPaystub DocumentKind = "paystub"
	// KindW2 is an annual wage statement (W-2).
	KindW2 DocumentKind = "w2"
)

// Method identifies an extraction method. Lower Priority() wins during merge.
type Method string

const (
	MethodStructured Method = "structured_table"
	MethodText       Method = "raw_text"
	MethodVisual     Method = "visual_analysis"
)

// Priority returns the merge precedence of the method; lower is stronger.
func (m Method) Priority() int {
	switch m {
	case MethodStructured:
		return 1
	case MethodText:
		return 2
	case MethodVisual:
		return 3
	default:
		return 99
	}
}

// Contradiction records a disagreement between two extraction methods for
// the same field. Attached to the winning value for auditability.
type Contradiction struct {
	OtherMethod Method `json:"other_method"`
	OtherValue  any    `json:"other_value"`
}

// FieldValue is a tagged value: the extracted value plus the method that
// produced it and an optional per-field confidence reported by that method.
type FieldValue struct {
	FieldKey      string         `json:"field_key"`
	Value         any            `json:"value"`
	Method        Method         `json:"method"`
	Confidence    float64        `json:"confidence,omitempty"`
	Contradiction *Contradiction `json:"contradiction,omitempty"`
}

// FieldMap holds per-field tagged values keyed by field key.
type FieldMap map[string]FieldValue

// Set stores a tagged value, overwriting any existing entry.
func (fm FieldMap) Set(fv FieldValue) {
	fm[fv.FieldKey] = fv
}

// Has reports whether the field is populated with a non-empty value.
func (fm FieldMap) Has(key string) bool {
	fv, ok := fm[key]
	return ok && !isEmptyValue(fv.Value)
}

// Get returns the tagged value for key.
func (fm FieldMap) Get(key string) (FieldValue, bool) {
	fv, ok := fm[key]
	return fv, ok
}

// String returns the field's value as a string, or "" when absent or not a
// string.
func (fm FieldMap) String(key string) string {
	if fv, ok := fm[key]; ok {
		if s, ok := fv.Value.(string); ok {
			return s
		}
	}
	return ""
}

// Money returns the field's value as a Money, or a zero Money when absent.
func (fm FieldMap) Money(key string) (Money, bool) {
	if fv, ok := fm[key]; ok {
		if m, ok := fv.Value.(Money); ok {
			return m, true
		}
	}
	return Money{}, false
}

// Date returns the field's value as a Date, or a zero Date when absent.
func (fm FieldMap) Date(key string) (Date, bool) {
	if fv, ok := fm[key]; ok {
		if d, ok := fv.Value.(Date); ok && !d.IsZero() {
			return d, true
		}
	}
	return Date{}, false
}

// Keys returns populated field keys in sorted order.
func (fm FieldMap) Keys() []string {
	keys := make([]string, 0, len(fm))
	for k := range fm {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the map.
func (fm FieldMap) Clone() FieldMap {
	out := make(FieldMap, len(fm))
	for k, v := range fm {
		out[k] = v
	}
	return out
}

// isEmptyValue reports whether a field value should be treated as unset for
// merge and sufficiency purposes.
func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case Money:
		return false // a parsed zero amount is still a populated field
	case Date:
		return t.IsZero()
	case []EarningLine:
		return len(t) == 0
	case []DeductionLine:
		return len(t) == 0
	case []TaxLine:
		return len(t) == 0
	case []Box12Code:
		return len(t) == 0
	case []StateLocal:
		return len(t) == 0
	default:
		return false
	}
}

// PartialRecord is the output of a single extraction attempt: a possibly
// sparse field map tagged with the method that produced it.
type PartialRecord struct {
	Method Method
	Fields FieldMap
}

// NewPartialRecord creates an empty partial record for a method.
func NewPartialRecord(m Method) PartialRecord {
	return PartialRecord{Method: m, Fields: make(FieldMap)}
}

// Field keys shared by both document kinds.
const (
	FieldEmployerName    = "employer_name"
	FieldEmployerAddress = "employer_address"
	FieldEmployeeName    = "employee_name"
	FieldEmployeeAddress = "employee_address"
)

// Paystub field keys.
const (
	FieldEmployeeID       = "employee_id"
	FieldEmployeeSSN      = "employee_ssn_masked"
	FieldPeriodStart      = "period_start"
	FieldPeriodEnd        = "period_end"
	FieldPayDate          = "pay_date"
	FieldGrossPayCurrent  = "gross_pay_current"
	FieldGrossPayYTD      = "gross_pay_ytd"
	FieldNetPayCurrent    = "net_pay_current"
	FieldNetPayYTD        = "net_pay_ytd"
	FieldEarnings         = "earnings"
	FieldDeductions       = "deductions"
	FieldTaxes            = "taxes"
	FieldTotalHours       = "total_hours_current"
	FieldPayFrequency     = "pay_frequency"
)

// W-2 field keys. Box fields follow the printed form.
const (
	FieldTaxYear            = "tax_year"
	FieldEmployeeSSNFull    = "employee_ssn"
	FieldEmployerEIN        = "employer_ein"
	FieldControlNumber      = "control_number"
	FieldWagesTips          = "wages_tips_compensation"
	FieldFederalTaxWithheld = "federal_income_tax_withheld"
	FieldSSWages            = "social_security_wages"
	FieldSSTaxWithheld      = "social_security_tax_withheld"
	FieldMedicareWages      = "medicare_wages_tips"
	FieldMedicareWithheld   = "medicare_tax_withheld"
	FieldSSTips             = "social_security_tips"
	FieldAllocatedTips      = "allocated_tips"
	FieldDependentCare      = "dependent_care_benefits"
	FieldNonqualifiedPlans  = "nonqualified_plans"
	FieldBox12Codes         = "box_12_codes"
	FieldStatutoryEmployee  = "statutory_employee"
	FieldRetirementPlan     = "retirement_plan"
	FieldThirdPartySickPay  = "third_party_sick_pay"
	FieldStateLocal         = "state_local"
)

// RequiredFields returns the required-for-completeness field keys for a
// document kind. Missing required fields produce a completeness warning,
// never a hard failure.
func RequiredFields(kind DocumentKind) []string {
	switch kind {
	case KindPaystub:
		return []string{
			FieldEmployerName,
			FieldEmployeeName,
			FieldPayDate,
			FieldGrossPayCurrent,
			FieldNetPayCurrent,
		}
	case KindW2:
		return []string{
			FieldEmployerName,
			FieldEmployeeName,
			FieldTaxYear,
			FieldWagesTips,
			FieldFederalTaxWithheld,
		}
	default:
		return nil
	}
}

// Sufficient implements the minimum-required-field predicate that lets the
// orchestrator stop before trying more expensive methods: an identity name
// plus at least one monetary total.
func Sufficient(kind DocumentKind, fields FieldMap) bool {
	switch kind {
	case KindPaystub:
		return fields.Has(FieldEmployeeName) &&
			(fields.Has(FieldGrossPayCurrent) || fields.Has(FieldNetPayCurrent))
	case KindW2:
		return fields.Has(FieldEmployeeName) && fields.Has(FieldWagesTips)
	default:
		return false
	}
}
