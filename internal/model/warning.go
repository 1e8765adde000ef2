package model

// Severity grades a validation warning.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Warning codes are part of the stable output contract.
const (
	WarnArithmeticGrossEarnings    = "arithmetic_gross_earnings"
	WarnArithmeticNetReconcile     = "arithmetic_net_reconciliation"
	WarnNetExceedsGross            = "net_exceeds_gross"
	WarnTemporalPeriodOrder        = "temporal_period_order"
	WarnTemporalTaxYear            = "temporal_tax_year"
	WarnRangeGrossLow              = "range_gross_low"
	WarnRangeGrossHigh             = "range_gross_high"
	WarnRangeHourlyRate            = "range_hourly_rate"
	WarnRangeAnnualWages           = "range_annual_wages"
	WarnCompletenessMissingFields  = "completeness_missing_fields"
)

// Warning is a structured validation annotation. Warnings never mutate the
// record they describe.
type Warning struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}
