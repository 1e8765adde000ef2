package model

import "github.com/shopspring/decimal"

// Box12Code is a single Box 12 code/amount pair (e.g. D = 401(k) deferral).
type Box12Code struct {
	Code   string `json:"code"`
	Amount *Money `json:"amount,omitempty"`
}

// StateLocal holds boxes 15-20 for one state/locality row.
type StateLocal struct {
	State          string `json:"state,omitempty"`
	StateWages     *Money `json:"state_wages,omitempty"`
	StateIncomeTax *Money `json:"state_income_tax,omitempty"`
	Locality       string `json:"locality,omitempty"`
	LocalWages     *Money `json:"local_wages,omitempty"`
	LocalIncomeTax *Money `json:"local_income_tax,omitempty"`
}

// W2Employee is the employee identity block of a wage statement.
type W2Employee struct {
	SSN     string   `json:"ssn,omitempty"`
	Name    string   `json:"name,omitempty"`
	Address *Address `json:"address,omitempty"`
}

// W2Employer is the employer identity block of a wage statement.
type W2Employer struct {
	EIN           string   `json:"ein,omitempty"`
	Name          string   `json:"name,omitempty"`
	Address       *Address `json:"address,omitempty"`
	ControlNumber string   `json:"control_number,omitempty"`
}

// IncomeTaxInfo holds boxes 1-14 of the wage statement.
type IncomeTaxInfo struct {
	WagesTipsCompensation     *Money      `json:"wages_tips_compensation,omitempty"`
	FederalIncomeTaxWithheld  *Money      `json:"federal_income_tax_withheld,omitempty"`
	SocialSecurityWages       *Money      `json:"social_security_wages,omitempty"`
	SocialSecurityTaxWithheld *Money      `json:"social_security_tax_withheld,omitempty"`
	MedicareWagesTips         *Money      `json:"medicare_wages_tips,omitempty"`
	MedicareTaxWithheld       *Money      `json:"medicare_tax_withheld,omitempty"`
	SocialSecurityTips        *Money      `json:"social_security_tips,omitempty"`
	AllocatedTips             *Money      `json:"allocated_tips,omitempty"`
	DependentCareBenefits     *Money      `json:"dependent_care_benefits,omitempty"`
	NonqualifiedPlans         *Money      `json:"nonqualified_plans,omitempty"`
	Box12Codes                []Box12Code `json:"box_12_codes"`
	StatutoryEmployee         bool        `json:"statutory_employee"`
	RetirementPlan            bool        `json:"retirement_plan"`
	ThirdPartySickPay         bool        `json:"third_party_sick_pay"`
}

// CalculatedIncome derives income figures for verification workflows from
// the wage statement boxes. Box 1 is primary; Box 3 then Box 5 are fallbacks
// when Box 1 is absent, recorded in VerificationMethod.
type CalculatedIncome struct {
	AnnualIncome       *Money `json:"annual_income,omitempty"`
	MonthlyIncome      *Money `json:"monthly_income,omitempty"`
	VerificationMethod string `json:"income_verification_method"`
	AdditionalBenefits *Money `json:"additional_benefits,omitempty"`
}

// W2Data is the structured payload for a wage statement.
type W2Data struct {
	TaxYear          string            `json:"tax_year,omitempty"`
	Employee         W2Employee        `json:"employee"`
	Employer         W2Employer        `json:"employer"`
	IncomeTaxInfo    IncomeTaxInfo     `json:"income_tax_info"`
	StateLocalInfo   []StateLocal      `json:"state_local_info"`
	CalculatedIncome *CalculatedIncome `json:"calculated_income,omitempty"`
}

// ComputeIncome fills CalculatedIncome from the box values.
func (w *W2Data) ComputeIncome() {
	ci := &CalculatedIncome{VerificationMethod: "box_1_wages"}

	annual := w.IncomeTaxInfo.WagesTipsCompensation
	if annual == nil || annual.IsZero() {
		switch {
		case w.IncomeTaxInfo.SocialSecurityWages != nil && w.IncomeTaxInfo.SocialSecurityWages.IsPositive():
			annual = w.IncomeTaxInfo.SocialSecurityWages
			ci.VerificationMethod = "box_3_ss_wages"
		case w.IncomeTaxInfo.MedicareWagesTips != nil && w.IncomeTaxInfo.MedicareWagesTips.IsPositive():
			annual = w.IncomeTaxInfo.MedicareWagesTips
			ci.VerificationMethod = "box_5_medicare_wages"
		}
	}

	if annual != nil && annual.IsPositive() {
		ci.AnnualIncome = annual
		monthly := NewMoney(annual.Decimal().Div(decimal.NewFromInt(12)).Round(2))
		ci.MonthlyIncome = &monthly
	}

	benefits := decimal.Zero
	for _, c := range w.IncomeTaxInfo.Box12Codes {
		if c.Amount != nil {
			benefits = benefits.Add(c.Amount.Decimal())
		}
	}
	if benefits.IsPositive() {
		b := NewMoney(benefits)
		ci.AdditionalBenefits = &b
	}

	w.CalculatedIncome = ci
}
