package model

import "github.com/shopspring/decimal"

// Address is a postal address block. Fields are extracted best-effort; a
// populated FullAddress with empty components is valid.
type Address struct {
	Street      string `json:"street,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Zip         string `json:"zip,omitempty"`
	FullAddress string `json:"full_address,omitempty"`
}

// EarningLine is a single earnings line item on a payroll statement.
type EarningLine struct {
	Description            string           `json:"description"`
	Rate                   *decimal.Decimal `json:"rate,omitempty"`
	Hours                  *decimal.Decimal `json:"hours,omitempty"`
	CurrentAmount          Money            `json:"current_amount"`
	YTDAmount              *Money           `json:"ytd_amount,omitempty"`
	IsEmployerContribution bool             `json:"is_employer_contribution"`
}

// DeductionLine is a single deduction line item.
type DeductionLine struct {
	Description   string `json:"description"`
	CurrentAmount Money  `json:"current_amount"`
	YTDAmount     *Money `json:"ytd_amount,omitempty"`
	IsPreTax      bool   `json:"is_pre_tax"`
}

// TaxLine is a single tax withholding line item.
type TaxLine struct {
	TaxType             string `json:"tax_type"`
	CurrentAmount       Money  `json:"current_amount"`
	YTDAmount           *Money `json:"ytd_amount,omitempty"`
	TaxableWagesCurrent *Money `json:"taxable_wages_current,omitempty"`
	TaxableWagesYTD     *Money `json:"taxable_wages_ytd,omitempty"`
}

// EmployerInfo is the employer identity block.
type EmployerInfo struct {
	CompanyName string   `json:"company_name,omitempty"`
	Address     *Address `json:"address,omitempty"`
	EmployeeID  string   `json:"employee_id,omitempty"`
}

// EmployeeInfo is the employee identity block.
type EmployeeInfo struct {
	Name      string   `json:"name,omitempty"`
	Address   *Address `json:"address,omitempty"`
	SSNMasked string   `json:"ssn_masked,omitempty"`
}

// PayrollPeriod is the pay-period date block.
type PayrollPeriod struct {
	StartDate Date `json:"start_date"`
	EndDate   Date `json:"end_date"`
	PayDate   Date `json:"pay_date"`
}

// PaystubData is the structured payload for a payroll statement.
type PaystubData struct {
	Employer      EmployerInfo  `json:"employer"`
	Employee      EmployeeInfo  `json:"employee"`
	PayrollPeriod PayrollPeriod `json:"payroll_period"`

	GrossPayCurrent *Money `json:"gross_pay_current,omitempty"`
	GrossPayYTD     *Money `json:"gross_pay_ytd,omitempty"`
	NetPayCurrent   *Money `json:"net_pay_current,omitempty"`
	NetPayYTD       *Money `json:"net_pay_ytd,omitempty"`

	Earnings   []EarningLine   `json:"earnings"`
	Deductions []DeductionLine `json:"deductions"`
	Taxes      []TaxLine       `json:"taxes"`

	TotalHoursCurrent *decimal.Decimal `json:"total_hours_current,omitempty"`
	PayFrequency      string           `json:"pay_frequency,omitempty"`
}

// EmployeeEarningsTotal sums current earnings, excluding employer
// contributions (401k match, employer-paid benefits).
func (p *PaystubData) EmployeeEarningsTotal() Money {
	total := decimal.Zero
	for _, e := range p.Earnings {
		if e.IsEmployerContribution {
			continue
		}
		total = total.Add(e.CurrentAmount.Decimal())
	}
	return NewMoney(total)
}

// DeductionsTotal sums current deduction amounts.
func (p *PaystubData) DeductionsTotal() Money {
	total := decimal.Zero
	for _, d := range p.Deductions {
		total = total.Add(d.CurrentAmount.Decimal())
	}
	return NewMoney(total)
}

// TaxesTotal sums current tax withholding amounts.
func (p *PaystubData) TaxesTotal() Money {
	total := decimal.Zero
	for _, t := range p.Taxes {
		total = total.Add(t.CurrentAmount.Decimal())
	}
	return NewMoney(total)
}
