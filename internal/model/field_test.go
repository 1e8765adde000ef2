package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethodPriority(t *testing.T) {
	assert.Less(t, MethodStructured.Priority(), MethodText.Priority())
	assert.Less(t, MethodText.Priority(), MethodVisual.Priority())
}

func TestFieldMap_Has(t *testing.T) {
	fm := make(FieldMap)
	assert.False(t, fm.Has(FieldEmployeeName))

	fm.Set(FieldValue{FieldKey: FieldEmployeeName, Value: "", Method: MethodText})
	assert.False(t, fm.Has(FieldEmployeeName), "empty string is not populated")

	fm.Set(FieldValue{FieldKey: FieldEmployeeName, Value: "Jane Doe", Method: MethodText})
	assert.True(t, fm.Has(FieldEmployeeName))

	fm.Set(FieldValue{FieldKey: FieldEarnings, Value: []EarningLine{}, Method: MethodStructured})
	assert.False(t, fm.Has(FieldEarnings), "empty list is not populated")

	fm.Set(FieldValue{FieldKey: FieldGrossPayCurrent, Value: MustMoney("0.00"), Method: MethodStructured})
	assert.True(t, fm.Has(FieldGrossPayCurrent), "a parsed zero amount is populated")
}

func TestFieldMap_TypedAccessors(t *testing.T) {
	fm := make(FieldMap)
	fm.Set(FieldValue{FieldKey: FieldGrossPayCurrent, Value: MustMoney("4056.31"), Method: MethodStructured})
	fm.Set(FieldValue{FieldKey: FieldPayDate, Value: MustDate("2024-03-15"), Method: MethodText})
	fm.Set(FieldValue{FieldKey: FieldEmployeeName, Value: "Jane Doe", Method: MethodText})

	m, ok := fm.Money(FieldGrossPayCurrent)
	assert.True(t, ok)
	assert.Equal(t, "4056.31", m.String())

	d, ok := fm.Date(FieldPayDate)
	assert.True(t, ok)
	assert.Equal(t, "2024-03-15", d.String())

	assert.Equal(t, "Jane Doe", fm.String(FieldEmployeeName))
	assert.Equal(t, "", fm.String(FieldGrossPayCurrent), "money is not a string")

	_, ok = fm.Money(FieldNetPayCurrent)
	assert.False(t, ok)
}

func TestSufficient_Paystub(t *testing.T) {
	fm := make(FieldMap)
	assert.False(t, Sufficient(KindPaystub, fm))

	fm.Set(FieldValue{FieldKey: FieldEmployeeName, Value: "Jane Doe", Method: MethodText})
	assert.False(t, Sufficient(KindPaystub, fm), "name alone is below threshold")

	fm.Set(FieldValue{FieldKey: FieldNetPayCurrent, Value: MustMoney("2769.80"), Method: MethodText})
	assert.True(t, Sufficient(KindPaystub, fm))
}

func TestSufficient_W2(t *testing.T) {
	fm := make(FieldMap)
	fm.Set(FieldValue{FieldKey: FieldEmployeeName, Value: "Jane Doe", Method: MethodStructured})
	assert.False(t, Sufficient(KindW2, fm))

	fm.Set(FieldValue{FieldKey: FieldWagesTips, Value: MustMoney("85000.00"), Method: MethodStructured})
	assert.True(t, Sufficient(KindW2, fm))
}

func TestW2_ComputeIncome_Box1Primary(t *testing.T) {
	wages := MustMoney("84000.00")
	w := &W2Data{IncomeTaxInfo: IncomeTaxInfo{WagesTipsCompensation: &wages}}
	w.ComputeIncome()

	assert.Equal(t, "box_1_wages", w.CalculatedIncome.VerificationMethod)
	assert.Equal(t, "84000.00", w.CalculatedIncome.AnnualIncome.String())
	assert.Equal(t, "7000.00", w.CalculatedIncome.MonthlyIncome.String())
}

func TestW2_ComputeIncome_FallbackToBox3(t *testing.T) {
	ss := MustMoney("72000.00")
	w := &W2Data{IncomeTaxInfo: IncomeTaxInfo{SocialSecurityWages: &ss}}
	w.ComputeIncome()

	assert.Equal(t, "box_3_ss_wages", w.CalculatedIncome.VerificationMethod)
	assert.Equal(t, "72000.00", w.CalculatedIncome.AnnualIncome.String())
	assert.Equal(t, "6000.00", w.CalculatedIncome.MonthlyIncome.String())
}

func TestW2_ComputeIncome_Box12Benefits(t *testing.T) {
	wages := MustMoney("84000.00")
	d := MustMoney("5000.00")
	dd := MustMoney("7200.00")
	w := &W2Data{IncomeTaxInfo: IncomeTaxInfo{
		WagesTipsCompensation: &wages,
		Box12Codes: []Box12Code{
			{Code: "D", Amount: &d},
			{Code: "DD", Amount: &dd},
		},
	}}
	w.ComputeIncome()

	assert.Equal(t, "12200.00", w.CalculatedIncome.AdditionalBenefits.String())
}

func TestPaystub_Totals_ExcludeEmployerContributions(t *testing.T) {
	p := &PaystubData{
		Earnings: []EarningLine{
			{Description: "Regular", CurrentAmount: MustMoney("3800.00")},
			{Description: "Overtime", CurrentAmount: MustMoney("256.31")},
			{Description: "401k Match", CurrentAmount: MustMoney("150.00"), IsEmployerContribution: true},
		},
		Deductions: []DeductionLine{
			{Description: "Health", CurrentAmount: MustMoney("120.00")},
		},
		Taxes: []TaxLine{
			{TaxType: "Federal", CurrentAmount: MustMoney("600.00")},
			{TaxType: "FICA", CurrentAmount: MustMoney("310.31")},
		},
	}

	assert.Equal(t, "4056.31", p.EmployeeEarningsTotal().String())
	assert.Equal(t, "120.00", p.DeductionsTotal().String())
	assert.Equal(t, "910.31", p.TaxesTotal().String())
}
