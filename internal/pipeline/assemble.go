package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/sells-group/income-verify/internal/model"
)

// materializePaystub builds the typed record from merged fields. Unset
// fields stay nil/zero; materialization never invents values.
func materializePaystub(fields model.FieldMap) *model.PaystubData {
	p := &model.PaystubData{
		Employer: model.EmployerInfo{
			CompanyName: fields.String(model.FieldEmployerName),
			EmployeeID:  fields.String(model.FieldEmployeeID),
		},
		Employee: model.EmployeeInfo{
			Name:      fields.String(model.FieldEmployeeName),
			SSNMasked: fields.String(model.FieldEmployeeSSN),
		},
		PayFrequency: fields.String(model.FieldPayFrequency),
	}

	if addr := fields.String(model.FieldEmployerAddress); addr != "" {
		p.Employer.Address = &model.Address{FullAddress: addr}
	}
	if addr := fields.String(model.FieldEmployeeAddress); addr != "" {
		p.Employee.Address = &model.Address{FullAddress: addr}
	}

	if d, ok := fields.Date(model.FieldPeriodStart); ok {
		p.PayrollPeriod.StartDate = d
	}
	if d, ok := fields.Date(model.FieldPeriodEnd); ok {
		p.PayrollPeriod.EndDate = d
	}
	if d, ok := fields.Date(model.FieldPayDate); ok {
		p.PayrollPeriod.PayDate = d
	}

	assignMoney := func(key string, dst **model.Money) {
		if m, ok := fields.Money(key); ok {
			*dst = &m
		}
	}
	assignMoney(model.FieldGrossPayCurrent, &p.GrossPayCurrent)
	assignMoney(model.FieldGrossPayYTD, &p.GrossPayYTD)
	assignMoney(model.FieldNetPayCurrent, &p.NetPayCurrent)
	assignMoney(model.FieldNetPayYTD, &p.NetPayYTD)

	if fv, ok := fields.Get(model.FieldEarnings); ok {
		if lines, ok := fv.Value.([]model.EarningLine); ok {
			p.Earnings = lines
		}
	}
	if fv, ok := fields.Get(model.FieldDeductions); ok {
		if lines, ok := fv.Value.([]model.DeductionLine); ok {
			p.Deductions = lines
		}
	}
	if fv, ok := fields.Get(model.FieldTaxes); ok {
		if lines, ok := fv.Value.([]model.TaxLine); ok {
			p.Taxes = lines
		}
	}

	if hours := totalHours(p.Earnings); hours != nil {
		p.TotalHoursCurrent = hours
	}

	return p
}

// totalHours sums per-line hours, or nil when no line reports hours.
func totalHours(earnings []model.EarningLine) *decimal.Decimal {
	total := decimal.Zero
	found := false
	for _, e := range earnings {
		if e.Hours != nil {
			total = total.Add(*e.Hours)
			found = true
		}
	}
	if !found {
		return nil
	}
	return &total
}

// materializeW2 builds the typed wage-statement record from merged fields
// and derives the calculated income block.
func materializeW2(fields model.FieldMap) *model.W2Data {
	w := &model.W2Data{
		TaxYear: fields.String(model.FieldTaxYear),
		Employee: model.W2Employee{
			Name: fields.String(model.FieldEmployeeName),
			SSN:  fields.String(model.FieldEmployeeSSNFull),
		},
		Employer: model.W2Employer{
			Name:          fields.String(model.FieldEmployerName),
			EIN:           fields.String(model.FieldEmployerEIN),
			ControlNumber: fields.String(model.FieldControlNumber),
		},
	}

	if addr := fields.String(model.FieldEmployeeAddress); addr != "" {
		w.Employee.Address = &model.Address{FullAddress: addr}
	}
	if addr := fields.String(model.FieldEmployerAddress); addr != "" {
		w.Employer.Address = &model.Address{FullAddress: addr}
	}

	info := &w.IncomeTaxInfo
	for key, dst := range map[string]**model.Money{
		model.FieldWagesTips:          &info.WagesTipsCompensation,
		model.FieldFederalTaxWithheld: &info.FederalIncomeTaxWithheld,
		model.FieldSSWages:            &info.SocialSecurityWages,
		model.FieldSSTaxWithheld:      &info.SocialSecurityTaxWithheld,
		model.FieldMedicareWages:      &info.MedicareWagesTips,
		model.FieldMedicareWithheld:   &info.MedicareTaxWithheld,
		model.FieldSSTips:             &info.SocialSecurityTips,
		model.FieldAllocatedTips:      &info.AllocatedTips,
		model.FieldDependentCare:      &info.DependentCareBenefits,
		model.FieldNonqualifiedPlans:  &info.NonqualifiedPlans,
	} {
		if m, ok := fields.Money(key); ok {
			*dst = &m
		}
	}

	if fv, ok := fields.Get(model.FieldBox12Codes); ok {
		if codes, ok := fv.Value.([]model.Box12Code); ok {
			info.Box12Codes = codes
		}
	}
	if fv, ok := fields.Get(model.FieldStateLocal); ok {
		if entries, ok := fv.Value.([]model.StateLocal); ok {
			w.StateLocalInfo = entries
		}
	}

	for key, dst := range map[string]*bool{
		model.FieldStatutoryEmployee: &info.StatutoryEmployee,
		model.FieldRetirementPlan:    &info.RetirementPlan,
		model.FieldThirdPartySickPay: &info.ThirdPartySickPay,
	} {
		if fv, ok := fields.Get(key); ok {
			if b, ok := fv.Value.(bool); ok {
				*dst = b
			}
		}
	}

	w.ComputeIncome()
	return w
}

// assemble packages everything into the immutable output record. Returns
// ErrExtractionFailed when no required field of the document kind was
// recovered by any method: that is a distinct terminal outcome, not a
// low-confidence record.
func assemble(
	kind model.DocumentKind,
	fields model.FieldMap,
	paystub *model.PaystubData,
	w2 *model.W2Data,
	warnings []model.Warning,
	confidence float64,
	breakdown []model.CategoryScore,
	meta model.ProcessingMetadata,
) (*model.Document, error) {
	if !anyRequiredFieldPopulated(kind, fields) {
		return nil, model.ErrExtractionFailed
	}

	doc := &model.Document{
		Kind:                kind,
		Confidence:          confidence,
		ConfidenceBreakdown: breakdown,
		Warnings:            warnings,
		Provenance:          fields,
		Metadata:            meta,
	}
	switch kind {
	case model.KindW2:
		doc.W2 = w2
	default:
		doc.Paystub = paystub
	}
	return doc, nil
}

func anyRequiredFieldPopulated(kind model.DocumentKind, fields model.FieldMap) bool {
	for _, key := range model.RequiredFields(kind) {
		if fields.Has(key) {
			return true
		}
	}
	return false
}
