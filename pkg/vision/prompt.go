package vision

import "fmt"

const paystubPrompt = `You are a payroll document analyst. Examine this paystub image and extract every field you can read.

Return ONLY a JSON object with these keys (omit keys you cannot read, never guess):
{
  "employer_name": "company issuing the paystub",
  "employer_address": "street, city, state, zip as printed",
  "employee_name": "employee full name",
  "employee_address": "employee address as printed",
  "employee_id": "employee or file number",
  "pay_date": "YYYY-MM-DD",
  "pay_period_start": "YYYY-MM-DD",
  "pay_period_end": "YYYY-MM-DD",
  "pay_frequency": "weekly|biweekly|semimonthly|monthly",
  "gross_pay_current": "current period gross as a number string",
  "gross_pay_ytd": "year-to-date gross",
  "net_pay_current": "current period net (take-home)",
  "net_pay_ytd": "year-to-date net",
  "earnings": [{"description": "...", "rate": "...", "hours": "...", "amount": "...", "ytd_amount": "..."}],
  "deductions": [{"description": "...", "amount": "...", "ytd_amount": "...", "pre_tax": true}],
  "taxes": [{"description": "...", "amount": "...", "ytd_amount": "..."}]
}

Rules:
- Write every monetary amount as a plain number string with two decimals, no $ or commas (e.g. "4056.31").
- List earnings rows exactly as printed, including employer-paid benefit rows.
- Distinguish current-period columns from YTD columns carefully.`

const w2Prompt = `You are a tax document analyst. Examine this W-2 wage statement image and extract every box you can read.

Return ONLY a JSON object with these keys (omit keys you cannot read, never guess):
{
  "tax_year": 2023,
  "employee_name": "box e",
  "employee_ssn": "box a, as printed",
  "employee_address": "box f",
  "employer_name": "box c",
  "employer_ein": "box b",
  "employer_address": "box c address lines",
  "control_number": "box d",
  "wages_tips": "box 1",
  "federal_tax_withheld": "box 2",
  "social_security_wages": "box 3",
  "social_security_tax": "box 4",
  "medicare_wages": "box 5",
  "medicare_tax": "box 6",
  "social_security_tips": "box 7",
  "allocated_tips": "box 8",
  "dependent_care_benefits": "box 10",
  "nonqualified_plans": "box 11",
  "box12_codes": [{"code": "D", "amount": "1200.00"}],
  "statutory_employee": false,
  "retirement_plan": false,
  "third_party_sick_pay": false,
  "box14_other": "box 14 text as printed",
  "state_entries": [{"state": "CA", "employer_state_id": "...", "state_wages": "...", "state_tax": "...", "local_wages": "...", "local_tax": "...", "locality": "..."}]
}

Rules:
- Write every monetary amount as a plain number string with two decimals, no $ or commas.
- tax_year is a bare integer.
- Box 12 codes are single or double letters (A through HH).`

// PromptFor builds the analysis prompt for a document kind, optionally
// injecting data already recovered by earlier methods so the model can
// verify and fill gaps rather than start cold.
func PromptFor(kind DocumentKind, priorJSON []byte) string {
	base := paystubPrompt
	if kind == KindW2 {
		base = w2Prompt
	}
	if len(priorJSON) == 0 {
		return base
	}
	return fmt.Sprintf(`%s

Preliminary data recovered from the document's text layer (may contain errors or gaps):
%s

Verify each preliminary value against the image. Correct anything that disagrees with what you see and add any fields the preliminary data missed.`, base, priorJSON)
}
