package vision

// Response schemas for the two document kinds. Amount fields are strings
// matching the two-decimal format the prompt demands; additionalProperties
// stays open so an extra key never discards an otherwise good response.

const moneyPattern = `^-?[0-9]+(\.[0-9]{1,2})?$`

const paystubSchema = `{
  "type": "object",
  "properties": {
    "employer_name": {"type": "string"},
    "employer_address": {"type": "string"},
    "employee_name": {"type": "string"},
    "employee_address": {"type": "string"},
    "employee_id": {"type": "string"},
    "pay_date": {"type": "string"},
    "pay_period_start": {"type": "string"},
    "pay_period_end": {"type": "string"},
    "pay_frequency": {"type": "string"},
    "gross_pay_current": {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]{1,2})?$"},
    "gross_pay_ytd": {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]{1,2})?$"},
    "net_pay_current": {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]{1,2})?$"},
    "net_pay_ytd": {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]{1,2})?$"},
    "earnings": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "description": {"type": "string"},
          "rate": {"type": "string"},
          "hours": {"type": "string"},
          "amount": {"type": "string"},
          "ytd_amount": {"type": "string"}
        },
        "required": ["description"]
      }
    },
    "deductions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "description": {"type": "string"},
          "amount": {"type": "string"},
          "ytd_amount": {"type": "string"},
          "pre_tax": {"type": "boolean"}
        },
        "required": ["description"]
      }
    },
    "taxes": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "description": {"type": "string"},
          "amount": {"type": "string"},
          "ytd_amount": {"type": "string"}
        },
        "required": ["description"]
      }
    }
  }
}`

const w2Schema = `{
  "type": "object",
  "properties": {
    "tax_year": {"type": "integer", "minimum": 1990, "maximum": 2100},
    "employee_name": {"type": "string"},
    "employee_ssn": {"type": "string"},
    "employee_address": {"type": "string"},
    "employer_name": {"type": "string"},
    "employer_ein": {"type": "string"},
    "employer_address": {"type": "string"},
    "control_number": {"type": "string"},
    "wages_tips": {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]{1,2})?$"},
    "federal_tax_withheld": {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]{1,2})?$"},
    "social_security_wages": {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]{1,2})?$"},
    "social_security_tax": {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]{1,2})?$"},
    "medicare_wages": {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]{1,2})?$"},
    "medicare_tax": {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]{1,2})?$"},
    "social_security_tips": {"type": "string"},
    "allocated_tips": {"type": "string"},
    "dependent_care_benefits": {"type": "string"},
    "nonqualified_plans": {"type": "string"},
    "box12_codes": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "code": {"type": "string", "pattern": "^[A-HJ-Z]{1,2}$"},
          "amount": {"type": "string"}
        },
        "required": ["code", "amount"]
      }
    },
    "statutory_employee": {"type": "boolean"},
    "retirement_plan": {"type": "boolean"},
    "third_party_sick_pay": {"type": "boolean"},
    "box14_other": {"type": "string"},
    "state_entries": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "state": {"type": "string"},
          "employer_state_id": {"type": "string"},
          "state_wages": {"type": "string"},
          "state_tax": {"type": "string"},
          "local_wages": {"type": "string"},
          "local_tax": {"type": "string"},
          "locality": {"type": "string"}
        },
        "required": ["state"]
      }
    }
  }
}`

// SchemaFor returns the JSON schema source for a document kind.
func SchemaFor(kind DocumentKind) string {
	if kind == KindW2 {
		return w2Schema
	}
	return paystubSchema
}
