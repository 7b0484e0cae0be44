// internal/workers/loan/check-eligibility/schema.go
package checkeligibility

import "github.com/Kathan1010/LoanAdviser/internal/common/validation"

// ProfileSchemaJSON describes a profile submitted for direct evaluation.
const ProfileSchemaJSON = `{
	"type": "object",
	"required": ["monthly_income", "age", "loan_type"],
	"properties": {
		"monthly_income": {"type": "number", "minimum": 0},
		"age": {"type": "integer", "minimum": 0, "maximum": 120},
		"employment_months": {"type": "integer", "minimum": 0},
		"employment_status": {"type": "string", "enum": ["employed", "self_employed", "unemployed", "unknown"]},
		"existing_loans_emi": {"type": "number", "minimum": 0},
		"existing_credit_cards_min_payment": {"type": "number", "minimum": 0},
		"loan_amount_requested": {"type": "number", "minimum": 0},
		"loan_tenure_years": {"type": "integer", "minimum": 0},
		"loan_type": {
			"type": "string",
			"enum": [
				"personal_loan", "home_loan", "car_loan", "education_loan", "business_loan",
				"personal", "home", "car", "education", "business"
			]
		}
	}
}`

const inputSchemaJSON = `{
	"type": "object",
	"required": ["profile"],
	"properties": {
		"applicantId": {"type": "string"},
		"profile": ` + ProfileSchemaJSON + `
	}
}`

var (
	ProfileSchema = validation.MustCompile(ProfileSchemaJSON)
	inputSchema   = validation.MustCompile(inputSchemaJSON)
)
