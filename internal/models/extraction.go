// internal/models/extraction.go
package models

// Intent is the coarse purpose detected in a user utterance.
type Intent string

const (
	IntentApplyLoan        Intent = "apply_loan"
	IntentCheckEligibility Intent = "check_eligibility"
	IntentAskQuestion      Intent = "ask_question"
	IntentProvideInfo      Intent = "provide_info"
)

// ExtractedFields carries the facts found in a single utterance.
type ExtractedFields struct {
	LoanAmountRequested           *float64         `json:"loan_amount_requested,omitempty"`
	MonthlyIncome                 *float64         `json:"monthly_income,omitempty"`
	Age                           *int             `json:"age,omitempty"`
	EmploymentMonths              *int             `json:"employment_months,omitempty"`
	EmploymentStatus              EmploymentStatus `json:"employment_status,omitempty"`
	ExistingLoansEMI              *float64         `json:"existing_loans_emi,omitempty"`
	ExistingCreditCardsMinPayment *float64         `json:"existing_credit_cards_min_payment,omitempty"`
	LoanTenureYears               *int             `json:"loan_tenure_years,omitempty"`
	LoanType                      LoanType         `json:"loan_type,omitempty"`
}

// Names lists the fields present, in profile order.
func (f ExtractedFields) Names() []Field {
	var p Profile
	return p.Apply(f)
}

func (f ExtractedFields) Empty() bool {
	return len(f.Names()) == 0
}

// ExtractionResult is produced fresh for every utterance and never persisted.
type ExtractionResult struct {
	Fields  ExtractedFields `json:"fields"`
	Missing []Field         `json:"missing"`
	Intent  Intent          `json:"intent"`
}
