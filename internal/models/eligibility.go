// internal/models/eligibility.go
package models

// LoanRuleSet holds the lending thresholds for one loan type.
type LoanRuleSet struct {
	MinIncome           float64 `json:"min_income"`
	MinAge              int     `json:"min_age"`
	MaxAge              int     `json:"max_age"`
	MaxDTI              float64 `json:"max_dti"`
	MinEmploymentMonths int     `json:"min_employment_months"`
	MaxLoanMultiplier   float64 `json:"max_loan_multiplier"`
	InterestRate        float64 `json:"interest_rate"`
	MinTenureYears      int     `json:"min_tenure_years"`
	MaxTenureYears      int     `json:"max_tenure_years"`
}

type EligibilityResult struct {
	LoanType          LoanType `json:"loan_type,omitempty"`
	IsEligible        bool     `json:"is_eligible"`
	EligibleAmount    float64  `json:"eligible_amount"`
	MaxTenureYears    int      `json:"max_tenure_years"`
	SuggestedEMI      float64  `json:"suggested_emi"`
	DTIRatio          float64  `json:"dti_ratio"`
	RejectionReasons  []string `json:"rejection_reasons"`
	Warnings          []string `json:"warnings"`
	InterestRate      float64  `json:"interest_rate"`
	TenureYears       int      `json:"tenure_years"`
	TenureWasProvided bool     `json:"tenure_was_provided"`
	ApprovalMessage   string   `json:"approval_message,omitempty"`
}

// LoanSummary is the flattened view handed to responders and outcome consumers.
type LoanSummary struct {
	LoanType         LoanType `json:"loan_type"`
	IsEligible       bool     `json:"is_eligible"`
	EligibleAmount   float64  `json:"eligible_amount"`
	RequestedAmount  float64  `json:"requested_amount"`
	SuggestedEMI     float64  `json:"suggested_emi"`
	TenureYears      int      `json:"tenure_years"`
	DTIRatio         float64  `json:"dti_ratio"`
	RejectionReasons []string `json:"rejection_reasons"`
	MonthlyIncome    float64  `json:"monthly_income"`
	Age              int      `json:"age"`
	EmploymentMonths int      `json:"employment_months"`
}
