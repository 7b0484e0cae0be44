// internal/models/profile.go
package models

import (
	"fmt"
	"strings"
)

// LoanType identifies a product with its own rule set.
type LoanType string

const (
	LoanTypeUnset     LoanType = ""
	LoanTypePersonal  LoanType = "personal_loan"
	LoanTypeHome      LoanType = "home_loan"
	LoanTypeCar       LoanType = "car_loan"
	LoanTypeEducation LoanType = "education_loan"
	LoanTypeBusiness  LoanType = "business_loan"

	// LoanTypeUnknown labels summaries of profiles that never named a product.
	LoanTypeUnknown LoanType = "unknown"
)

// LoanTypes lists every supported product.
var LoanTypes = []LoanType{
	LoanTypePersonal,
	LoanTypeHome,
	LoanTypeCar,
	LoanTypeEducation,
	LoanTypeBusiness,
}

// ParseLoanType accepts both the wire value ("home_loan") and the short form ("home").
func ParseLoanType(s string) (LoanType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LoanTypeUnset, false
	}
	if !strings.HasSuffix(s, "_loan") {
		s += "_loan"
	}
	t := LoanType(s)
	return t, t.Valid()
}

func (t LoanType) Valid() bool {
	switch t {
	case LoanTypePersonal, LoanTypeHome, LoanTypeCar, LoanTypeEducation, LoanTypeBusiness:
		return true
	default:
		return false
	}
}

// UnmarshalText lets JSON payloads use either form accepted by ParseLoanType.
func (t *LoanType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "":
		*t = LoanTypeUnset
		return nil
	case string(LoanTypeUnknown):
		*t = LoanTypeUnknown
		return nil
	}
	parsed, ok := ParseLoanType(string(b))
	if !ok {
		return fmt.Errorf("unknown loan type %q", string(b))
	}
	*t = parsed
	return nil
}

// DisplayName renders "home_loan" as "Home Loan".
func (t LoanType) DisplayName() string {
	switch t {
	case LoanTypePersonal:
		return "Personal Loan"
	case LoanTypeHome:
		return "Home Loan"
	case LoanTypeCar:
		return "Car Loan"
	case LoanTypeEducation:
		return "Education Loan"
	case LoanTypeBusiness:
		return "Business Loan"
	default:
		return "Loan"
	}
}

type EmploymentStatus string

const (
	EmploymentUnknown      EmploymentStatus = "unknown"
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self_employed"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
)

// Known reports whether the status carries information. The empty value counts as unknown.
func (s EmploymentStatus) Known() bool {
	switch s {
	case EmploymentEmployed, EmploymentSelfEmployed, EmploymentUnemployed:
		return true
	default:
		return false
	}
}

// Field names a single profile fact. The values double as JSON keys.
type Field string

const (
	FieldLoanAmount       Field = "loan_amount_requested"
	FieldMonthlyIncome    Field = "monthly_income"
	FieldAge              Field = "age"
	FieldEmploymentMonths Field = "employment_months"
	FieldEmploymentStatus Field = "employment_status"
	FieldExistingLoansEMI Field = "existing_loans_emi"
	FieldCreditCardMin    Field = "existing_credit_cards_min_payment"
	FieldLoanTenure       Field = "loan_tenure_years"
	FieldLoanType         Field = "loan_type"
)

// Profile holds the facts collected for one session. A nil pointer means the
// fact has not been provided; a non-nil zero is a real zero.
type Profile struct {
	MonthlyIncome                 *float64         `json:"monthly_income,omitempty"`
	Age                           *int             `json:"age,omitempty"`
	EmploymentMonths              *int             `json:"employment_months,omitempty"`
	EmploymentStatus              EmploymentStatus `json:"employment_status,omitempty"`
	ExistingLoansEMI              *float64         `json:"existing_loans_emi,omitempty"`
	ExistingCreditCardsMinPayment *float64         `json:"existing_credit_cards_min_payment,omitempty"`
	LoanAmountRequested           *float64         `json:"loan_amount_requested,omitempty"`
	LoanTenureYears               *int             `json:"loan_tenure_years,omitempty"`
	LoanType                      LoanType         `json:"loan_type,omitempty"`
}

// Apply copies every field present in f onto the profile and returns the
// names of the fields it set. Fields absent from f are left untouched.
func (p *Profile) Apply(f ExtractedFields) []Field {
	var updated []Field
	if f.LoanAmountRequested != nil {
		p.LoanAmountRequested = Float64(*f.LoanAmountRequested)
		updated = append(updated, FieldLoanAmount)
	}
	if f.MonthlyIncome != nil {
		p.MonthlyIncome = Float64(*f.MonthlyIncome)
		updated = append(updated, FieldMonthlyIncome)
	}
	if f.Age != nil {
		p.Age = Int(*f.Age)
		updated = append(updated, FieldAge)
	}
	if f.EmploymentMonths != nil {
		p.EmploymentMonths = Int(*f.EmploymentMonths)
		updated = append(updated, FieldEmploymentMonths)
	}
	if f.EmploymentStatus.Known() {
		p.EmploymentStatus = f.EmploymentStatus
		updated = append(updated, FieldEmploymentStatus)
	}
	if f.ExistingLoansEMI != nil {
		p.ExistingLoansEMI = Float64(*f.ExistingLoansEMI)
		updated = append(updated, FieldExistingLoansEMI)
	}
	if f.ExistingCreditCardsMinPayment != nil {
		p.ExistingCreditCardsMinPayment = Float64(*f.ExistingCreditCardsMinPayment)
		updated = append(updated, FieldCreditCardMin)
	}
	if f.LoanTenureYears != nil {
		p.LoanTenureYears = Int(*f.LoanTenureYears)
		updated = append(updated, FieldLoanTenure)
	}
	if f.LoanType.Valid() {
		p.LoanType = f.LoanType
		updated = append(updated, FieldLoanType)
	}
	return updated
}

// Has reports whether the named fact has been provided.
func (p Profile) Has(field Field) bool {
	switch field {
	case FieldLoanAmount:
		return p.LoanAmountRequested != nil
	case FieldMonthlyIncome:
		return p.MonthlyIncome != nil
	case FieldAge:
		return p.Age != nil
	case FieldEmploymentMonths:
		return p.EmploymentMonths != nil
	case FieldEmploymentStatus:
		return p.EmploymentStatus.Known()
	case FieldExistingLoansEMI:
		return p.ExistingLoansEMI != nil
	case FieldCreditCardMin:
		return p.ExistingCreditCardsMinPayment != nil
	case FieldLoanTenure:
		return p.LoanTenureYears != nil
	case FieldLoanType:
		return p.LoanType.Valid()
	default:
		return false
	}
}

// Clone returns a deep copy so snapshots do not alias the live profile.
func (p Profile) Clone() Profile {
	out := p
	out.MonthlyIncome = clonePtr(p.MonthlyIncome)
	out.Age = clonePtr(p.Age)
	out.EmploymentMonths = clonePtr(p.EmploymentMonths)
	out.ExistingLoansEMI = clonePtr(p.ExistingLoansEMI)
	out.ExistingCreditCardsMinPayment = clonePtr(p.ExistingCreditCardsMinPayment)
	out.LoanAmountRequested = clonePtr(p.LoanAmountRequested)
	out.LoanTenureYears = clonePtr(p.LoanTenureYears)
	return out
}

// ExistingDebt is the monthly obligation already carried before the new loan.
func (p Profile) ExistingDebt() float64 {
	return Float64Value(p.ExistingLoansEMI) + Float64Value(p.ExistingCreditCardsMinPayment)
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float64Value dereferences p, returning 0 when p is nil.
func Float64Value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// IntValue dereferences p, returning 0 when p is nil.
func IntValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
