// internal/workers/loan/check-eligibility/engine.go
package checkeligibility

import (
	"fmt"
	"strings"

	"github.com/Kathan1010/LoanAdviser/internal/models"
)

const reasonLoanTypeMissing = "Loan type not specified"

// Evaluate looks up the rule set for the profile's loan type and applies it.
// The only error is a corrupted rule table; an unset loan type is a rejection.
func Evaluate(profile models.Profile) (models.EligibilityResult, error) {
	if !profile.LoanType.Valid() {
		return typeNotSpecified(), nil
	}
	rules, err := RulesFor(profile.LoanType)
	if err != nil {
		return models.EligibilityResult{}, err
	}
	return EvaluateWithRules(profile, rules), nil
}

// EvaluateWithRules is the pure rule engine. Every check runs; rejections accumulate.
func EvaluateWithRules(profile models.Profile, rules models.LoanRuleSet) models.EligibilityResult {
	if !profile.LoanType.Valid() {
		return typeNotSpecified()
	}

	income := models.Float64Value(profile.MonthlyIncome)
	age := models.IntValue(profile.Age)
	employmentMonths := models.IntValue(profile.EmploymentMonths)

	var rejections, warnings []string

	switch {
	case income <= 0:
		rejections = append(rejections, "Monthly income must be greater than 0.")
	case income < rules.MinIncome:
		rejections = append(rejections, fmt.Sprintf(
			"Minimum income required: %s/month. Your income: %s/month",
			FormatRupees(rules.MinIncome), FormatRupees(income)))
	}

	switch {
	case age < rules.MinAge:
		rejections = append(rejections, fmt.Sprintf(
			"Minimum age required: %d years. Your age: %d years", rules.MinAge, age))
	case age > rules.MaxAge:
		rejections = append(rejections, fmt.Sprintf(
			"Maximum age allowed: %d years. Your age: %d years", rules.MaxAge, age))
	}

	if employmentMonths < rules.MinEmploymentMonths {
		rejections = append(rejections, fmt.Sprintf(
			"Minimum employment duration: %d months. Your employment: %d months",
			rules.MinEmploymentMonths, employmentMonths))
	}

	tenure, tenureProvided := rules.MaxTenureYears, false
	if t := models.IntValue(profile.LoanTenureYears); t > 0 {
		tenure, tenureProvided = t, true
	}

	maxByIncome := income * rules.MaxLoanMultiplier
	maxByDTI := CalculateMaxEligibleAmount(income, rules.InterestRate, rules.MaxDTI, profile.ExistingDebt(), tenure)
	eligible := maxByIncome
	if maxByDTI < eligible {
		eligible = maxByDTI
	}

	if requested := models.Float64Value(profile.LoanAmountRequested); requested > 0 {
		if requested > eligible {
			warnings = append(warnings, fmt.Sprintf(
				"Requested amount %s exceeds eligible amount %s. Capped to eligible amount.",
				FormatRupees(requested), FormatRupees(eligible)))
		} else {
			eligible = requested
		}
	}

	existingEMI := models.Float64Value(profile.ExistingLoansEMI)
	cardMin := models.Float64Value(profile.ExistingCreditCardsMinPayment)

	var emi float64
	if eligible > 0 && tenure > 0 {
		emi = CalculateEMI(eligible, rules.InterestRate, tenure)
	}
	dti := CalculateDTI(income, existingEMI, cardMin, emi)
	if emi > 0 && dti > rules.MaxDTI {
		rejections = append(rejections, fmt.Sprintf(
			"Debt-to-Income ratio %s exceeds maximum allowed %s",
			FormatPercent(dti), FormatPercent(rules.MaxDTI)))
	}

	if tenureProvided {
		switch {
		case tenure < rules.MinTenureYears:
			rejections = append(rejections, fmt.Sprintf("Minimum tenure: %d years", rules.MinTenureYears))
		case tenure > rules.MaxTenureYears:
			rejections = append(rejections, fmt.Sprintf("Maximum tenure: %d years", rules.MaxTenureYears))
		}
	}

	result := models.EligibilityResult{
		LoanType:          profile.LoanType,
		IsEligible:        len(rejections) == 0 && eligible > 0,
		EligibleAmount:    eligible,
		MaxTenureYears:    rules.MaxTenureYears,
		SuggestedEMI:      emi,
		DTIRatio:          dti,
		RejectionReasons:  nonNil(rejections),
		Warnings:          nonNil(warnings),
		InterestRate:      rules.InterestRate,
		TenureYears:       tenure,
		TenureWasProvided: tenureProvided,
	}
	if result.IsEligible {
		result.ApprovalMessage = approvalMessage(result)
	}
	return result
}

// Summary flattens a profile and its verdict for responders and outcome events.
func Summary(profile models.Profile, result models.EligibilityResult) models.LoanSummary {
	loanType := profile.LoanType
	if !loanType.Valid() {
		loanType = models.LoanTypeUnknown
	}
	tenure := result.TenureYears
	if tenure == 0 {
		tenure = result.MaxTenureYears
	}
	return models.LoanSummary{
		LoanType:         loanType,
		IsEligible:       result.IsEligible,
		EligibleAmount:   result.EligibleAmount,
		RequestedAmount:  models.Float64Value(profile.LoanAmountRequested),
		SuggestedEMI:     result.SuggestedEMI,
		TenureYears:      tenure,
		DTIRatio:         result.DTIRatio,
		RejectionReasons: result.RejectionReasons,
		MonthlyIncome:    models.Float64Value(profile.MonthlyIncome),
		Age:              models.IntValue(profile.Age),
		EmploymentMonths: models.IntValue(profile.EmploymentMonths),
	}
}

func typeNotSpecified() models.EligibilityResult {
	return models.EligibilityResult{
		RejectionReasons: []string{reasonLoanTypeMissing},
		Warnings:         []string{},
	}
}

func approvalMessage(r models.EligibilityResult) string {
	msg := fmt.Sprintf(
		"Congratulations! You are eligible for a %s of %s with EMI of %s/month for %d years at %.1f%% interest rate.",
		r.LoanType.DisplayName(), FormatRupees(r.EligibleAmount), FormatRupees(r.SuggestedEMI), r.TenureYears, r.InterestRate)
	if len(r.Warnings) > 0 {
		msg += " Note: " + strings.Join(r.Warnings, " ")
	}
	return msg
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
