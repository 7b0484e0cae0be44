// internal/workers/loan/check-eligibility/rules.go
package checkeligibility

import (
	"github.com/Kathan1010/LoanAdviser/internal/common/errors"
	"github.com/Kathan1010/LoanAdviser/internal/models"
)

// These thresholds are product policy; change them only with the lending team.
var loanRules = map[models.LoanType]models.LoanRuleSet{
	models.LoanTypePersonal: {
		MinIncome:           15000,
		MinAge:              21,
		MaxAge:              65,
		MaxDTI:              0.40,
		MinEmploymentMonths: 6,
		MaxLoanMultiplier:   20,
		InterestRate:        10.5,
		MinTenureYears:      1,
		MaxTenureYears:      5,
	},
	models.LoanTypeHome: {
		MinIncome:           25000,
		MinAge:              21,
		MaxAge:              70,
		MaxDTI:              0.50,
		MinEmploymentMonths: 12,
		MaxLoanMultiplier:   60,
		InterestRate:        8.5,
		MinTenureYears:      5,
		MaxTenureYears:      30,
	},
	models.LoanTypeCar: {
		MinIncome:           20000,
		MinAge:              21,
		MaxAge:              65,
		MaxDTI:              0.45,
		MinEmploymentMonths: 6,
		MaxLoanMultiplier:   10,
		InterestRate:        9.0,
		MinTenureYears:      1,
		MaxTenureYears:      7,
	},
	models.LoanTypeEducation: {
		MinIncome:           0,
		MinAge:              18,
		MaxAge:              35,
		MaxDTI:              0.40,
		MinEmploymentMonths: 0,
		MaxLoanMultiplier:   15,
		InterestRate:        8.0,
		MinTenureYears:      1,
		MaxTenureYears:      15,
	},
	models.LoanTypeBusiness: {
		MinIncome:           100000,
		MinAge:              18,
		MaxAge:              60,
		MaxDTI:              0.40,
		MinEmploymentMonths: 12,
		MaxLoanMultiplier:   30,
		InterestRate:        12.0,
		MinTenureYears:      1,
		MaxTenureYears:      10,
	},
}

// RulesFor returns the rule set for a loan type. A missing or inconsistent
// entry is a corrupted table, not a user error.
func RulesFor(loanType models.LoanType) (models.LoanRuleSet, error) {
	switch loanType {
	case models.LoanTypePersonal, models.LoanTypeHome, models.LoanTypeCar,
		models.LoanTypeEducation, models.LoanTypeBusiness:
		rules, ok := loanRules[loanType]
		if !ok || !consistent(rules) {
			return models.LoanRuleSet{}, errors.NewRuleTableError(string(loanType))
		}
		return rules, nil
	default:
		return models.LoanRuleSet{}, errors.NewRuleTableError(string(loanType))
	}
}

func consistent(r models.LoanRuleSet) bool {
	return r.MinAge <= r.MaxAge &&
		r.MinTenureYears >= 1 && r.MinTenureYears <= r.MaxTenureYears &&
		r.MaxDTI > 0 && r.MaxDTI <= 1 &&
		r.MaxLoanMultiplier > 0 &&
		r.InterestRate >= 0 &&
		r.MinIncome >= 0 && r.MinEmploymentMonths >= 0
}
