// internal/workers/loan/check-eligibility/engine_test.go
package checkeligibility

import (
	"testing"

	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"
	"github.com/Kathan1010/LoanAdviser/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func personalProfile(income float64, age, months int) models.Profile {
	return models.Profile{
		MonthlyIncome:    models.Float64(income),
		Age:              models.Int(age),
		EmploymentMonths: models.Int(months),
		LoanType:         models.LoanTypePersonal,
	}
}

// ==========================
// Calculation Tests
// ==========================

func TestCalculateEMI(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		years     int
		expected  float64
	}{
		{"personal loan five years", 500000, 10.5, 5, 10746.95},
		{"one year at twelve percent", 100000, 12, 1, 8884.879},
		{"zero rate divides evenly", 1200000, 0, 1, 100000},
		{"zero principal", 0, 10.5, 5, 0},
		{"negative principal", -1000, 10.5, 5, 0},
		{"zero tenure", 500000, 10.5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CalculateEMI(tt.principal, tt.rate, tt.years), 0.001)
		})
	}
}

func TestCalculateDTI(t *testing.T) {
	assert.Equal(t, DTISentinel, CalculateDTI(0, 1000, 0, 0))
	assert.Equal(t, DTISentinel, CalculateDTI(-5, 0, 0, 0))
	assert.InDelta(t, 0.215, CalculateDTI(50000, 0, 0, 10746.95), 0.0001)
	assert.InDelta(t, 0.3, CalculateDTI(10000, 1000, 500, 1500), 0.0001)
}

func TestCalculateMaxEligibleAmount(t *testing.T) {
	tests := []struct {
		name     string
		income   float64
		debt     float64
		expected float64
	}{
		{"no existing debt", 50000, 0, 930496.543},
		{"five thousand existing", 50000, 5000, 697872.407},
		{"seven thousand existing", 50000, 7000, 604822.753},
		{"ten thousand existing", 50000, 10000, 465248.272},
		{"debt consumes the budget", 30000, 15000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateMaxEligibleAmount(tt.income, 10.5, 0.4, tt.debt, 5)
			assert.InDelta(t, tt.expected, got, 0.01)
		})
	}
}

func TestCalculateMaxEligibleAmount_DecreasesWithDebt(t *testing.T) {
	prev := CalculateMaxEligibleAmount(50000, 10.5, 0.4, 0, 5)
	for debt := 1000.0; debt <= 20000; debt += 1000 {
		got := CalculateMaxEligibleAmount(50000, 10.5, 0.4, debt, 5)
		assert.LessOrEqual(t, got, prev, "debt=%v", debt)
		prev = got
	}
	assert.Zero(t, prev)
}

func TestCalculateMaxEligibleAmount_InvertsEMI(t *testing.T) {
	max := CalculateMaxEligibleAmount(80000, 8.5, 0.5, 0, 20)
	assert.InDelta(t, 4609233.593, max, 0.01)
	assert.InDelta(t, 40000, CalculateEMI(max, 8.5, 20), 0.01)
}

func TestFormatRupees(t *testing.T) {
	assert.Equal(t, "₹500,000", FormatRupees(500000))
	assert.Equal(t, "₹123,068", FormatRupees(123067.67))
	assert.Equal(t, "₹999", FormatRupees(999))
	assert.Equal(t, "₹0", FormatRupees(0))
	assert.Equal(t, "₹4,800,000", FormatRupees(4800000))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "40.0%", FormatPercent(0.4))
	assert.Equal(t, "45.5%", FormatPercent(0.455))
}

// ==========================
// Rule Table Tests
// ==========================

func TestRulesFor_AllLoanTypes(t *testing.T) {
	for _, lt := range models.LoanTypes {
		t.Run(string(lt), func(t *testing.T) {
			rules, err := RulesFor(lt)
			require.NoError(t, err)
			assert.True(t, consistent(rules))
		})
	}
}

func TestRulesFor_UnknownType(t *testing.T) {
	_, err := RulesFor(models.LoanType("boat_loan"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeRuleTable))
}

// ==========================
// Evaluation Tests
// ==========================

func TestEvaluate_EligiblePersonalLoan(t *testing.T) {
	profile := personalProfile(50000, 30, 24)
	profile.LoanAmountRequested = models.Float64(500000)
	profile.LoanTenureYears = models.Int(5)

	result, err := Evaluate(profile)
	require.NoError(t, err)

	assert.True(t, result.IsEligible)
	assert.Equal(t, 500000.0, result.EligibleAmount)
	assert.InDelta(t, 10746.95, result.SuggestedEMI, 0.01)
	assert.InDelta(t, 0.215, result.DTIRatio, 0.0001)
	assert.Empty(t, result.RejectionReasons)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 5, result.TenureYears)
	assert.True(t, result.TenureWasProvided)
	assert.Equal(t,
		"Congratulations! You are eligible for a Personal Loan of ₹500,000 with EMI of ₹10,747/month for 5 years at 10.5% interest rate.",
		result.ApprovalMessage)
}

func TestEvaluate_LowIncomeRejected(t *testing.T) {
	profile := personalProfile(10000, 25, 12)
	profile.LoanAmountRequested = models.Float64(200000)
	profile.LoanTenureYears = models.Int(3)

	result, err := Evaluate(profile)
	require.NoError(t, err)

	assert.False(t, result.IsEligible)
	require.NotEmpty(t, result.RejectionReasons)
	assert.Equal(t, "Minimum income required: ₹15,000/month. Your income: ₹10,000/month", result.RejectionReasons[0])
	assert.InDelta(t, 123067.67, result.EligibleAmount, 0.01)
	assert.Equal(t,
		[]string{"Requested amount ₹200,000 exceeds eligible amount ₹123,068. Capped to eligible amount."},
		result.Warnings)
	assert.Empty(t, result.ApprovalMessage)
}

func TestEvaluate_RejectionOrder(t *testing.T) {
	profile := personalProfile(10000, 19, 2)
	profile.LoanTenureYears = models.Int(9)

	result, err := Evaluate(profile)
	require.NoError(t, err)

	require.Len(t, result.RejectionReasons, 4)
	assert.Contains(t, result.RejectionReasons[0], "Minimum income required")
	assert.Equal(t, "Minimum age required: 21 years. Your age: 19 years", result.RejectionReasons[1])
	assert.Equal(t, "Minimum employment duration: 6 months. Your employment: 2 months", result.RejectionReasons[2])
	assert.Equal(t, "Maximum tenure: 5 years", result.RejectionReasons[3])
}

func TestEvaluate_AgeAboveMaximum(t *testing.T) {
	result, err := Evaluate(personalProfile(50000, 70, 24))
	require.NoError(t, err)
	assert.Equal(t, []string{"Maximum age allowed: 65 years. Your age: 70 years"}, result.RejectionReasons)
}

func TestEvaluate_ZeroIncome(t *testing.T) {
	profile := models.Profile{
		MonthlyIncome: models.Float64(0),
		Age:           models.Int(20),
		LoanType:      models.LoanTypeEducation,
	}

	result, err := Evaluate(profile)
	require.NoError(t, err)

	assert.False(t, result.IsEligible)
	assert.Equal(t, DTISentinel, result.DTIRatio)
	assert.Contains(t, result.RejectionReasons, "Monthly income must be greater than 0.")
	assert.Zero(t, result.EligibleAmount)
}

func TestEvaluate_DebtRejection(t *testing.T) {
	profile := personalProfile(50000, 30, 24)
	profile.ExistingLoansEMI = models.Float64(25000)

	result, err := Evaluate(profile)
	require.NoError(t, err)

	// existing obligations already exceed the ratio, so no new EMI is offered
	assert.False(t, result.IsEligible)
	assert.Zero(t, result.EligibleAmount)
	assert.Zero(t, result.SuggestedEMI)
	assert.InDelta(t, 0.5, result.DTIRatio, 0.0001)
}

func TestEvaluate_TenureDefaultsToMaximum(t *testing.T) {
	profile := models.Profile{
		MonthlyIncome:    models.Float64(80000),
		Age:              models.Int(35),
		EmploymentMonths: models.Int(36),
		LoanType:         models.LoanTypeHome,
	}

	result, err := Evaluate(profile)
	require.NoError(t, err)

	assert.True(t, result.IsEligible)
	assert.False(t, result.TenureWasProvided)
	assert.Equal(t, 30, result.TenureYears)
	assert.Equal(t, 4800000.0, result.EligibleAmount)
}

func TestEvaluate_TenureBounds(t *testing.T) {
	tests := []struct {
		name     string
		tenure   int
		expected string
	}{
		{"below minimum", 3, "Minimum tenure: 5 years"},
		{"above maximum", 35, "Maximum tenure: 30 years"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := models.Profile{
				MonthlyIncome:    models.Float64(80000),
				Age:              models.Int(35),
				EmploymentMonths: models.Int(36),
				LoanType:         models.LoanTypeHome,
				LoanTenureYears:  models.Int(tt.tenure),
			}
			result, err := Evaluate(profile)
			require.NoError(t, err)
			assert.False(t, result.IsEligible)
			assert.Contains(t, result.RejectionReasons, tt.expected)
		})
	}
}

func TestEvaluate_LoanTypeNotSpecified(t *testing.T) {
	profile := personalProfile(50000, 30, 24)
	profile.LoanType = models.LoanTypeUnset

	result, err := Evaluate(profile)
	require.NoError(t, err)

	assert.False(t, result.IsEligible)
	assert.Equal(t, []string{"Loan type not specified"}, result.RejectionReasons)
	assert.Zero(t, result.EligibleAmount)
	assert.Zero(t, result.SuggestedEMI)
}

func TestEvaluate_EligibleAmountMonotonicInIncome(t *testing.T) {
	prev := -1.0
	for income := 15000.0; income <= 300000; income += 15000 {
		result, err := Evaluate(personalProfile(income, 30, 24))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.EligibleAmount, prev, "income=%v", income)
		prev = result.EligibleAmount
	}
}

func TestEvaluate_EligibleAmountNeverRisesWithDebt(t *testing.T) {
	tests := []struct {
		name      string
		loanType  models.LoanType
		income    float64
		requested float64
		tenure    int
	}{
		{"personal without request", models.LoanTypePersonal, 50000, 0, 0},
		{"personal capped request", models.LoanTypePersonal, 50000, 500000, 5},
		{"home long tenure", models.LoanTypeHome, 120000, 4000000, 20},
		{"car", models.LoanTypeCar, 45000, 0, 7},
		{"education", models.LoanTypeEducation, 30000, 800000, 0},
		{"business", models.LoanTypeBusiness, 200000, 2500000, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := -1.0
			for emi := 0.0; emi <= tt.income; emi += tt.income / 20 {
				profile := models.Profile{
					MonthlyIncome:    models.Float64(tt.income),
					Age:              models.Int(35),
					EmploymentMonths: models.Int(48),
					LoanType:         tt.loanType,
					ExistingLoansEMI: models.Float64(emi),
				}
				if tt.requested > 0 {
					profile.LoanAmountRequested = models.Float64(tt.requested)
				}
				if tt.tenure > 0 {
					profile.LoanTenureYears = models.Int(tt.tenure)
				}

				result, err := Evaluate(profile)
				require.NoError(t, err)
				if prev >= 0 {
					assert.LessOrEqual(t, result.EligibleAmount, prev, "existing emi=%v", emi)
				}
				prev = result.EligibleAmount
			}
			assert.Zero(t, prev)
		})
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	profile := personalProfile(64000, 41, 60)
	profile.ExistingCreditCardsMinPayment = models.Float64(3500)

	first, err := Evaluate(profile)
	require.NoError(t, err)
	second, err := Evaluate(profile)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSummary(t *testing.T) {
	profile := personalProfile(50000, 30, 24)
	profile.LoanAmountRequested = models.Float64(500000)
	profile.LoanTenureYears = models.Int(5)

	result, err := Evaluate(profile)
	require.NoError(t, err)

	summary := Summary(profile, result)
	assert.Equal(t, models.LoanTypePersonal, summary.LoanType)
	assert.Equal(t, 500000.0, summary.RequestedAmount)
	assert.Equal(t, 5, summary.TenureYears)
	assert.Equal(t, 50000.0, summary.MonthlyIncome)

	empty := Summary(models.Profile{}, typeNotSpecified())
	assert.Equal(t, models.LoanTypeUnknown, empty.LoanType)
}
