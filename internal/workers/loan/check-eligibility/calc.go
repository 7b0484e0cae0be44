// internal/workers/loan/check-eligibility/calc.go
package checkeligibility

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DTISentinel marks a profile without positive income as disqualified.
const DTISentinel = 999.0

// CalculateEMI returns the equated monthly installment for principal at
// annualRate percent over tenureYears, rounded to 3 decimals.
func CalculateEMI(principal, annualRate float64, tenureYears int) float64 {
	if principal <= 0 || tenureYears <= 0 {
		return 0
	}
	r := annualRate / 12 / 100
	m := float64(tenureYears * 12)
	if r == 0 {
		return round3(principal / m)
	}
	growth := math.Pow(1+r, m)
	return round3(principal * r * growth / (growth - 1))
}

// CalculateDTI is total monthly debt over monthly income, rounded to 3 decimals.
func CalculateDTI(monthlyIncome, existingLoansEMI, creditCardMin, newEMI float64) float64 {
	if monthlyIncome <= 0 {
		return DTISentinel
	}
	return round3((existingLoansEMI + creditCardMin + newEMI) / monthlyIncome)
}

// CalculateMaxEligibleAmount inverts the EMI formula: the principal whose
// installment brings total DTI to exactly maxDTI given existingDebt.
func CalculateMaxEligibleAmount(monthlyIncome, annualRate, maxDTI, existingDebt float64, tenureYears int) float64 {
	available := monthlyIncome*maxDTI - existingDebt
	if available <= 0 || tenureYears <= 0 {
		return 0
	}
	r := annualRate / 12 / 100
	m := float64(tenureYears * 12)
	if r == 0 {
		return round3(available * m)
	}
	growth := math.Pow(1+r, m)
	return round3(available * (growth - 1) / (r * growth))
}

func round3(v float64) float64 {
	out, _ := decimal.NewFromFloat(v).Round(3).Float64()
	return out
}

// FormatRupees renders 500000 as "₹500,000".
func FormatRupees(amount float64) string {
	s := decimal.NewFromFloat(amount).RoundBank(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-₹" + b.String()
	}
	return "₹" + b.String()
}

// FormatPercent renders 0.455 as "45.5%".
func FormatPercent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Mul(decimal.NewFromInt(100)).RoundBank(1).StringFixed(1) + "%"
}
