// internal/workers/loan/extract-fields/extract.go
package extractfields

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Kathan1010/LoanAdviser/internal/models"

	"github.com/shopspring/decimal"
)

// Extract pulls every recognisable fact out of one utterance and reports which
// required facts are still unknown once existing is taken into account.
func Extract(text string, existing models.Profile) models.ExtractionResult {
	clean := prepare(text)

	var f models.ExtractedFields
	f.LoanAmountRequested = extractLoanAmount(clean)
	f.MonthlyIncome = extractIncome(clean)
	f.Age = extractAge(clean)
	f.EmploymentStatus = extractEmploymentStatus(clean)

	if months := extractEmploymentMonths(clean); months != nil {
		// the same number read twice as age and as service length
		if f.Age == nil || *months != *f.Age*12 {
			f.EmploymentMonths = months
		}
	}

	f.LoanTenureYears = extractTenure(clean)
	f.LoanType = extractLoanType(clean)
	f.ExistingLoansEMI = extractExistingLoansEMI(clean)
	f.ExistingCreditCardsMinPayment = extractCreditCardPayment(clean)

	return models.ExtractionResult{
		Fields:  f,
		Missing: missingFields(f, existing),
		Intent:  DetectIntent(clean),
	}
}

func prepare(text string) string {
	return strings.ToLower(strings.ReplaceAll(text, ",", ""))
}

func missingFields(f models.ExtractedFields, existing models.Profile) []models.Field {
	missing := []models.Field{}
	if f.LoanAmountRequested == nil && !existing.Has(models.FieldLoanAmount) {
		missing = append(missing, models.FieldLoanAmount)
	}
	if f.MonthlyIncome == nil && !existing.Has(models.FieldMonthlyIncome) {
		missing = append(missing, models.FieldMonthlyIncome)
	}
	if f.Age == nil && !existing.Has(models.FieldAge) {
		missing = append(missing, models.FieldAge)
	}
	hasIncome := f.MonthlyIncome != nil || existing.Has(models.FieldMonthlyIncome)
	if hasIncome && f.EmploymentMonths == nil && !existing.Has(models.FieldEmploymentMonths) {
		missing = append(missing, models.FieldEmploymentMonths)
	}
	if f.LoanTenureYears == nil && !existing.Has(models.FieldLoanTenure) {
		missing = append(missing, models.FieldLoanTenure)
	}
	if !f.LoanType.Valid() && !existing.Has(models.FieldLoanType) {
		missing = append(missing, models.FieldLoanType)
	}
	return missing
}

// DetectIntent classifies the utterance; apply beats eligibility beats question.
func DetectIntent(text string) models.Intent {
	text = strings.ToLower(text)
	switch {
	case containsAny(text, applyIntentWords...):
		return models.IntentApplyLoan
	case containsAny(text, eligibilityWords...):
		return models.IntentCheckEligibility
	case containsAny(text, questionIntentWords...):
		return models.IntentAskQuestion
	default:
		return models.IntentProvideInfo
	}
}

// ==========================
// Loan amount
// ==========================

func extractLoanAmount(text string) *float64 {
	for _, p := range loanAmountPatterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			if v, ok := scaled(m[1], p.scale); ok {
				return &v
			}
		}
	}

	if loc := ofLakhRe.FindStringSubmatchIndex(text); loc != nil {
		if strings.Contains(before(text, loc[0], 30), "loan") {
			if v, ok := scaled(text[loc[2]:loc[3]], lakh); ok {
				return &v
			}
		}
	}
	if loc := forCroreRe.FindStringSubmatchIndex(text); loc != nil {
		if strings.Contains(before(text, loc[0], 50), "loan") {
			if v, ok := scaled(text[loc[2]:loc[3]], crore); ok {
				return &v
			}
		}
	}

	if !containsAny(text, incomeWords...) {
		if v, ok := bareUnitAmount(text, bareLakhRe, lakh, 100); ok {
			return &v
		}
		if v, ok := bareUnitAmount(text, bareCroreRe, crore, 10); ok {
			return &v
		}
	}

	if strings.Contains(text, "loan") {
		for _, m := range largeNumberRe.FindAllStringSubmatch(text, -1) {
			if v, ok := parseNumber(m[1]); ok && v >= 100000 && v <= 100000000 {
				return &v
			}
		}
	}
	return nil
}

// bareUnitAmount accepts the first "N lakh"/"N crore" token when it sits near a
// borrowing word, or when N alone is a plausible loan size.
func bareUnitAmount(text string, re *regexp.Regexp, unit decimal.Decimal, plausibleMax float64) (float64, bool) {
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return 0, false
	}
	raw := text[loc[2]:loc[3]]
	n, ok := parseNumber(raw)
	if !ok {
		return 0, false
	}
	ctx := before(text, loc[0], 50) + " " + after(text, loc[1], 20)
	if containsAny(ctx, loanContextWords...) || (n >= 1 && n <= plausibleMax) {
		return scaled(raw, unit)
	}
	return 0, false
}

// ==========================
// Income
// ==========================

func extractIncome(text string) *float64 {
	if m := incomeKRe.FindStringSubmatch(text); m != nil {
		if v, ok := scaled(m[1], thousand); ok {
			return &v
		}
	}
	if m := kIncomeRe.FindStringSubmatch(text); m != nil {
		if v, ok := scaled(m[1], thousand); ok {
			return &v
		}
	}
	if m := incomeCurrencyRe.FindStringSubmatch(text); m != nil {
		if v, ok := parseNumber(m[1]); ok && v >= 10000 && v <= 1000000 {
			return &v
		}
	}
	if m := monthlyRe.FindStringSubmatch(text); m != nil {
		if m[2] != "" {
			if v, ok := scaled(m[1], thousand); ok {
				return &v
			}
		} else if v, ok := parseNumber(m[1]); ok && v >= 10000 && v <= 1000000 {
			return &v
		}
	}

	if !containsAny(text, borrowWords...) {
		if m := bareKRe.FindStringSubmatch(text); m != nil {
			if v, ok := scaled(m[1], thousand); ok {
				return &v
			}
		}
	}

	if containsAny(text, incomeWords...) {
		for _, loc := range mediumNumberRe.FindAllStringSubmatchIndex(text, -1) {
			v, ok := parseNumber(text[loc[2]:loc[3]])
			if !ok || v < 10000 || v > 500000 {
				continue
			}
			if containsAny(before(text, loc[0], 20)+" "+after(text, loc[1], 20), borrowWords...) {
				continue
			}
			return &v
		}
	}
	return nil
}

// ==========================
// Tenure
// ==========================

func extractTenure(text string) *int {
	for _, re := range tenureYearPatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			if readsAsAge(text, loc[2], yearTokenRe) {
				continue
			}
			if years, ok := parseInt(text[loc[2]:loc[3]]); ok && years >= 1 && years <= 30 {
				return &years
			}
		}
	}
	for _, re := range tenureMonthPatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			if readsAsAge(text, loc[2], monthTokenRe) {
				continue
			}
			if months, ok := parseInt(text[loc[2]:loc[3]]); ok && months >= 12 && months <= 360 {
				years := months / 12
				return &years
			}
		}
	}

	for _, loc := range yearTokenRe.FindAllStringSubmatchIndex(text, -1) {
		ctx := around(text, loc[0], loc[1], 15)
		if containsAny(ctx, ageContextWords...) || containsAny(ctx, employmentWords...) {
			continue
		}
		if !containsAny(ctx, tenureContextWords...) {
			continue
		}
		if years, ok := parseInt(text[loc[2]:loc[3]]); ok && years >= 1 && years <= 30 {
			return &years
		}
	}

	if loc := monthTokenRe.FindStringSubmatchIndex(text); loc != nil {
		if !containsAny(around(text, loc[0], loc[1], 15), employmentWords...) {
			if months, ok := parseInt(text[loc[2]:loc[3]]); ok && months >= 12 && months <= 360 {
				years := months / 12
				return &years
			}
		}
	}
	return nil
}

// readsAsAge reports whether the duration token starting at pos is the
// speaker's age: "N years old", or an age phrase within 15 characters.
func readsAsAge(text string, pos int, token *regexp.Regexp) bool {
	end := pos
	if loc := token.FindStringIndex(text[pos:]); loc != nil && loc[0] == 0 {
		end += loc[1]
	}
	if oldSuffixRe.MatchString(text[end:]) {
		return true
	}
	return containsAny(around(text, pos, end, 15), ageContextWords...)
}

// ==========================
// Age and employment
// ==========================

func extractAge(text string) *int {
	for _, re := range agePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if age, ok := parseInt(m[1]); ok && age >= 18 && age <= 100 {
				return &age
			}
		}
	}
	return nil
}

func extractEmploymentMonths(text string) *int {
	for _, re := range ageIndicators {
		if re.MatchString(text) {
			return nil
		}
	}

	for _, p := range employmentPatterns {
		n, ok := firstDuration(text, p)
		if !ok {
			continue
		}
		months := n
		if p.yearly {
			months = n * 12
		}
		if months >= 1 && months <= 600 {
			return &months
		}
	}
	return nil
}

func firstDuration(text string, p durationPattern) (int, bool) {
	if !p.bare {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			return 0, false
		}
		return parseInt(m[1])
	}
	// a bare duration in a message about the loan is its tenure
	if containsAny(text, tenureOnlyWords...) {
		return 0, false
	}
	for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
		if p.yearly && oldSuffixRe.MatchString(text[loc[1]:]) {
			continue
		}
		return parseInt(text[loc[2]:loc[3]])
	}
	return 0, false
}

func extractEmploymentStatus(text string) models.EmploymentStatus {
	switch {
	case containsAny(text, selfEmployedKeywords...):
		return models.EmploymentSelfEmployed
	case containsAny(text, unemployedKeywords...):
		return models.EmploymentUnemployed
	case containsAny(text, employedKeywords...):
		return models.EmploymentEmployed
	default:
		return models.EmploymentUnknown
	}
}

func extractLoanType(text string) models.LoanType {
	for _, rule := range loanTypeRules {
		if rule.re.MatchString(text) {
			return rule.loanType
		}
	}
	return models.LoanTypeUnset
}

// ==========================
// Existing obligations
// ==========================

func extractExistingLoansEMI(text string) *float64 {
	return firstInRange(text, existingEMIPatterns, 1000, 500000)
}

func extractCreditCardPayment(text string) *float64 {
	return firstInRange(text, creditCardPatterns, 500, 100000)
}

func firstInRange(text string, patterns []*regexp.Regexp, lo, hi float64) *float64 {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, ok := parseNumber(m[1]); ok && v >= lo && v <= hi {
				return &v
			}
		}
	}
	return nil
}

// ==========================
// Helpers
// ==========================

func scaled(raw string, unit decimal.Decimal) (float64, bool) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, false
	}
	if !d.IsPositive() {
		return 0, false
	}
	v, _ := d.Mul(unit).Float64()
	return v, true
}

func parseNumber(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	return v, err == nil
}

func parseInt(raw string) (int, bool) {
	v, err := strconv.Atoi(raw)
	return v, err == nil
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func before(text string, pos, n int) string {
	return text[max(0, pos-n):pos]
}

func after(text string, pos, n int) string {
	return text[pos:min(len(text), pos+n)]
}

func around(text string, start, end, n int) string {
	return text[max(0, start-n):min(len(text), end+n)]
}
