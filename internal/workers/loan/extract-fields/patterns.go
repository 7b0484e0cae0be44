// internal/workers/loan/extract-fields/patterns.go
package extractfields

import (
	"regexp"

	"github.com/Kathan1010/LoanAdviser/internal/models"

	"github.com/shopspring/decimal"
)

// Patterns run against lower-cased text with thousands separators removed.
// Within each list the order is the match priority.

var (
	lakh     = decimal.NewFromInt(100000)
	crore    = decimal.NewFromInt(10000000)
	thousand = decimal.NewFromInt(1000)
	one      = decimal.NewFromInt(1)
)

const num = `(\d+(?:\.\d+)?)`

type scaledPattern struct {
	re    *regexp.Regexp
	scale decimal.Decimal
}

var loanAmountPatterns = []scaledPattern{
	{regexp.MustCompile(`loan.*?` + num + `\s*(?:lakh|lac|l)s?\b`), lakh},
	{regexp.MustCompile(num + `\s*(?:lakh|lac|l)s?\s*(?:loan|for|of)`), lakh},
	{regexp.MustCompile(`loan.*?` + num + `\s*(?:crore|cr)s?\b`), crore},
	{regexp.MustCompile(num + `\s*(?:crore|cr)s?\s*(?:loan|for|of)`), crore},
	{regexp.MustCompile(`loan.*?(?:of|for|amount)?\s*(?:₹|rupees?|rs\.?)\s*` + num), one},
	{regexp.MustCompile(`loan.*?for.*?` + num + `\s*(?:lakh|lac|l)s?\b`), lakh},
	{regexp.MustCompile(`loan.*?for.*?` + num + `\s*(?:crore|cr)s?\b`), crore},
}

var (
	ofLakhRe      = regexp.MustCompile(`of\s+` + num + `\s*(?:lakh|lac|l)s?\b`)
	forCroreRe    = regexp.MustCompile(`for\s+.*?` + num + `\s*(?:crore|cr)s?\b`)
	bareLakhRe    = regexp.MustCompile(num + `\s*(?:lakh|lac|l)s?\b`)
	bareCroreRe   = regexp.MustCompile(num + `\s*(?:crore|cr)s?\b`)
	largeNumberRe = regexp.MustCompile(`\b(\d{5,})\b`)
)

var (
	incomeKRe        = regexp.MustCompile(`(?:income|salary|earning|earn|make|get).*?` + num + `\s*k\b`)
	kIncomeRe        = regexp.MustCompile(num + `\s*k\s*(?:income|salary|per month|monthly)`)
	incomeCurrencyRe = regexp.MustCompile(`(?:income|salary|earning|earn|make|get).*?(?:is|of|₹|rupees?|rs\.?)\s*` + num)
	monthlyRe        = regexp.MustCompile(num + `\s*(k|thousand)?\s*(?:per month|monthly|pm)`)
	bareKRe          = regexp.MustCompile(num + `\s*k\b`)
	mediumNumberRe   = regexp.MustCompile(`\b(\d{4,6})\b`)
)

var (
	tenureYearPatterns = []*regexp.Regexp{
		regexp.MustCompile(`loan.*?(?:for|of|with|tenure).*?(\d+)\s*(?:years?|yrs?|y)\b`),
		regexp.MustCompile(`tenure.*?(\d+)\s*(?:years?|yrs?)\b`),
		regexp.MustCompile(`repay.*?(?:in|for|over).*?(\d+)\s*(?:years?|yrs?)\b`),
		regexp.MustCompile(`(\d+)\s*(?:years?|yrs?)\s*(?:loan|tenure|repayment)`),
	}
	tenureMonthPatterns = []*regexp.Regexp{
		regexp.MustCompile(`loan.*?(?:for|of|with).*?(\d+)\s*(?:months?|mon)\b`),
		regexp.MustCompile(`tenure.*?(\d+)\s*(?:months?|mon)\b`),
	}
	yearTokenRe  = regexp.MustCompile(`(\d+)\s*(?:years?|yrs?|y)\b`)
	monthTokenRe = regexp.MustCompile(`(\d+)\s*(?:months?|mon)\b`)
	oldSuffixRe  = regexp.MustCompile(`^\s+old\b`)
)

var agePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:age|aged)\s*(?:is|of)?\s*(\d{1,3})\b`),
	regexp.MustCompile(`am\s+(\d{1,3})\s+(?:years?\s+)?old\b`),
	regexp.MustCompile(`(\d{1,3})\s+years?\s+old\b`),
	regexp.MustCompile(`(\d{1,3})\s+years?\s+of\s+age\b`),
}

// ageIndicators suppress employment-duration extraction for the whole utterance.
var ageIndicators = []*regexp.Regexp{
	regexp.MustCompile(`\d+\s+years?\s+old`),
	regexp.MustCompile(`age\s+(?:is|of)?\s*\d+`),
	regexp.MustCompile(`aged\s+\d+`),
	regexp.MustCompile(`\d+\s+years?\s+of\s+age`),
}

type durationPattern struct {
	re     *regexp.Regexp
	yearly bool
	// bare patterns carry no employment keyword of their own
	bare bool
}

var employmentPatterns = []durationPattern{
	{re: regexp.MustCompile(`(?:working|employed|experience|job).*?(?:for|since|of)?\s*(\d+)\s*(?:years?|yrs?|y)\b`), yearly: true},
	{re: regexp.MustCompile(`(?:working|employed|experience|job).*?(?:for|since|of)?\s*(\d+)\s*(?:months?|mon)\b`)},
	{re: regexp.MustCompile(`(\d+)\s*(?:years?|yrs?|y)\s*(?:of|in|at|with).*?(?:experience|employment|working|job)`), yearly: true},
	{re: regexp.MustCompile(`(\d+)\s*(?:months?|mon)\s*(?:of|in|at|with).*?(?:experience|employment|working|job)`)},
	{re: yearTokenRe, yearly: true, bare: true},
	{re: monthTokenRe, bare: true},
}

var (
	existingEMIPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:existing|current|old|previous).*?(?:loan|emi).*?(?:is|of|₹|rupees?|rs\.?)\s*` + num),
		regexp.MustCompile(`(?:loan|emi).*?(?:existing|current|old|previous).*?(?:is|of|₹|rupees?|rs\.?)\s*` + num),
		regexp.MustCompile(`(?:pay|paying|have|have a).*?` + num + `\s*(?:per month|monthly|pm|emi)`),
		regexp.MustCompile(`emi.*?(?:is|of|₹|rupees?|rs\.?)\s*` + num),
	}
	creditCardPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:credit card|card).*?(?:payment|minimum|min).*?(?:is|of|₹|rupees?|rs\.?)\s*` + num),
		regexp.MustCompile(`(?:credit card|card).*?` + num + `\s*(?:per month|monthly|pm)`),
	}
)

type loanTypeKeywords struct {
	loanType models.LoanType
	re       *regexp.Regexp
}

// Checked in order; the first product whose keywords appear wins.
var loanTypeRules = []loanTypeKeywords{
	{models.LoanTypeBusiness, wordsRe("business loan", "business", "commercial loan", "startup loan")},
	{models.LoanTypeEducation, wordsRe("education loan", "student loan", "study loan", "education", "student")},
	{models.LoanTypeCar, wordsRe("car loan", "vehicle loan", "auto loan", "car", "vehicle", "auto")},
	{models.LoanTypeHome, wordsRe("home loan", "housing loan", "house loan", "home", "house", "housing")},
	{models.LoanTypePersonal, wordsRe("personal loan", "personal", "unsecured loan")},
}

func wordsRe(words ...string) *regexp.Regexp {
	expr := `\b(?:`
	for i, w := range words {
		if i > 0 {
			expr += "|"
		}
		expr += regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(expr + `)\b`)
}

var (
	selfEmployedKeywords = []string{"self employed", "self-employed", "business owner", "own business", "freelancer", "consultant", "entrepreneur"}
	unemployedKeywords   = []string{"unemployed", "not working", "no job", "between jobs", "looking for work"}
	employedKeywords     = []string{"employed", "working", "job", "salary", "salaried", "employee", "work at", "work for", "company"}
)

var (
	incomeWords         = []string{"income", "salary", "earning"}
	borrowWords         = []string{"loan", "borrow"}
	loanContextWords    = []string{"loan", "for", "of", "want", "need", "looking", "borrow"}
	ageContextWords     = []string{"age", "aged", " am ", "years old", "yrs old"}
	tenureContextWords  = []string{"loan", "tenure", "repay", "emi", "for", "of"}
	tenureOnlyWords     = []string{"loan", "tenure", "repay", "emi"}
	employmentWords     = []string{"working", "employed", "experience", "job"}
	applyIntentWords    = []string{"apply", "want", "need", "looking for", "interested in", "get a loan"}
	eligibilityWords    = []string{"eligible", "eligibility", "can i get", "qualify", "qualification", "check"}
	questionIntentWords = []string{"what", "how", "why", "when", "where", "?", "explain", "tell me"}
)
