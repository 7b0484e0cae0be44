// Package normalizetext cleans user text before field extraction: unicode
// composition, whitespace, spelled-out numbers, currency markers and, for
// Hindi speakers, common romanized particles.
package normalizetext

import (
	"context"
	"regexp"
	"strings"

	"github.com/Kathan1010/LoanAdviser/internal/common/logger"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	numberWordRe   = regexp.MustCompile(`(?i)\b(zero|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|twenty|thirty|forty|fifty|sixty|seventy|eighty|ninety)\b`)
	magnitudeAhead = regexp.MustCompile(`(?i)^\s+(?:thousand|lakh|crore|hundred)`)

	numberWords = map[string]string{
		"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
		"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
		"ten": "10", "eleven": "11", "twelve": "12", "thirteen": "13",
		"fourteen": "14", "fifteen": "15", "sixteen": "16", "seventeen": "17",
		"eighteen": "18", "nineteen": "19", "twenty": "20", "thirty": "30",
		"forty": "40", "fifty": "50", "sixty": "60", "seventy": "70",
		"eighty": "80", "ninety": "90",
	}

	currencyRules = []struct {
		re   *regexp.Regexp
		repl string
	}{
		{regexp.MustCompile(`(?i)\brs\.\s*`), "₹"},
		{regexp.MustCompile(`(?i)\brs\s+`), "₹"},
		{regexp.MustCompile(`(?i)\brupees?\s+`), "₹"},
		{regexp.MustCompile(`(?i)([^\w\s])\s+rs\b`), "${1}₹"},
		{regexp.MustCompile(`(?i)\binr\s+`), "₹"},
	}

	devanagari = map[string]string{
		"hai":   "है",
		"main":  "में",
		"ke":    "के",
		"ki":    "की",
		"ka":    "का",
		"ko":    "को",
		"se":    "से",
		"mein":  "में",
		"hain":  "हैं",
		"nahi":  "नहीं",
		"nahin": "नहीं",
	}
)

type Normalizer struct {
	logger logger.Logger
}

func New(log logger.Logger) *Normalizer {
	return &Normalizer{
		logger: log.WithFields(map[string]interface{}{"component": "normalizer"}),
	}
}

// Normalize is idempotent: normalizing its own output changes nothing.
func (n *Normalizer) Normalize(ctx context.Context, text, languageHint string) (*Normalization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var changes []string

	out := norm.NFC.String(text)
	if out != text {
		changes = append(changes, ChangeUnicode)
	}

	cleaned := strings.TrimSpace(whitespaceRe.ReplaceAllString(out, " "))
	if cleaned != out {
		changes = append(changes, ChangeWhitespace)
	}

	numbers := replaceNumberWords(cleaned)
	if numbers != cleaned {
		changes = append(changes, ChangeNumbers)
	}

	currency := normalizeCurrency(numbers)
	if currency != numbers {
		changes = append(changes, ChangeCurrency)
	}

	out = currency
	if isHindi(languageHint) {
		if t := transliterate(out); t != out {
			changes = append(changes, ChangeTransliteration)
			out = t
		}
	}

	if len(changes) > 0 {
		n.logger.Debug("text normalized", map[string]interface{}{
			"changes": changes,
		})
	}

	confidence := 1.0
	if len(changes) > 0 {
		confidence = 0.95
	}

	return &Normalization{
		NormalizedText: out,
		OriginalText:   text,
		ChangesMade:    nonNil(changes),
		Confidence:     confidence,
	}, nil
}

// replaceNumberWords turns "five years" into "5 years" but leaves
// "fifty thousand" alone so the extractor sees the magnitude word.
func replaceNumberWords(text string) string {
	matches := numberWordRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		if magnitudeAhead.MatchString(text[m[1]:]) {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(numberWords[strings.ToLower(text[m[0]:m[1]])])
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func normalizeCurrency(text string) string {
	for _, r := range currencyRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return text
}

// transliterate swaps romanized particles for Devanagari. A Caser is not
// safe for concurrent use, so each call gets its own.
func transliterate(text string) string {
	lower := cases.Lower(language.Und)
	words := strings.Fields(text)
	for i, w := range words {
		if d, ok := devanagari[lower.String(w)]; ok {
			words[i] = d
		}
	}
	return strings.Join(words, " ")
}

func isHindi(hint string) bool {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "hindi", "hi":
		return true
	}
	return false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
