// internal/workers/conversation/normalize-text/models.go
package normalizetext

const (
	ChangeUnicode         = "normalized_unicode"
	ChangeWhitespace      = "cleaned_whitespace"
	ChangeNumbers         = "normalized_numbers"
	ChangeCurrency        = "normalized_currency"
	ChangeTransliteration = "transliterated_to_devanagari"
)

type Normalization struct {
	NormalizedText string   `json:"normalized_text"`
	OriginalText   string   `json:"original_text"`
	ChangesMade    []string `json:"changes_made"`
	Confidence     float64  `json:"confidence"`
}
