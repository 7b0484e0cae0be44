// internal/workers/conversation/generate-response/language.go
package generateresponse

import (
	"strings"
	"unicode"
)

const LanguageEnglish = "english"

var languageNames = map[string]string{
	"hi": "hindi",
	"en": "english",
	"ta": "tamil",
	"te": "telugu",
	"kn": "kannada",
	"ml": "malayalam",
	"bn": "bengali",
	"gu": "gujarati",
	"mr": "marathi",
	"pa": "punjabi",
	"ur": "urdu",
}

// DetectLanguage is a script check: Devanagari is read as Hindi, Tamil script as Tamil.
func DetectLanguage(text string) string {
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Devanagari, r):
			return "hindi"
		case unicode.Is(unicode.Tamil, r):
			return "tamil"
		}
	}
	return LanguageEnglish
}

// ResolveLanguage prefers an explicit hint, accepting codes or names, and
// falls back to detecting the script of text.
func ResolveLanguage(hint, text string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if name, ok := languageNames[hint]; ok {
		return name
	}
	if hint != "" {
		return hint
	}
	return DetectLanguage(text)
}
