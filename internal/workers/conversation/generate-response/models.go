// internal/workers/conversation/generate-response/models.go
package generateresponse

import "github.com/Kathan1010/LoanAdviser/internal/models"

// EligibilityPrompt carries a computed verdict for the model to explain.
type EligibilityPrompt struct {
	SessionID   string
	Language    string
	Summary     models.LoanSummary
	Eligibility models.EligibilityResult
}

// SlotPrompt asks the model to phrase one question for a missing slot.
type SlotPrompt struct {
	SessionID string
	Language  string
	Slot      models.Slot
	Profile   models.Profile
	// Extracted is what the latest utterance supplied, used for acknowledgment.
	Extracted models.ExtractedFields
	History   []models.Message
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	SessionID   string  `json:"session_id,omitempty"`
}

type generateResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}
