// internal/workers/conversation/process-turn/models.go
package processturn

import "github.com/Kathan1010/LoanAdviser/internal/models"

const (
	// AcknowledgmentText ends a conversation whose slots are all filled
	// when the verdict is not explained.
	AcknowledgmentText = "Thank you. Your information has been submitted for backend processing."
	ApologyText        = "I apologize, but I'm having trouble processing your request. Please try again."
)

type TurnRequest struct {
	SessionID    string `json:"session_id"`
	Text         string `json:"message"`
	LanguageHint string `json:"language,omitempty"`
	Audio        []byte `json:"-"`
}

type TurnResult struct {
	SessionID    string                    `json:"session_id"`
	ResponseText string                    `json:"response"`
	Language     string                    `json:"language,omitempty"`
	Intent       models.Intent             `json:"intent,omitempty"`
	Extracted    models.ExtractedFields    `json:"extracted_data"`
	Eligibility  *models.EligibilityResult `json:"eligibility_result"`
	Missing      []models.Field            `json:"missing_info"`
	NextSlot     models.Slot               `json:"next_slot"`
	Ready        bool                      `json:"ready"`
	NewSession   bool                      `json:"new_session"`
	Stages       []models.StageOutcome     `json:"pipeline_status"`
}

func apology(sessionID string, stages []models.StageOutcome) *TurnResult {
	return &TurnResult{
		SessionID:    sessionID,
		ResponseText: ApologyText,
		Missing:      []models.Field{},
		Stages:       nonNilStages(stages),
	}
}

func nonNilStages(s []models.StageOutcome) []models.StageOutcome {
	if s == nil {
		return []models.StageOutcome{}
	}
	return s
}
