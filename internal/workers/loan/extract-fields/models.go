// internal/workers/loan/extract-fields/models.go
package extractfields

import "github.com/Kathan1010/LoanAdviser/internal/models"

type Input struct {
	ApplicantID string         `json:"applicantId"`
	Text        string         `json:"text"`
	Profile     models.Profile `json:"profile"`
}

// Output returns the extraction together with the profile it was merged into,
// so a BPMN loop can feed Profile back into the next job.
type Output struct {
	ApplicantID   string                  `json:"applicantId"`
	Extraction    models.ExtractionResult `json:"extraction"`
	Profile       models.Profile          `json:"profile"`
	UpdatedFields []models.Field          `json:"updatedFields"`
	Complete      bool                    `json:"complete"`
}
