// internal/workers/loan/check-eligibility/models.go
package checkeligibility

import "github.com/Kathan1010/LoanAdviser/internal/models"

// Input is the job payload: an applicant reference plus a complete profile.
type Input struct {
	ApplicantID string         `json:"applicantId"`
	Profile     models.Profile `json:"profile"`
}

type Output struct {
	ApplicantID string                   `json:"applicantId"`
	Eligibility models.EligibilityResult `json:"eligibility"`
	Summary     models.LoanSummary       `json:"summary"`
}
