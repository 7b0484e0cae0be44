// internal/workers/loan/sequence-questions/models.go
package sequencequestions

import "github.com/Kathan1010/LoanAdviser/internal/models"

type Input struct {
	ApplicantID string           `json:"applicantId"`
	Profile     models.Profile   `json:"profile"`
	History     []models.Message `json:"history"`
}

type Output struct {
	ApplicantID string        `json:"applicantId"`
	NextSlot    models.Slot   `json:"nextSlot"`
	Remaining   []models.Slot `json:"remaining"`
	Ready       bool          `json:"ready"`
}
