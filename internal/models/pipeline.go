// internal/models/pipeline.go
package models

// Stage names one step of a conversation turn.
type Stage string

const (
	StageTranscription Stage = "stt"
	StageNormalization Stage = "normalization"
	StageExtraction    Stage = "extraction"
	StageProfileMerge  Stage = "profile_merge"
	StageSequencing    Stage = "sequencing"
	StageEligibility   Stage = "eligibility"
	StageResponse      Stage = "response"
	StageAudit         Stage = "audit"
)

type StageStatus string

const (
	StatusPending StageStatus = "pending"
	StatusRunning StageStatus = "running"
	StatusSuccess StageStatus = "success"
	StatusFailed  StageStatus = "failed"
	StatusSkipped StageStatus = "skipped"
)

// StageOutcome records how one stage of a turn went.
type StageOutcome struct {
	Stage      Stage       `json:"stage"`
	Status     StageStatus `json:"status"`
	Error      string      `json:"error,omitempty"`
	Confidence float64     `json:"confidence"`
	DurationMs float64     `json:"duration_ms"`
	RetryCount int         `json:"retry_count"`
}

// Succeeded counts the stages that finished with StatusSuccess.
func Succeeded(outcomes []StageOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == StatusSuccess {
			n++
		}
	}
	return n
}
