// Package audit persists one record per conversation turn.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/Kathan1010/LoanAdviser/internal/common/logger"
	"github.com/Kathan1010/LoanAdviser/internal/models"

	"github.com/google/uuid"
)

// TurnRecord is the audit view of a processed turn.
type TurnRecord struct {
	ID             string                    `json:"id"`
	SessionID      string                    `json:"session_id"`
	Utterance      string                    `json:"utterance"`
	NormalizedText string                    `json:"normalized_text"`
	Language       string                    `json:"language,omitempty"`
	Intent         models.Intent             `json:"intent"`
	NextSlot       models.Slot               `json:"next_slot"`
	Extracted      models.ExtractedFields    `json:"extracted"`
	Missing        []models.Field            `json:"missing"`
	Eligibility    *models.EligibilityResult `json:"eligibility,omitempty"`
	Stages         []models.StageOutcome     `json:"stages"`
	ResponseText   string                    `json:"response_text"`
	DurationMs     float64                   `json:"duration_ms"`
	CreatedAt      time.Time                 `json:"created_at"`
}

// NewTurnRecord stamps a fresh id and creation time.
func NewTurnRecord(sessionID string) TurnRecord {
	return TurnRecord{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
	}
}

type Sink interface {
	Record(ctx context.Context, rec TurnRecord) error
}

// MultiSink writes to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Record(ctx context.Context, rec TurnRecord) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes a summary line per turn. It is the fallback when no store is configured.
type LogSink struct {
	logger logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log.WithFields(map[string]interface{}{"component": "audit"})}
}

func (s *LogSink) Record(_ context.Context, rec TurnRecord) error {
	s.logger.Info("turn audited", map[string]interface{}{
		"auditId":            rec.ID,
		"sessionId":          rec.SessionID,
		"intent":             string(rec.Intent),
		"nextSlot":           string(rec.NextSlot),
		"durationMs":         rec.DurationMs,
		"componentsExecuted": models.Succeeded(rec.Stages),
	})
	return nil
}
