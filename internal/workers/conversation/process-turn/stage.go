// internal/workers/conversation/process-turn/stage.go
package processturn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kathan1010/LoanAdviser/internal/common/logger"
	"github.com/Kathan1010/LoanAdviser/internal/common/metrics"
	"github.com/Kathan1010/LoanAdviser/internal/common/retry"
	"github.com/Kathan1010/LoanAdviser/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// turn is the per-request pipeline context. It is discarded once the result is built.
type turn struct {
	sessionID  string
	started    time.Time
	normalized string
	profile    models.Profile
	log        logger.Logger
	tracer     trace.Tracer
	stages     []models.StageOutcome
}

// stageFunc produces a stage's value and its confidence.
type stageFunc[T any] func(ctx context.Context) (T, float64, error)

// runStage executes fn as one named stage. A failure, including a panic,
// yields fallback and is recorded with confidence 0; the error is returned
// so the caller can decide whether it is fatal.
func runStage[T any](ctx context.Context, t *turn, stage models.Stage, fallback T, fn stageFunc[T]) (T, error) {
	ctx, span := t.tracer.Start(ctx, "stage."+string(stage),
		trace.WithAttributes(attribute.String("session.id", t.sessionID)))
	defer span.End()

	start := time.Now()
	value, confidence, err := protect(ctx, fn)
	elapsed := time.Since(start)

	outcome := models.StageOutcome{
		Stage:      stage,
		Status:     models.StatusSuccess,
		Confidence: confidence,
		DurationMs: durationMs(elapsed),
	}
	if err != nil {
		value = fallback
		outcome.Status = models.StatusFailed
		outcome.Error = err.Error()
		outcome.Confidence = 0

		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			outcome.RetryCount = exhausted.Attempts - 1
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.log.Warn("stage failed, using fallback", map[string]interface{}{
			"sessionId":  t.sessionID,
			"stage":      stage,
			"error":      err.Error(),
			"durationMs": outcome.DurationMs,
		})
	} else {
		t.log.Debug("stage completed", map[string]interface{}{
			"sessionId":  t.sessionID,
			"stage":      stage,
			"confidence": confidence,
			"durationMs": outcome.DurationMs,
		})
	}

	t.record(outcome, elapsed)
	return value, err
}

func protect[T any](ctx context.Context, fn stageFunc[T]) (value T, confidence float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// skip records a stage that had nothing to do.
func (t *turn) skip(stage models.Stage, reason string) {
	t.log.Debug("stage skipped", map[string]interface{}{
		"sessionId": t.sessionID,
		"stage":     stage,
		"reason":    reason,
	})
	t.record(models.StageOutcome{Stage: stage, Status: models.StatusSkipped}, 0)
}

func (t *turn) record(outcome models.StageOutcome, elapsed time.Duration) {
	t.stages = append(t.stages, outcome)
	metrics.ObserveStage(string(outcome.Stage), string(outcome.Status), elapsed.Seconds())
}

// last returns the most recent outcome for adjustments such as retry counts.
func (t *turn) last() *models.StageOutcome {
	return &t.stages[len(t.stages)-1]
}

func (t *turn) failed() int {
	n := 0
	for _, s := range t.stages {
		if s.Status == models.StatusFailed {
			n++
		}
	}
	return n
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
