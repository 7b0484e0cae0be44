// internal/workers/loan/sequence-questions/handler.go
package sequencequestions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"
	"github.com/Kathan1010/LoanAdviser/internal/common/logger"
	"github.com/Kathan1010/LoanAdviser/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "sequence-loan-questions"

	defaultTimeout = 5 * time.Second
)

// Handler lets a BPMN process gateway on the next question instead of
// re-implementing the asking order in the model.
type Handler struct {
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{logger: l, errHandler: apperrors.NewErrorHandler(l)}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errHandler.HandleJobError(ctx, client, job,
			apperrors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output := h.Execute(&input)

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
	}
}

func (h *Handler) Execute(input *Input) *Output {
	next := Next(input.Profile, input.History)
	h.logger.Debug("next slot", map[string]interface{}{
		"applicantId": input.ApplicantID,
		"slot":        string(next),
	})
	return &Output{
		ApplicantID: input.ApplicantID,
		NextSlot:    next,
		Remaining:   Remaining(input.Profile, input.History),
		Ready:       next == models.SlotReady,
	}
}
