// internal/workers/conversation/process-turn/handler.go
package processturn

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"
	"github.com/Kathan1010/LoanAdviser/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "process-loan-turn"

	defaultJobTimeout = 90 * time.Second
)

// JobInput lets a BPMN process relay a user message, for example from a
// messaging channel, through the same pipeline as the HTTP API.
type JobInput struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Language  string `json:"language,omitempty"`
}

// Handler runs one conversation turn per job.
type Handler struct {
	orchestrator *Orchestrator
	logger       logger.Logger
	errHandler   *apperrors.ErrorHandler
}

func NewHandler(orchestrator *Orchestrator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		orchestrator: orchestrator,
		logger:       l,
		errHandler:   apperrors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultJobTimeout)
	defer cancel()

	var input JobInput
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errHandler.HandleJobError(ctx, client, job,
			apperrors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

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

// Execute requires a session id so the process instance keeps one conversation.
func (h *Handler) Execute(ctx context.Context, input *JobInput) (*TurnResult, error) {
	if input.SessionID == "" {
		return nil, apperrors.NewInvalidRequestError("sessionId is required")
	}
	return h.orchestrator.ProcessTurn(ctx, TurnRequest{
		SessionID:    input.SessionID,
		Text:         input.Message,
		LanguageHint: input.Language,
	})
}
