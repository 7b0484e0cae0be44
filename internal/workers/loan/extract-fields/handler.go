// internal/workers/loan/extract-fields/handler.go
package extractfields

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"
	"github.com/Kathan1010/LoanAdviser/internal/common/logger"
	"github.com/Kathan1010/LoanAdviser/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "extract-loan-fields"
)

var (
	ErrEmptyText    = errors.New("EMPTY_TEXT")
	ErrTextTooLarge = errors.New("TEXT_TOO_LARGE")
)

type Handler struct {
	config     *Config
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		logger:     l,
		errHandler: apperrors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errHandler.HandleJobError(context.Background(), client, job,
			apperrors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, apperrors.NewExtractionFailedError(err))
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrEmptyText)
	}
	if len(text) > h.config.MaxTextSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrTextTooLarge, len(text), h.config.MaxTextSize)
	}

	extraction := Extract(text, input.Profile)
	profile := input.Profile.Clone()
	updated := profile.Apply(extraction.Fields)

	h.logger.Debug("fields extracted", map[string]interface{}{
		"applicantId": input.ApplicantID,
		"updated":     updated,
		"missing":     extraction.Missing,
		"intent":      string(extraction.Intent),
	})

	return &Output{
		ApplicantID:   input.ApplicantID,
		Extraction:    extraction,
		Profile:       profile,
		UpdatedFields: nonNilFields(updated),
		Complete:      len(missingFields(models.ExtractedFields{}, profile)) == 0,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func nonNilFields(f []models.Field) []models.Field {
	if f == nil {
		return []models.Field{}
	}
	return f
}
