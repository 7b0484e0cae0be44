// internal/workers/loan/check-eligibility/handler.go
package checkeligibility

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"
	"github.com/Kathan1010/LoanAdviser/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "check-loan-eligibility"
)

// Handler exposes the rule engine as a Zeebe service task so BPMN loan
// processes can evaluate a complete profile without a conversation.
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

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := DecodeInput([]byte(job.Variables))
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

// DecodeInput validates raw job variables against the input schema before decoding.
func DecodeInput(vars []byte) (*Input, error) {
	result, err := inputSchema.ValidateBytes(vars)
	if err != nil {
		return nil, apperrors.NewInvalidRequestError(err.Error())
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidRequestError(result.Error())
	}

	var input Input
	if err := json.Unmarshal(vars, &input); err != nil {
		return nil, apperrors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	result, err := Evaluate(input.Profile)
	if err != nil {
		return nil, err
	}

	h.logger.Info("eligibility evaluated", map[string]interface{}{
		"applicantId":    input.ApplicantID,
		"loanType":       string(input.Profile.LoanType),
		"eligible":       result.IsEligible,
		"eligibleAmount": result.EligibleAmount,
		"dti":            result.DTIRatio,
		"rejections":     len(result.RejectionReasons),
	})

	return &Output{
		ApplicantID: input.ApplicantID,
		Eligibility: result,
		Summary:     Summary(input.Profile, result),
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
