// Package generateresponse phrases the assistant's side of the conversation
// through a text generation API. It never decides what to ask or computes
// eligibility; it only words what it is handed.
package generateresponse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"
	commonhttp "github.com/Kathan1010/LoanAdviser/internal/common/http"
	"github.com/Kathan1010/LoanAdviser/internal/common/logger"
	"github.com/Kathan1010/LoanAdviser/internal/common/retry"
	"github.com/Kathan1010/LoanAdviser/internal/models"
)

var (
	ErrEmptyCompletion = errors.New("EMPTY_COMPLETION")
	ErrNothingToAsk    = errors.New("NOTHING_TO_ASK")
)

type Responder struct {
	config *Config
	client *commonhttp.Client
	logger logger.Logger
}

func New(config *Config, log logger.Logger) *Responder {
	if config == nil {
		config = LoadConfig()
	}
	client := commonhttp.NewClient(0)
	if config.APIKey != "" {
		client.WithHeader("Authorization", "Bearer "+config.APIKey)
	}
	return &Responder{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "responder"}),
	}
}

func (r *Responder) ExplainEligibility(ctx context.Context, p EligibilityPrompt) (string, error) {
	language := ResolveLanguage(p.Language, "")
	return r.generate(ctx, p.SessionID, withSystem(BuildEligibilityPrompt(p, language)))
}

// AskForSlot phrases one question for slot. SlotReady has nothing to ask.
func (r *Responder) AskForSlot(ctx context.Context, p SlotPrompt) (string, error) {
	language := ResolveLanguage(p.Language, lastUserMessage(p.History))

	var prompt string
	switch p.Slot {
	case models.SlotReady:
		return "", ErrNothingToAsk
	case models.SlotGreeting:
		prompt = BuildGreetingPrompt(language)
	case models.SlotExistingDebts:
		prompt = BuildExistingDebtsPrompt(p, language)
	case models.SlotEmploymentStatus:
		if p.Profile.Has(models.FieldMonthlyIncome) {
			prompt = BuildClarificationPrompt(p, language, r.config.HistoryTurns)
		} else {
			prompt = BuildEmploymentStatusPrompt(p, language)
		}
	default:
		prompt = BuildClarificationPrompt(p, language, r.config.HistoryTurns)
	}

	return r.generate(ctx, p.SessionID, withSystem(prompt))
}

func (r *Responder) generate(ctx context.Context, sessionID, prompt string) (string, error) {
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	policy := retry.Exponential(r.config.MaxAttempts, r.config.BaseDelay, 2*time.Second)
	policy.Retryable = retryable
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		r.logger.Warn("generation attempt failed", map[string]interface{}{
			"sessionId": sessionID,
			"attempt":   attempt,
			"error":     err.Error(),
		})
	}

	req := generateRequest{
		Prompt:      prompt,
		MaxTokens:   r.config.MaxTokens,
		Temperature: r.config.Temperature,
		SessionID:   sessionID,
	}

	text, attempts, err := retry.DoValue(ctx, policy, func(ctx context.Context) (string, error) {
		var resp generateResponse
		if err := r.client.PostJSON(ctx, r.config.GenAIBaseURL+"/api/ai/generate", req, &resp); err != nil {
			return "", err
		}
		text := strings.TrimSpace(resp.Text)
		if text == "" {
			return "", retry.Permanent(ErrEmptyCompletion)
		}
		return text, nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", apperrors.NewLLMTimeoutError()
		}
		return "", apperrors.NewResponseGenerationFailedError(fmt.Errorf("after %d attempts: %w", attempts, err))
	}
	return text, nil
}

// retryable skips client errors; a bad prompt will not improve by resending it.
func retryable(err error) bool {
	var statusErr *commonhttp.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return !errors.Is(err, context.Canceled)
}

func lastUserMessage(history []models.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleUser {
			return history[i].Content
		}
	}
	return ""
}
