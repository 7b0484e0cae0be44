// internal/api/handlers/eligibility_handler.go
package handlers

import (
	"encoding/json"
	"strings"

	"github.com/Kathan1010/LoanAdviser/internal/common/logger"
	"github.com/Kathan1010/LoanAdviser/internal/common/metrics"
	"github.com/Kathan1010/LoanAdviser/internal/models"
	checkeligibility "github.com/Kathan1010/LoanAdviser/internal/workers/loan/check-eligibility"

	"github.com/gofiber/fiber/v2"
)

type eligibilityResponse struct {
	Eligibility models.LoanSummary       `json:"eligibility"`
	Result      models.EligibilityResult `json:"result"`
	Message     string                   `json:"message"`
}

// EligibilityHandler evaluates a complete profile without a conversation.
type EligibilityHandler struct {
	logger logger.Logger
}

func NewEligibilityHandler(log logger.Logger) *EligibilityHandler {
	return &EligibilityHandler{
		logger: log.WithFields(map[string]interface{}{"handler": "eligibility"}),
	}
}

func (h *EligibilityHandler) Check(c *fiber.Ctx) error {
	body := c.Body()
	validation, err := checkeligibility.ProfileSchema.ValidateBytes(body)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}
	if !validation.Valid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid profile",
			"details": validation.Errors,
		})
	}

	var profile models.Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	result, err := checkeligibility.Evaluate(profile)
	if err != nil {
		h.logger.Error("eligibility evaluation failed", map[string]interface{}{
			"loanType": string(profile.LoanType),
			"error":    err.Error(),
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": errorCode(err),
		})
	}
	metrics.ObserveEligibility(string(profile.LoanType), result.IsEligible)

	message := result.ApprovalMessage
	if !result.IsEligible {
		message = strings.Join(result.RejectionReasons, "; ")
	}

	return c.JSON(eligibilityResponse{
		Eligibility: checkeligibility.Summary(profile, result),
		Result:      result,
		Message:     message,
	})
}
