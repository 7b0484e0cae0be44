// internal/api/handlers/chat_handler.go
package handlers

import (
	"context"
	"io"
	"strings"
	"time"

	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"
	"github.com/Kathan1010/LoanAdviser/internal/common/logger"
	processturn "github.com/Kathan1010/LoanAdviser/internal/workers/conversation/process-turn"

	"github.com/gofiber/fiber/v2"
)

// TurnProcessor is the conversation pipeline behind the chat endpoint.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, req processturn.TurnRequest) (*processturn.TurnResult, error)
}

type chatRequest struct {
	SessionID string `json:"session_id" form:"session_id"`
	Message   string `json:"message" form:"message"`
	Language  string `json:"language" form:"language"`
}

type chatResponse struct {
	*processturn.TurnResult
	NeedsClarification bool   `json:"needs_clarification"`
	Error              string `json:"error,omitempty"`
}

type ChatHandler struct {
	processor TurnProcessor
	timeout   time.Duration
	logger    logger.Logger
}

func NewChatHandler(processor TurnProcessor, timeout time.Duration, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		processor: processor,
		timeout:   timeout,
		logger:    log.WithFields(map[string]interface{}{"handler": "chat"}),
	}
}

// Chat handles one utterance. JSON bodies carry text; multipart bodies may
// add an "audio" file that is transcribed before extraction.
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if strings.TrimSpace(req.Text) == "" && len(req.Audio) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "message or audio is required",
		})
	}

	ctx := c.UserContext()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.processor.ProcessTurn(ctx, req)
	if err != nil {
		status := statusFor(err)
		h.logger.Error("turn failed", map[string]interface{}{
			"sessionId": req.SessionID,
			"status":    status,
			"error":     err.Error(),
		})
		resp := chatResponse{TurnResult: result, Error: errorCode(err)}
		if result == nil {
			return c.Status(status).JSON(fiber.Map{"error": resp.Error})
		}
		return c.Status(status).JSON(resp)
	}

	return c.JSON(chatResponse{
		TurnResult:         result,
		NeedsClarification: !result.Ready,
	})
}

func (h *ChatHandler) parse(c *fiber.Ctx) (processturn.TurnRequest, error) {
	var body chatRequest
	if err := c.BodyParser(&body); err != nil {
		return processturn.TurnRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req := processturn.TurnRequest{
		SessionID:    body.SessionID,
		Text:         body.Message,
		LanguageHint: body.Language,
	}

	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return req, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "invalid multipart body")
	}
	files := form.File["audio"]
	if len(files) == 0 {
		return req, nil
	}
	src, err := files[0].Open()
	if err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "failed to open audio")
	}
	defer src.Close()

	req.Audio, err = io.ReadAll(src)
	if err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "failed to read audio")
	}
	return req, nil
}

func statusFor(err error) int {
	stdErr, ok := apperrors.AsStandardError(err)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch stdErr.Code {
	case apperrors.ErrCodeInvalidRequest, apperrors.ErrCodeInvalidProfile:
		return fiber.StatusBadRequest
	case apperrors.ErrCodeSessionStoreFailed, apperrors.ErrCodeSessionCorrupted:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorCode(err error) string {
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return string(stdErr.Code)
	}
	return string(apperrors.ErrCodeInternal)
}
