// Package transcribeaudio turns recorded speech into text through a
// Whisper-compatible transcription service.
package transcribeaudio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"
	commonhttp "github.com/Kathan1010/LoanAdviser/internal/common/http"
	"github.com/Kathan1010/LoanAdviser/internal/common/logger"
	"github.com/Kathan1010/LoanAdviser/internal/common/retry"
)

const domainPrompt = "This is a conversation about loan eligibility, EMI, interest rates, and financial information."

var (
	ErrEmptyAudio      = errors.New("EMPTY_AUDIO")
	ErrEmptyTranscript = errors.New("EMPTY_TRANSCRIPT")
)

var languageCodes = map[string]string{
	"hindi":     "hi",
	"english":   "en",
	"tamil":     "ta",
	"telugu":    "te",
	"kannada":   "kn",
	"malayalam": "ml",
	"bengali":   "bn",
	"gujarati":  "gu",
	"marathi":   "mr",
	"punjabi":   "pa",
	"urdu":      "ur",
}

// LanguageCode maps a language name or code to the code the service expects.
func LanguageCode(hint string) (string, bool) {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if code, ok := languageCodes[hint]; ok {
		return code, true
	}
	for _, code := range languageCodes {
		if code == hint {
			return code, true
		}
	}
	return "", false
}

type Transcriber struct {
	config *Config
	client *commonhttp.Client
	logger logger.Logger
}

func New(config *Config, log logger.Logger) *Transcriber {
	if config == nil {
		config = LoadConfig()
	}
	return &Transcriber{
		config: config,
		client: commonhttp.NewClient(config.Timeout).WithHeader("Authorization", bearer(config.APIKey)),
		logger: log.WithFields(map[string]interface{}{"component": "transcriber"}),
	}
}

// Transcribe makes up to MaxAttempts calls with a fixed pause between them.
// An empty transcript is not retried.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, languageHint string) (*Transcription, error) {
	if len(audio) == 0 {
		return nil, apperrors.NewTranscriptionFailedError(ErrEmptyAudio)
	}

	code, _ := LanguageCode(languageHint)
	body, contentType, err := encodeRequest(audio, t.config.Model, code)
	if err != nil {
		return nil, apperrors.NewTranscriptionFailedError(err)
	}

	policy := retry.Fixed(t.config.MaxAttempts, t.config.Backoff)
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		t.logger.Warn("transcription attempt failed", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
			"waitMs":  wait.Milliseconds(),
		})
	}

	resp, attempts, err := retry.DoValue(ctx, policy, func(ctx context.Context) (*whisperResponse, error) {
		var out whisperResponse
		if err := t.client.PostMultipart(ctx, t.config.BaseURL+"/v1/audio/transcriptions", contentType, bytes.NewReader(body), &out); err != nil {
			return nil, err
		}
		if strings.TrimSpace(out.Text) == "" {
			return nil, retry.Permanent(ErrEmptyTranscript)
		}
		return &out, nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewTranscriptionTimeoutError()
		}
		return nil, apperrors.NewTranscriptionFailedError(err)
	}

	result := &Transcription{
		Text:       strings.TrimSpace(resp.Text),
		Language:   resp.Language,
		Confidence: confidence(resp),
		Segments:   len(resp.Segments),
		Attempts:   attempts,
	}
	if result.Language == "" {
		result.Language = "unknown"
	}

	t.logger.Info("transcription succeeded", map[string]interface{}{
		"characters": len(result.Text),
		"language":   result.Language,
		"attempts":   attempts,
	})
	return result, nil
}

// confidence is one minus the mean no-speech probability, 0.9 without segments.
func confidence(r *whisperResponse) float64 {
	if len(r.Segments) == 0 {
		return 0.9
	}
	var sum float64
	for _, s := range r.Segments {
		if s.NoSpeechProb == nil {
			sum += 0.5
			continue
		}
		sum += *s.NoSpeechProb
	}
	return 1 - sum/float64(len(r.Segments))
}

func encodeRequest(audio []byte, model, language string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", "audio.mp3")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", err
	}

	fields := map[string]string{
		"model":           model,
		"prompt":          domainPrompt,
		"response_format": "verbose_json",
	}
	if language != "" {
		fields["language"] = language
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func bearer(key string) string {
	if key == "" {
		return ""
	}
	return "Bearer " + key
}
