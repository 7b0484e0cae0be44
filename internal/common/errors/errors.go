// Package errors provides standardized error handling for the advisor pipeline and its job workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrCodeInvalidProfile ErrorCode = "INVALID_PROFILE"
	ErrCodeRuleTable      ErrorCode = "RULE_TABLE_CORRUPTED"

	ErrCodeTranscriptionFailed  ErrorCode = "TRANSCRIPTION_FAILED"
	ErrCodeTranscriptionTimeout ErrorCode = "TRANSCRIPTION_TIMEOUT"
	ErrCodeNormalizationFailed  ErrorCode = "NORMALIZATION_FAILED"
	ErrCodeExtractionFailed     ErrorCode = "EXTRACTION_FAILED"

	ErrCodeLLMTimeout               ErrorCode = "LLM_TIMEOUT"
	ErrCodeResponseGenerationFailed ErrorCode = "RESPONSE_GENERATION_FAILED"

	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeSessionCorrupted   ErrorCode = "SESSION_CORRUPTED"

	ErrCodeDatabaseConnectionFailed      ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeAuditWriteFailed              ErrorCode = "AUDIT_WRITE_FAILED"
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeOutcomePublishFailed          ErrorCode = "OUTCOME_PUBLISH_FAILED"
	ErrCodeWorkflowEngineFailed          ErrorCode = "WORKFLOW_ENGINE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func causeDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewInvalidRequestError creates a non-retryable validation error.
func NewInvalidRequestError(details string) *StandardError {
	return newError(ErrCodeInvalidRequest, "Invalid request", details, false, nil)
}

// NewInvalidProfileError is raised when a profile cannot be evaluated as given.
func NewInvalidProfileError(details string) *StandardError {
	return newError(ErrCodeInvalidProfile, "Invalid loan profile", details, false, nil)
}

// NewRuleTableError signals a missing or inconsistent rule set. It is fatal for the turn.
func NewRuleTableError(loanType string) *StandardError {
	return newError(ErrCodeRuleTable, "Loan rule table is corrupted", fmt.Sprintf("no usable rules for %q", loanType), false, nil)
}

func NewTranscriptionFailedError(err error) *StandardError {
	return newError(ErrCodeTranscriptionFailed, "Speech transcription failed", causeDetails(err), true, err)
}

func NewTranscriptionTimeoutError() *StandardError {
	return newError(ErrCodeTranscriptionTimeout, "Speech transcription timed out", "", true, nil)
}

func NewNormalizationFailedError(err error) *StandardError {
	return newError(ErrCodeNormalizationFailed, "Text normalization failed", causeDetails(err), false, err)
}

func NewExtractionFailedError(err error) *StandardError {
	return newError(ErrCodeExtractionFailed, "Field extraction failed", causeDetails(err), false, err)
}

func NewLLMTimeoutError() *StandardError {
	return newError(ErrCodeLLMTimeout, "LLM request timed out", "", true, nil)
}

func NewResponseGenerationFailedError(err error) *StandardError {
	return newError(ErrCodeResponseGenerationFailed, "Response generation failed", causeDetails(err), true, err)
}

// NewSessionStoreError creates a retryable session persistence error.
func NewSessionStoreError(op string, err error) *StandardError {
	e := newError(ErrCodeSessionStoreFailed, "Session store operation failed", causeDetails(err), true, err)
	e.Metadata = map[string]interface{}{"operation": op}
	return e
}

func NewSessionCorruptedError(sessionID string, err error) *StandardError {
	e := newError(ErrCodeSessionCorrupted, "Stored session could not be decoded", causeDetails(err), false, err)
	e.Metadata = map[string]interface{}{"sessionId": sessionID}
	return e
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection failed", causeDetails(err), true, err)
}

func NewAuditWriteFailedError(sink string, err error) *StandardError {
	e := newError(ErrCodeAuditWriteFailed, "Audit record could not be written", causeDetails(err), true, err)
	e.Metadata = map[string]interface{}{"sink": sink}
	return e
}

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection failed", causeDetails(err), true, err)
}

func NewOutcomePublishFailedError(err error) *StandardError {
	return newError(ErrCodeOutcomePublishFailed, "Eligibility outcome could not be published", causeDetails(err), true, err)
}

// NewWorkflowEngineError wraps a failed Zeebe command. Only transport
// failures are worth repeating.
func NewWorkflowEngineError(operation string, err error, retryable bool) *StandardError {
	e := newError(ErrCodeWorkflowEngineFailed, "Workflow engine command failed", causeDetails(err), retryable, err)
	e.Metadata = map[string]interface{}{"operation": operation}
	return e
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", causeDetails(err), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidRequest:                "INVALID_REQUEST",
	ErrCodeInvalidProfile:                "INVALID_PROFILE",
	ErrCodeRuleTable:                     "RULE_TABLE_CORRUPTED",
	ErrCodeTranscriptionFailed:           "TRANSCRIPTION_FAILED",
	ErrCodeTranscriptionTimeout:          "TRANSCRIPTION_TIMEOUT",
	ErrCodeNormalizationFailed:           "NORMALIZATION_FAILED",
	ErrCodeExtractionFailed:              "EXTRACTION_FAILED",
	ErrCodeLLMTimeout:                    "LLM_TIMEOUT",
	ErrCodeResponseGenerationFailed:      "RESPONSE_GENERATION_FAILED",
	ErrCodeSessionStoreFailed:            "SESSION_STORE_FAILED",
	ErrCodeSessionCorrupted:              "SESSION_CORRUPTED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeAuditWriteFailed:              "AUDIT_WRITE_FAILED",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeOutcomePublishFailed:          "OUTCOME_PUBLISH_FAILED",
	ErrCodeWorkflowEngineFailed:          "WORKFLOW_ENGINE_FAILED",
	ErrCodeInternal:                      "INTERNAL_ERROR",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeTranscriptionFailed,
		ErrCodeSessionStoreFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeAuditWriteFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeOutcomePublishFailed,
		ErrCodeWorkflowEngineFailed,
		ErrCodeResponseGenerationFailed:
		return 3

	case ErrCodeTranscriptionTimeout:
		return 2

	case ErrCodeLLMTimeout:
		return 1

	default:
		return 0 // business and validation errors are never retried
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// AsStandardError finds the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TRANSCRIPTION"), strings.Contains(codeStr, "NORMALIZATION"), strings.Contains(codeStr, "EXTRACTION"):
		return "NLU"
	case strings.Contains(codeStr, "LLM"), strings.Contains(codeStr, "RESPONSE"):
		return "AI"
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "DATABASE"), strings.Contains(codeStr, "AUDIT"), strings.Contains(codeStr, "ELASTICSEARCH"):
		return "STORAGE"
	case strings.Contains(codeStr, "OUTCOME"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "RULE"), strings.Contains(codeStr, "PROFILE"):
		return "RULES"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
