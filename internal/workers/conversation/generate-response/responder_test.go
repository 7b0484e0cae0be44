package generateresponse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"
	"github.com/Kathan1010/LoanAdviser/internal/common/logger"
	"github.com/Kathan1010/LoanAdviser/internal/models"
)

// ==========================
// Test Helpers
// ==========================

type capturedRequest struct {
	Auth string
	Body generateRequest
}

func newGenAIServer(t *testing.T, statuses []int, text string) (*httptest.Server, *int32, chan capturedRequest) {
	t.Helper()
	var calls int32
	captured := make(chan capturedRequest, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/api/ai/generate", r.URL.Path)

		var body generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		captured <- capturedRequest{Auth: r.Header.Get("Authorization"), Body: body}

		if int(n) <= len(statuses) && statuses[n-1] != http.StatusOK {
			w.WriteHeader(statuses[n-1])
			_, _ = w.Write([]byte(`{"detail":"upstream"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(generateResponse{Text: text, Confidence: 0.9})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, captured
}

func testConfig(baseURL string) *Config {
	cfg := LoadConfig()
	cfg.GenAIBaseURL = baseURL
	cfg.APIKey = "test-key"
	cfg.BaseDelay = time.Millisecond
	cfg.Timeout = 2 * time.Second
	return cfg
}

func eligibleSummary() models.LoanSummary {
	return models.LoanSummary{
		LoanType:         models.LoanTypePersonal,
		IsEligible:       true,
		EligibleAmount:   500000,
		RequestedAmount:  500000,
		SuggestedEMI:     10746.95,
		TenureYears:      5,
		DTIRatio:         0.14,
		RejectionReasons: []string{},
		MonthlyIncome:    75000,
		Age:              30,
		EmploymentMonths: 24,
	}
}

// ==========================
// Generation
// ==========================

func TestExplainEligibility_Success(t *testing.T) {
	srv, calls, captured := newGenAIServer(t, nil, "  Congratulations, you qualify!  ")
	r := New(testConfig(srv.URL), logger.NewTestLogger(t))

	text, err := r.ExplainEligibility(context.Background(), EligibilityPrompt{
		SessionID:   "s-1",
		Summary:     eligibleSummary(),
		Eligibility: models.EligibilityResult{IsEligible: true, TenureWasProvided: true},
	})

	require.NoError(t, err)
	assert.Equal(t, "Congratulations, you qualify!", text)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	req := <-captured
	assert.Equal(t, "Bearer test-key", req.Auth)
	assert.Equal(t, "s-1", req.Body.SessionID)
	assert.Equal(t, 512, req.Body.MaxTokens)
	assert.Contains(t, req.Body.Prompt, SystemPrompt)
	assert.Contains(t, req.Body.Prompt, "Eligible: Yes")
	assert.Contains(t, req.Body.Prompt, "₹500,000")
	assert.NotContains(t, req.Body.Prompt, "IMPORTANT: Respond in")
}

func TestAskForSlot_RetriesServerErrors(t *testing.T) {
	srv, calls, _ := newGenAIServer(t, []int{http.StatusServiceUnavailable}, "What is your age?")
	r := New(testConfig(srv.URL), logger.NewNoOpLogger())

	text, err := r.AskForSlot(context.Background(), SlotPrompt{Slot: models.SlotAge})

	require.NoError(t, err)
	assert.Equal(t, "What is your age?", text)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestAskForSlot_ClientErrorIsNotRetried(t *testing.T) {
	srv, calls, _ := newGenAIServer(t, []int{http.StatusBadRequest, http.StatusBadRequest}, "unused")
	r := New(testConfig(srv.URL), logger.NewNoOpLogger())

	_, err := r.AskForSlot(context.Background(), SlotPrompt{Slot: models.SlotAge})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeResponseGenerationFailed))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestAskForSlot_GivesUpAfterMaxAttempts(t *testing.T) {
	srv, calls, _ := newGenAIServer(t, []int{500, 500, 500}, "unused")
	r := New(testConfig(srv.URL), logger.NewNoOpLogger())

	_, err := r.AskForSlot(context.Background(), SlotPrompt{Slot: models.SlotLoanType})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeResponseGenerationFailed))
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestAskForSlot_EmptyCompletion(t *testing.T) {
	srv, calls, _ := newGenAIServer(t, nil, "   ")
	r := New(testConfig(srv.URL), logger.NewNoOpLogger())

	_, err := r.AskForSlot(context.Background(), SlotPrompt{Slot: models.SlotAge})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestAskForSlot_ReadyHasNothingToAsk(t *testing.T) {
	r := New(testConfig("http://127.0.0.1:0"), logger.NewNoOpLogger())

	_, err := r.AskForSlot(context.Background(), SlotPrompt{Slot: models.SlotReady})

	assert.ErrorIs(t, err, ErrNothingToAsk)
}

func TestAskForSlot_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	r := New(cfg, logger.NewNoOpLogger())

	_, err := r.AskForSlot(context.Background(), SlotPrompt{Slot: models.SlotAge})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeLLMTimeout))
}

func TestAskForSlot_PromptSelection(t *testing.T) {
	income := models.Profile{MonthlyIncome: models.Float64(50000)}

	tests := []struct {
		name     string
		prompt   SlotPrompt
		contains string
	}{
		{"greeting", SlotPrompt{Slot: models.SlotGreeting}, "Greet the user warmly"},
		{"existing debts", SlotPrompt{Slot: models.SlotExistingDebts}, "existing financial obligations"},
		{"employment duration with income", SlotPrompt{Slot: models.SlotEmploymentStatus, Profile: income}, "How long have you been employed?"},
		{"employment status without income", SlotPrompt{Slot: models.SlotEmploymentStatus}, "salaried, self-employed"},
		{"plain slot", SlotPrompt{Slot: models.SlotMonthlyIncome}, "MISSING INFORMATION: monthly income"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, captured := newGenAIServer(t, nil, "question")
			r := New(testConfig(srv.URL), logger.NewNoOpLogger())

			_, err := r.AskForSlot(context.Background(), tt.prompt)
			require.NoError(t, err)

			req := <-captured
			assert.Contains(t, req.Body.Prompt, tt.contains)
		})
	}
}

// ==========================
// Prompts
// ==========================

func TestBuildClarificationPrompt_AlreadyAsked(t *testing.T) {
	p := SlotPrompt{
		Slot: models.SlotAge,
		History: []models.Message{
			{Role: models.RoleAssistant, Content: "Could you tell me your age?"},
			{Role: models.RoleUser, Content: "thirty something"},
		},
		Extracted: models.ExtractedFields{MonthlyIncome: models.Float64(40000)},
	}

	prompt := BuildClarificationPrompt(p, "english", 6)

	assert.Contains(t, prompt, "You have already asked for age")
	assert.Contains(t, prompt, "The user just provided: income.")
	assert.Contains(t, prompt, "USER: thirty something")
	assert.Contains(t, prompt, "IMPORTANT: Respond in english language.")
}

func TestBuildClarificationPrompt_IncomeFromHistory(t *testing.T) {
	p := SlotPrompt{
		Slot:    models.SlotEmploymentStatus,
		History: []models.Message{{Role: models.RoleUser, Content: "My salary is 50k"}},
	}

	prompt := BuildClarificationPrompt(p, "hindi", 6)

	assert.Contains(t, prompt, "MISSING INFORMATION: employment duration")
	assert.Contains(t, prompt, "IMPORTANT CONTEXT")
	assert.Contains(t, prompt, "Respond in hindi language.")
}

func TestBuildClarificationPrompt_HistoryWindow(t *testing.T) {
	var history []models.Message
	for i := 0; i < 10; i++ {
		history = append(history, models.Message{Role: models.RoleUser, Content: "old"})
	}
	history = append(history, models.Message{Role: models.RoleUser, Content: "latest"})

	prompt := BuildClarificationPrompt(SlotPrompt{Slot: models.SlotAge, History: history}, "english", 2)

	assert.Contains(t, prompt, "USER: latest")
	assert.Equal(t, 1, countOccurrences(prompt, "USER: old"))
}

func TestBuildEligibilityPrompt_Rejection(t *testing.T) {
	s := eligibleSummary()
	s.IsEligible = false
	s.RejectionReasons = []string{"Minimum age required: 21 years. Your age: 19 years"}

	prompt := BuildEligibilityPrompt(EligibilityPrompt{
		Summary:     s,
		Eligibility: models.EligibilityResult{Warnings: []string{"Requested amount exceeds"}},
	}, "tamil")

	assert.Contains(t, prompt, "Eligible: No")
	assert.Contains(t, prompt, "- Minimum age required: 21 years")
	assert.Contains(t, prompt, "IMPORTANT WARNINGS:\n- Requested amount exceeds")
	assert.Contains(t, prompt, "Respond in tamil language.")
}

func TestBuildEligibilityPrompt_DefaultTenureNote(t *testing.T) {
	prompt := BuildEligibilityPrompt(EligibilityPrompt{
		Summary:     eligibleSummary(),
		Eligibility: models.EligibilityResult{IsEligible: true},
	}, "english")

	assert.Contains(t, prompt, "standard tenure of 5 years")
	assert.Contains(t, prompt, "Do NOT ask for tenure again")
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}

// ==========================
// Language
// ==========================

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		hint, text, want string
	}{
		{"hi", "", "hindi"},
		{"Tamil", "", "tamil"},
		{"", "मुझे लोन चाहिए", "hindi"},
		{"", "எனக்கு கடன் வேண்டும்", "tamil"},
		{"", "I need a loan", "english"},
		{" EN ", "मुझे", "english"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveLanguage(tt.hint, tt.text), "hint=%q text=%q", tt.hint, tt.text)
	}
}
