package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--no-color"))
	err := root.Execute()
	return out.String(), err
}

// ==========================
// check
// ==========================

func TestCheckCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{
			name: "eligible personal loan",
			args: []string{"check", "--type", "personal", "--income", "50000", "--age", "30",
				"--employment-months", "24", "--amount", "500000", "--tenure", "5"},
			want: []string{"Personal Loan, 5 years", "eligible: ₹500,000"},
		},
		{
			name: "low income",
			args: []string{"check", "-t", "personal_loan", "--income", "10000", "--age", "25",
				"--employment-months", "12", "--amount", "200000", "--tenure", "3"},
			want: []string{"not eligible:", "Minimum income required: ₹15,000/month"},
		},
		{
			name:    "unknown loan type",
			args:    []string{"check", "--type", "boat", "--income", "50000", "--age", "30"},
			wantErr: true,
		},
		{
			name:    "missing required flag",
			args:    []string{"check", "--type", "home", "--age", "30"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestCheckCommand_JSON(t *testing.T) {
	out, err := execute(t, "", "check", "--type", "home", "--income", "80000", "--age", "35",
		"--employment-months", "36", "--json")
	require.NoError(t, err)

	var decoded struct {
		Summary map[string]interface{} `json:"summary"`
		Result  map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "home_loan", decoded.Summary["loan_type"])
	assert.Equal(t, 30.0, decoded.Result["tenure_years"])
	assert.Equal(t, false, decoded.Result["tenure_was_provided"])
}

// ==========================
// chat
// ==========================

func TestChatCommand(t *testing.T) {
	var messages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat", r.URL.Path)
		var req chatTurnRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "cli-session", req.SessionID)
		messages = append(messages, req.Message)

		w.Header().Set("Content-Type", "application/json")
		if len(messages) == 1 {
			_, _ = w.Write([]byte(`{"response":"Hello! How much would you like to borrow?","next_slot":"loan_amount"}`))
			return
		}
		_, _ = w.Write([]byte(`{"response":"Good news.","ready":true,"eligibility_result":{
			"is_eligible":true,"eligible_amount":500000,"suggested_emi":10746.95,"tenure_years":5,
			"rejection_reasons":[],"warnings":[]}}`))
	}))
	defer server.Close()

	out, err := execute(t, "hi\n\nno, nothing else\nexit\nignored\n",
		"chat", "-s", server.URL+"/", "--session", "cli-session")
	require.NoError(t, err)

	assert.Equal(t, []string{"hi", "no, nothing else"}, messages)
	assert.Contains(t, out, "session cli-session")
	assert.Contains(t, out, "How much would you like to borrow?")
	assert.Contains(t, out, "eligible: ₹500,000 at EMI ₹10,747 for 5 years")
}

func TestChatCommand_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"SESSION_STORE_FAILED"}`))
	}))
	defer server.Close()

	_, err := execute(t, "hello\n", "chat", "-s", server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestChatCommand_EOF(t *testing.T) {
	_, err := execute(t, "", "chat", "-s", "http://127.0.0.1:1")
	assert.NoError(t, err)
}
