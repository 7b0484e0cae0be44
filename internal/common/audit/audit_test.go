// internal/common/audit/audit_test.go
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"
	"github.com/Kathan1010/LoanAdviser/internal/common/logger"
	"github.com/Kathan1010/LoanAdviser/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() TurnRecord {
	rec := NewTurnRecord("session-1")
	rec.Utterance = "I need a personal loan of 5 lakh"
	rec.NormalizedText = "I need a personal loan of 5 lakh"
	rec.Intent = models.IntentApplyLoan
	rec.NextSlot = models.SlotMonthlyIncome
	rec.Extracted = models.ExtractedFields{
		LoanAmountRequested: models.Float64(500000),
		LoanType:            models.LoanTypePersonal,
	}
	rec.Stages = []models.StageOutcome{
		{Stage: models.StageExtraction, Status: models.StatusSuccess, Confidence: 1},
		{Stage: models.StageEligibility, Status: models.StatusSkipped},
	}
	rec.ResponseText = "What is your monthly income?"
	rec.DurationMs = 12.5
	return rec
}

// ==========================
// Postgres
// ==========================

const insertPattern = `INSERT INTO conversation_audit \(id,session_id,utterance,normalized_text,language,intent,next_slot,extracted,eligibility,stages,response_text,duration_ms,created_at\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6,\$7,\$8,\$9,\$10,\$11,\$12,\$13\)`

func TestPostgresSink_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := sampleRecord()
	mock.ExpectExec(insertPattern).
		WithArgs(
			rec.ID, "session-1", rec.Utterance, rec.NormalizedText, "",
			"apply_loan", "monthly_income", sqlmock.AnyArg(), nil, sqlmock.AnyArg(),
			rec.ResponseText, 12.5, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sink := NewPostgresSink(db)
	require.NoError(t, sink.Record(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSink_RecordWithEligibility(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := sampleRecord()
	rec.Eligibility = &models.EligibilityResult{IsEligible: true, EligibleAmount: 500000}

	_, args, err := insertQuery(rec)
	require.NoError(t, err)
	require.Len(t, args, 13)
	eligibility, ok := args[8].(string)
	require.True(t, ok)
	assert.Contains(t, eligibility, `"eligible_amount":500000`)

	mock.ExpectExec(`INSERT INTO conversation_audit`).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, NewPostgresSink(db).Record(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSink_RecordError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO conversation_audit`).WillReturnError(errors.New("connection reset"))

	err = NewPostgresSink(db).Record(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAuditWriteFailed))

	stdErr, _ := apperrors.AsStandardError(err)
	assert.Equal(t, "postgres", stdErr.Metadata["sink"])
	assert.True(t, stdErr.Retryable)
}

func TestPostgresSink_Migrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS conversation_audit`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, NewPostgresSink(db).Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Elasticsearch
// ==========================

func newTestES(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticsearchSink_Record(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   []byte
	)
	client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	rec := sampleRecord()
	sink := NewElasticsearchSink(client, "loan-conversation-turns")
	require.NoError(t, sink.Record(context.Background(), rec))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/loan-conversation-turns/_doc/"+rec.ID, path)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "session-1", doc["session_id"])
	assert.Equal(t, "monthly_income", doc["next_slot"])
	assert.NotContains(t, doc, "eligibility")
}

func TestElasticsearchSink_RecordError(t *testing.T) {
	client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"mapper_parsing_exception"}`))
	})

	err := NewElasticsearchSink(client, "turns").Record(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAuditWriteFailed))
}

func TestElasticsearchSink_EnsureIndex(t *testing.T) {
	tests := []struct {
		name       string
		existsCode int
		createCode int
		wantCreate bool
		wantErr    bool
	}{
		{"already exists", http.StatusOK, 0, false, false},
		{"created", http.StatusNotFound, http.StatusOK, true, false},
		{"lost the race", http.StatusNotFound, http.StatusBadRequest, true, false},
		{"cluster refuses", http.StatusNotFound, http.StatusForbidden, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				mu      sync.Mutex
				created bool
				mapping []byte
			)
			client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/turns", r.URL.Path)
				switch r.Method {
				case http.MethodHead:
					w.WriteHeader(tt.existsCode)
				case http.MethodPut:
					mu.Lock()
					created = true
					mapping, _ = io.ReadAll(r.Body)
					mu.Unlock()
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(tt.createCode)
					_, _ = w.Write([]byte(`{}`))
				}
			})

			err := NewElasticsearchSink(client, "turns").EnsureIndex(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeElasticsearchConnectionFailed))
			} else {
				require.NoError(t, err)
			}

			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, tt.wantCreate, created)
			if tt.wantCreate {
				assert.True(t, json.Valid(mapping))
				assert.Contains(t, string(mapping), `"next_slot"`)
			}
		})
	}
}

// ==========================
// Composition
// ==========================

type recordingSink struct {
	records []TurnRecord
	err     error
}

func (s *recordingSink) Record(_ context.Context, rec TurnRecord) error {
	s.records = append(s.records, rec)
	return s.err
}

func TestMultiSink(t *testing.T) {
	ok := &recordingSink{}
	failing := &recordingSink{err: errors.New("disk full")}
	after := &recordingSink{}

	err := MultiSink{ok, failing, after}.Record(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "disk full"))

	assert.Len(t, ok.records, 1)
	assert.Len(t, failing.records, 1)
	assert.Len(t, after.records, 1, "a failing sink must not stop the others")

	assert.NoError(t, MultiSink{ok}.Record(context.Background(), sampleRecord()))
	assert.NoError(t, MultiSink{}.Record(context.Background(), sampleRecord()))
}

func TestLogSink(t *testing.T) {
	sink := NewLogSink(logger.NewTestLogger(t))
	assert.NoError(t, sink.Record(context.Background(), sampleRecord()))
}

func TestNewTurnRecord(t *testing.T) {
	a := NewTurnRecord("s")
	b := NewTurnRecord("s")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "s", a.SessionID)
	assert.False(t, a.CreatedAt.IsZero())
}
