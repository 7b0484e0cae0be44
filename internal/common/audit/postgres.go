// internal/common/audit/postgres.go
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"

	"github.com/Masterminds/squirrel"
)

const auditTable = "conversation_audit"

// Schema creates the audit table. JSON payloads are stored as jsonb.
const Schema = `CREATE TABLE IF NOT EXISTS conversation_audit (
	id              UUID PRIMARY KEY,
	session_id      TEXT NOT NULL,
	utterance       TEXT NOT NULL,
	normalized_text TEXT NOT NULL,
	language        TEXT,
	intent          TEXT NOT NULL,
	next_slot       TEXT NOT NULL,
	extracted       JSONB NOT NULL,
	eligibility     JSONB,
	stages          JSONB NOT NULL,
	response_text   TEXT NOT NULL,
	duration_ms     DOUBLE PRECISION NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS conversation_audit_session_idx ON conversation_audit (session_id, created_at);`

type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

// Migrate applies Schema.
func (s *PostgresSink) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return apperrors.NewDatabaseConnectionFailedError(err)
	}
	return nil
}

func (s *PostgresSink) Record(ctx context.Context, rec TurnRecord) error {
	query, args, err := insertQuery(rec)
	if err != nil {
		return apperrors.NewAuditWriteFailedError("postgres", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewAuditWriteFailedError("postgres", err)
	}
	return nil
}

func insertQuery(rec TurnRecord) (string, []interface{}, error) {
	extracted, err := json.Marshal(rec.Extracted)
	if err != nil {
		return "", nil, fmt.Errorf("marshal extracted fields: %w", err)
	}
	stages, err := json.Marshal(rec.Stages)
	if err != nil {
		return "", nil, fmt.Errorf("marshal stages: %w", err)
	}
	var eligibility interface{}
	if rec.Eligibility != nil {
		b, err := json.Marshal(rec.Eligibility)
		if err != nil {
			return "", nil, fmt.Errorf("marshal eligibility: %w", err)
		}
		eligibility = string(b)
	}

	return squirrel.Insert(auditTable).
		Columns(
			"id", "session_id", "utterance", "normalized_text", "language",
			"intent", "next_slot", "extracted", "eligibility", "stages",
			"response_text", "duration_ms", "created_at",
		).
		Values(
			rec.ID, rec.SessionID, rec.Utterance, rec.NormalizedText, rec.Language,
			string(rec.Intent), string(rec.NextSlot), string(extracted), eligibility, string(stages),
			rec.ResponseText, rec.DurationMs, rec.CreatedAt,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}
