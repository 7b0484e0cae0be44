// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kathan1010/LoanAdviser/internal/common/config"
	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"

	_ "github.com/lib/pq"
)

// AuditPostgres holds the pool the audit trail writes to. Opening it never
// dials; the first Ping does.
type AuditPostgres struct {
	DB *sql.DB
}

func OpenAuditPostgres(cfg config.PostgresConfig) (*AuditPostgres, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres %s/%s: %w", cfg.Host, cfg.Database, err)
	}

	lifetime := time.Duration(cfg.ConnMaxLifetime) * time.Second
	if lifetime <= 0 {
		lifetime = 5 * time.Minute
	}
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(lifetime)
	db.SetConnMaxIdleTime(lifetime)

	return &AuditPostgres{DB: db}, nil
}

func (p *AuditPostgres) Ping(ctx context.Context) error {
	if err := p.DB.PingContext(ctx); err != nil {
		return apperrors.NewDatabaseConnectionFailedError(err)
	}
	return nil
}

func (p *AuditPostgres) Close() error {
	return p.DB.Close()
}
