// internal/common/database/redis.go
package database

import (
	"context"
	"time"

	"github.com/Kathan1010/LoanAdviser/internal/common/config"
	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// SessionRedis is the connection the session store reads and writes through.
type SessionRedis struct {
	Client *redis.Client
}

func NewSessionRedis(cfg config.RedisConfig) *SessionRedis {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}
	return &SessionRedis{Client: redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     poolSize,
		MinIdleConns: poolSize / 2,
	})}
}

func (r *SessionRedis) Ping(ctx context.Context) error {
	if err := r.Client.Ping(ctx).Err(); err != nil {
		return apperrors.NewSessionStoreError("ping", err)
	}
	return nil
}

func (r *SessionRedis) Close() error {
	return r.Client.Close()
}
