// Package session keeps each conversation's profile and history between turns.
package session

import (
	"context"
	"errors"

	"github.com/Kathan1010/LoanAdviser/internal/models"
)

var ErrNotFound = errors.New("SESSION_NOT_FOUND")

// Store persists sessions by id. Implementations must be safe for concurrent
// use; per-session ordering is the caller's job (see KeyedMutex).
type Store interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Put(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, id string) error
}

// LoadOrCreate returns the stored session or a fresh one when none exists.
func LoadOrCreate(ctx context.Context, store Store, id string) (*models.Session, bool, error) {
	s, err := store.Get(ctx, id)
	switch {
	case err == nil:
		return s, false, nil
	case errors.Is(err, ErrNotFound):
		return models.NewSession(id), true, nil
	default:
		return nil, false, err
	}
}

func clone(s *models.Session) *models.Session {
	out := *s
	out.Profile = s.Profile.Clone()
	out.History = append([]models.Message(nil), s.History...)
	return &out
}
