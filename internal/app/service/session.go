package service

import (
	"context"

	"github.com/ikkim/minishop-backend/internal/db"
)

// SessionFactory hands out scoped sessions; *db.Gateway satisfies it.
type SessionFactory interface {
	WithSession(ctx context.Context, fn func(s *db.Session) error) error
}
