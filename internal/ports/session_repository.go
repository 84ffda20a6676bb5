package ports

import (
	"context"

	"github.com/bnema/networth-cli/internal/domain"
)

// SessionRepository persists the single current session across CLI
// invocations. Load returns domain.ErrAuthRequired when no session has
// been stored.
//
//go:generate mockgen -package=mocks -destination=mocks/session_repository.go -source=session_repository.go SessionRepository
type SessionRepository interface {
	Load(ctx context.Context) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}
