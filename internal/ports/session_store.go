package ports

import (
	"context"

	"github.com/bnema/coffeeviz-cli/internal/domain"
)

// SessionStore persists the session between runs. Load on an empty store
// returns a zero Session and no error.
type SessionStore interface {
	Load(ctx context.Context) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}
