package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/domain"
)

// Navigator sends the user back to the login surface after the backend
// rejected the credential.
type Navigator interface {
	RedirectToLogin(ctx context.Context)
}

// RefreshSink receives the data of a successful quota refresh.
type RefreshSink interface {
	ApplyRefresh(ctx context.Context, data json.RawMessage) error
}

type QuotaRepository interface {
	Get(ctx context.Context) (domain.QuotaBoard, error)
	Save(ctx context.Context, board domain.QuotaBoard) error
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
