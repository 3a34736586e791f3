package application

import (
	"github.com/bnema/coffeeviz-cli/internal/domain"
)

// QuotaView is a quota board plus whether it is older than the configured
// freshness window.
type QuotaView struct {
	Board domain.QuotaBoard
	Stale bool
}

// LogoutReport tells the caller whether the backend acknowledged the logout.
// The local session is cleared either way.
type LogoutReport struct {
	ServerErr error
}
