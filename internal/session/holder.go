// Package session holds the current credential and principal for the
// process. The Holder is the single writer; every other component reads
// through it.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/bnema/coffeeviz-cli/internal/ports"
)

var errNilStore = errors.New("session store is nil")

type Holder struct {
	store  ports.SessionStore
	logger *slog.Logger

	mu    sync.RWMutex
	state domain.Session
	// ended is set by the first Invalidate after a SetSession or startup.
	ended bool
}

type Option func(*Holder)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Holder) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Load builds a Holder from the persisted session.
func Load(ctx context.Context, store ports.SessionStore, opts ...Option) (*Holder, error) {
	if store == nil {
		return nil, errNilStore
	}

	state, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	h := &Holder{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:  normalize(state),
	}
	for _, opt := range opts {
		opt(h)
	}

	return h, nil
}

func (h *Holder) Credential() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.state.Credential
}

func (h *Holder) Principal() *domain.Principal {
	return h.Snapshot().Principal
}

// Snapshot returns a copy of the whole session taken under one read lock.
func (h *Holder) Snapshot() domain.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return copySession(h.state)
}

// SetSession replaces credential and principal together and persists them.
// On a store failure the in-memory session is left unchanged.
func (h *Holder) SetSession(ctx context.Context, credential string, principal *domain.Principal) error {
	next := normalize(domain.Session{Credential: credential, Principal: principal})

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	h.state = next
	h.ended = false
	h.logger.Debug("session set", "principal", next.Principal.Name())

	return nil
}

// Invalidate clears the session. It may be called any number of times with
// the same effect; the returned bool is true only for the call that ended
// the current session, so concurrent rejections redirect once.
func (h *Holder) Invalidate(ctx context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ended {
		return false, nil
	}

	h.state = domain.Session{}
	h.ended = true

	if err := h.store.Clear(ctx); err != nil {
		return true, fmt.Errorf("clear session: %w", err)
	}

	h.logger.Info("session invalidated")
	return true, nil
}

func normalize(s domain.Session) domain.Session {
	s.Credential = strings.TrimSpace(s.Credential)
	if s.Credential == "" {
		return domain.Session{}
	}
	return copySession(s)
}

func copySession(s domain.Session) domain.Session {
	if s.Principal != nil {
		principal := *s.Principal
		s.Principal = &principal
	}
	return s
}
