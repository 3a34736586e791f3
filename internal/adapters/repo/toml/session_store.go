package toml

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/bnema/coffeeviz-cli/internal/ports"
	"github.com/spf13/viper"
)

const (
	sessionPathKey  = "session.path"
	sessionFileName = "session.toml"
	sessionLabel    = "session"
)

// SessionStore keeps the credential and principal in session.toml, readable
// only by the owner.
type SessionStore struct {
	path string
	mu   *sync.RWMutex
	now  func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

func NewSessionStore(cfg *viper.Viper) (*SessionStore, error) {
	path, err := resolvePath(cfg, sessionPathKey, sessionFileName)
	if err != nil {
		return nil, err
	}

	return &SessionStore{path: path, mu: lockForPath(path), now: time.Now}, nil
}

func (s *SessionStore) Path() string {
	return s.path
}

// Load returns the stored session, or an empty one when none was saved.
func (s *SessionStore) Load(ctx context.Context) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var file sessionFileSchema
	found, err := readTOMLFile(s.path, sessionLabel, &file)
	if err != nil || !found {
		return domain.Session{}, err
	}
	if err := validateVersion(sessionLabel, file.Version); err != nil {
		return domain.Session{}, err
	}

	return fromSessionSchema(file), nil
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return writeTOMLFile(s.path, sessionLabel, toSessionSchema(session, s.now()))
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return removeFile(s.path, sessionLabel)
}

func toSessionSchema(session domain.Session, savedAt time.Time) sessionFileSchema {
	file := sessionFileSchema{
		Version:    currentSchemaVersion,
		Credential: session.Credential,
		SavedAt:    formatTime(savedAt),
	}
	if session.Principal != nil {
		file.Principal = &principalSchema{
			ID:          session.Principal.ID,
			Username:    session.Principal.Username,
			DisplayName: session.Principal.DisplayName,
		}
	}
	return file
}

func fromSessionSchema(file sessionFileSchema) domain.Session {
	session := domain.Session{Credential: file.Credential}
	if file.Principal != nil {
		session.Principal = &domain.Principal{
			ID:          file.Principal.ID,
			Username:    file.Principal.Username,
			DisplayName: file.Principal.DisplayName,
		}
	}
	return session
}
