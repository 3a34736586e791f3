// Package passstore keeps the CLI session in the user's pass(1) password
// store, encrypted with their GPG key.
package passstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/bnema/coffeeviz-cli/internal/ports"
	"github.com/spf13/viper"
)

const (
	entryKey     = "pass.entry"
	defaultEntry = "coffeeviz/session"
	notInStore   = "is not in the password store"
)

var ErrUnavailable = errors.New("pass command unavailable")

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

type sessionBlob struct {
	Credential string            `json:"credential"`
	Principal  *domain.Principal `json:"principal,omitempty"`
	SavedAt    time.Time         `json:"savedAt"`
}

type SessionStore struct {
	run   runFunc
	entry string
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore stores the session in the pass entry named by pass.entry.
func NewSessionStore(cfg *viper.Viper) *SessionStore {
	entry := defaultEntry
	if cfg != nil && strings.TrimSpace(cfg.GetString(entryKey)) != "" {
		entry = strings.TrimSpace(cfg.GetString(entryKey))
	}
	return &SessionStore{run: runPassCommand, entry: entry}
}

func (s *SessionStore) Entry() string {
	return s.entry
}

func (s *SessionStore) Load(ctx context.Context) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	stdout, stderr, err := s.run(ctx, "", "show", s.entry)
	if err != nil {
		if strings.Contains(stderr, notInStore) {
			return domain.Session{}, nil
		}
		return domain.Session{}, formatError("show", s.entry, err, stderr)
	}

	var blob sessionBlob
	if err := json.Unmarshal([]byte(strings.TrimSpace(stdout)), &blob); err != nil {
		return domain.Session{}, fmt.Errorf("decode session entry %q: %w", s.entry, err)
	}

	return domain.Session{Credential: blob.Credential, Principal: blob.Principal}, nil
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(sessionBlob{
		Credential: session.Credential,
		Principal:  session.Principal,
		SavedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode session entry: %w", err)
	}

	_, stderr, err := s.run(ctx, string(data)+"\n", "insert", "-m", "-f", s.entry)
	if err != nil {
		return formatError("insert", s.entry, err, stderr)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, stderr, err := s.run(ctx, "", "rm", "-f", s.entry)
	if err != nil && !strings.Contains(stderr, notInStore) {
		return formatError("rm", s.entry, err, stderr)
	}
	return nil
}

func runPassCommand(ctx context.Context, input string, args ...string) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(op string, entry string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("pass %s %q: %w", op, entry, err)
	}

	return fmt.Errorf("pass %s %q: %w: %s", op, entry, err, stderr)
}
