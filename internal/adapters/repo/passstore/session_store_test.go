package passstore

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionStoreUsesConfiguredEntry(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "coffeeviz/session", NewSessionStore(nil).Entry())

	cfg := viper.New()
	cfg.Set("pass.entry", " work/cvz ")
	assert.Equal(t, "work/cvz", NewSessionStore(cfg).Entry())
}

func TestSaveUsesPassInsertWithJSONEntry(t *testing.T) {
	t.Parallel()

	called := false
	store := &SessionStore{
		entry: "coffeeviz/session",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			called = true
			assert.Equal(t, []string{"insert", "-m", "-f", "coffeeviz/session"}, args)
			assert.Contains(t, input, `"credential":"tok"`)
			assert.Contains(t, input, `"username":"ada"`)
			return "", "", nil
		},
	}

	err := store.Save(context.Background(), domain.Session{
		Credential: "tok",
		Principal:  &domain.Principal{ID: 1, Username: "ada"},
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestLoadDecodesPassShowOutput(t *testing.T) {
	t.Parallel()

	store := &SessionStore{
		entry: "coffeeviz/session",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"show", "coffeeviz/session"}, args)
			assert.Empty(t, input)
			return `{"credential":"tok","principal":{"id":3,"username":"ada"}}` + "\n", "", nil
		},
	}

	session, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", session.Credential)
	require.NotNil(t, session.Principal)
	assert.Equal(t, int64(3), session.Principal.ID)
}

func TestLoadMissingEntryIsEmptySession(t *testing.T) {
	t.Parallel()

	store := &SessionStore{
		entry: "coffeeviz/session",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "Error: coffeeviz/session is not in the password store.", errors.New("exit status 1")
		},
	}

	session, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, session.LoggedIn())
}

func TestLoadReturnsClearError(t *testing.T) {
	t.Parallel()

	store := &SessionStore{
		entry: "coffeeviz/session",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "gpg: decryption failed: No secret key", errors.New("exit status 2")
		},
	}

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "pass show")
	assert.ErrorContains(t, err, "coffeeviz/session")
	assert.ErrorContains(t, err, "No secret key")
}

func TestClearUsesPassRemoveAndIgnoresMissingEntry(t *testing.T) {
	t.Parallel()

	var calls [][]string
	store := &SessionStore{
		entry: "coffeeviz/session",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			calls = append(calls, args)
			return "", "Error: coffeeviz/session is not in the password store.", errors.New("exit status 1")
		},
	}

	require.NoError(t, store.Clear(context.Background()))
	assert.Equal(t, [][]string{{"rm", "-f", "coffeeviz/session"}}, calls)
}
