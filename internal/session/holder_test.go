package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/bnema/coffeeviz-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func mockAnyContext() interface{} {
	return mock.MatchedBy(func(context.Context) bool { return true })
}

func loadedHolder(t *testing.T, initial domain.Session) (*Holder, *mocks.MockSessionStore) {
	t.Helper()

	store := mocks.NewMockSessionStore(t)
	store.EXPECT().Load(mockAnyContext()).Return(initial, nil).Once()

	h, err := Load(context.Background(), store)
	require.NoError(t, err)
	return h, store
}

func TestLoadExposesPersistedSession(t *testing.T) {
	h, _ := loadedHolder(t, domain.Session{
		Credential: " token-1 ",
		Principal:  &domain.Principal{ID: 3, Username: "ada"},
	})

	assert.Equal(t, "token-1", h.Credential())
	assert.Equal(t, "ada", h.Principal().Username)
}

func TestLoadDropsPrincipalWithoutCredential(t *testing.T) {
	h, _ := loadedHolder(t, domain.Session{Principal: &domain.Principal{Username: "ghost"}})

	assert.Equal(t, domain.Session{}, h.Snapshot())
}

func TestLoadWrapsStoreError(t *testing.T) {
	store := mocks.NewMockSessionStore(t)
	store.EXPECT().Load(mockAnyContext()).Return(domain.Session{}, errors.New("disk on fire")).Once()

	_, err := Load(context.Background(), store)
	require.Error(t, err)
	assert.ErrorContains(t, err, "load session: disk on fire")

	_, err = Load(context.Background(), nil)
	assert.ErrorIs(t, err, errNilStore)
}

func TestInvalidateIsIdempotent(t *testing.T) {
	h, store := loadedHolder(t, domain.Session{Credential: "token-1", Principal: &domain.Principal{Username: "ada"}})
	store.EXPECT().Clear(mockAnyContext()).Return(nil).Once()

	ended, err := h.Invalidate(context.Background())
	require.NoError(t, err)
	assert.True(t, ended)
	once := h.Snapshot()

	ended, err = h.Invalidate(context.Background())
	require.NoError(t, err)
	assert.False(t, ended)

	assert.Equal(t, once, h.Snapshot())
	assert.Equal(t, "", h.Credential())
	assert.Nil(t, h.Principal())
}

func TestInvalidateWithoutCredentialStillEndsOnce(t *testing.T) {
	h, store := loadedHolder(t, domain.Session{})
	store.EXPECT().Clear(mockAnyContext()).Return(nil).Once()

	ended, err := h.Invalidate(context.Background())
	require.NoError(t, err)
	assert.True(t, ended)

	ended, err = h.Invalidate(context.Background())
	require.NoError(t, err)
	assert.False(t, ended)
}

func TestInvalidateReportsClearFailureButClearsMemory(t *testing.T) {
	h, store := loadedHolder(t, domain.Session{Credential: "token-1"})
	store.EXPECT().Clear(mockAnyContext()).Return(errors.New("locked")).Once()

	ended, err := h.Invalidate(context.Background())
	assert.True(t, ended)
	assert.ErrorContains(t, err, "clear session: locked")
	assert.Equal(t, "", h.Credential())
}

func TestConcurrentInvalidateEndsSessionOnce(t *testing.T) {
	h, store := loadedHolder(t, domain.Session{Credential: "token-1"})
	store.EXPECT().Clear(mockAnyContext()).Return(nil).Once()

	var ended atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := h.Invalidate(context.Background())
			assert.NoError(t, err)
			if ok {
				ended.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ended.Load())
}

func TestSetSessionPersistsAndRearmsInvalidation(t *testing.T) {
	h, store := loadedHolder(t, domain.Session{})
	principal := &domain.Principal{ID: 9, Username: "grace"}

	store.EXPECT().Clear(mockAnyContext()).Return(nil).Twice()
	store.EXPECT().Save(mockAnyContext(), domain.Session{Credential: "token-2", Principal: principal}).Return(nil).Once()

	ended, err := h.Invalidate(context.Background())
	require.NoError(t, err)
	require.True(t, ended)

	require.NoError(t, h.SetSession(context.Background(), "token-2", principal))
	assert.Equal(t, "token-2", h.Credential())

	principal.Username = "mutated"
	assert.Equal(t, "grace", h.Principal().Username, "holder keeps its own copy")

	ended, err = h.Invalidate(context.Background())
	require.NoError(t, err)
	assert.True(t, ended)
}

func TestSetSessionStoreFailureKeepsPreviousSession(t *testing.T) {
	h, store := loadedHolder(t, domain.Session{Credential: "token-1"})
	store.EXPECT().Save(mockAnyContext(), mock.Anything).Return(errors.New("read-only")).Once()

	err := h.SetSession(context.Background(), "token-2", &domain.Principal{Username: "x"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "save session: read-only")
	assert.Equal(t, "token-1", h.Credential())
	assert.Nil(t, h.Principal())
}
