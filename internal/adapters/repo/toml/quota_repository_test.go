package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuotaRepository(t *testing.T, path string) *QuotaRepository {
	t.Helper()

	config := viper.New()
	config.Set("quota.path", path)

	repo, err := NewQuotaRepository(config)
	require.NoError(t, err)
	return repo
}

func TestQuotaRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newQuotaRepository(t, filepath.Join(t.TempDir(), "quota.toml"))
	captured := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	board := domain.QuotaBoard{
		CapturedAt: captured,
		Quotas: map[string]domain.Quota{
			"sql_parse": {
				Type:        "sql_parse",
				Limit:       100,
				Used:        30,
				ResetCycle:  "monthly",
				LastResetAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			},
			"ai_generate": {Type: "ai_generate", Limit: domain.UnlimitedQuota, Used: 7},
		},
	}

	require.NoError(t, repo.Save(context.Background(), board))

	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, board, got)
}

func TestQuotaRepositoryMissingFileReturnsErrNoQuotas(t *testing.T) {
	t.Parallel()

	repo := newQuotaRepository(t, filepath.Join(t.TempDir(), "quota.toml"))

	_, err := repo.Get(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoQuotas)
}

func TestQuotaRepositorySaveReplacesPreviousBoard(t *testing.T) {
	t.Parallel()

	repo := newQuotaRepository(t, filepath.Join(t.TempDir(), "quota.toml"))
	first := domain.QuotaBoard{
		CapturedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Quotas:     map[string]domain.Quota{"export": {Type: "export", Limit: 5, Used: 1}},
	}
	second := domain.QuotaBoard{
		CapturedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Quotas:     map[string]domain.Quota{"sql_parse": {Type: "sql_parse", Limit: 10, Used: 9}},
	}

	require.NoError(t, repo.Save(context.Background(), first))
	require.NoError(t, repo.Save(context.Background(), second))

	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestQuotaRepositoryFileIsOwnerOnly(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "quota.toml")
	repo := newQuotaRepository(t, path)

	require.NoError(t, repo.Save(context.Background(), domain.QuotaBoard{Quotas: map[string]domain.Quota{}}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestQuotaRepositoryMalformedTOMLReturnsError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "quota.toml")
	require.NoError(t, os.WriteFile(path, []byte("quotas = ["), 0o600))

	_, err := newQuotaRepository(t, path).Get(context.Background())
	assert.ErrorContains(t, err, "decode quota file")
}

func TestQuotaRepositoryFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "quota.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 7\nquotas = []\n"), 0o600))

	_, err := newQuotaRepository(t, path).Get(context.Background())
	assert.ErrorContains(t, err, "unsupported quota schema version")
}
