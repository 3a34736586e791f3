package toml

import (
	"context"
	"sync"

	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/bnema/coffeeviz-cli/internal/ports"
	"github.com/spf13/viper"
)

const (
	quotaPathKey  = "quota.path"
	quotaFileName = "quota.toml"
	quotaLabel    = "quota"
)

// QuotaRepository caches the last quota board in quota.toml.
type QuotaRepository struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.QuotaRepository = (*QuotaRepository)(nil)

func NewQuotaRepository(cfg *viper.Viper) (*QuotaRepository, error) {
	path, err := resolvePath(cfg, quotaPathKey, quotaFileName)
	if err != nil {
		return nil, err
	}

	return &QuotaRepository{path: path, mu: lockForPath(path)}, nil
}

// Get returns domain.ErrNoQuotas until a board has been saved.
func (r *QuotaRepository) Get(ctx context.Context) (domain.QuotaBoard, error) {
	if err := ctx.Err(); err != nil {
		return domain.QuotaBoard{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var file quotaFileSchema
	found, err := readTOMLFile(r.path, quotaLabel, &file)
	if err != nil {
		return domain.QuotaBoard{}, err
	}
	if !found {
		return domain.QuotaBoard{}, domain.ErrNoQuotas
	}
	if err := validateVersion(quotaLabel, file.Version); err != nil {
		return domain.QuotaBoard{}, err
	}

	return fromQuotaSchema(file), nil
}

func (r *QuotaRepository) Save(ctx context.Context, board domain.QuotaBoard) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	return writeTOMLFile(r.path, quotaLabel, toQuotaSchema(board))
}

func toQuotaSchema(board domain.QuotaBoard) quotaFileSchema {
	quotas := make([]quotaSchema, 0, len(board.Quotas))
	for _, quota := range board.Sorted() {
		quotas = append(quotas, quotaSchema{
			Type:        quota.Type,
			Limit:       quota.Limit,
			Used:        quota.Used,
			ResetCycle:  quota.ResetCycle,
			LastResetAt: formatTime(quota.LastResetAt),
		})
	}

	return quotaFileSchema{
		Version:    currentSchemaVersion,
		CapturedAt: formatTime(board.CapturedAt),
		Quotas:     quotas,
	}
}

func fromQuotaSchema(file quotaFileSchema) domain.QuotaBoard {
	board := domain.QuotaBoard{
		Quotas:     make(map[string]domain.Quota, len(file.Quotas)),
		CapturedAt: parseTime(file.CapturedAt),
	}
	for _, entry := range file.Quotas {
		board.Quotas[entry.Type] = domain.Quota{
			Type:        entry.Type,
			Limit:       entry.Limit,
			Used:        entry.Used,
			ResetCycle:  entry.ResetCycle,
			LastResetAt: parseTime(entry.LastResetAt),
		}
	}
	return board
}
