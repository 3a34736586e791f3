package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/api"
	"github.com/bnema/coffeeviz-cli/internal/ports"
)

// QuotaService keeps the local quota board. It is the refresh sink the
// dispatcher hands quota data to.
type QuotaService struct {
	exec       Executor
	repo       ports.QuotaRepository
	clock      ports.Clock
	staleAfter time.Duration
}

var _ ports.RefreshSink = (*QuotaService)(nil)

func NewQuotaService(exec Executor, repo ports.QuotaRepository, clock ports.Clock, staleAfter time.Duration) *QuotaService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &QuotaService{
		exec:       exec,
		repo:       repo,
		clock:      clock,
		staleAfter: staleAfter,
	}
}

func (s *QuotaService) ApplyRefresh(ctx context.Context, data json.RawMessage) error {
	board, err := api.DecodeQuotaBoard(data, s.clock.Now())
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, board); err != nil {
		return fmt.Errorf("save quota board: %w", err)
	}
	return nil
}

// Refresh fetches the quota list now and stores it.
func (s *QuotaService) Refresh(ctx context.Context) (QuotaView, error) {
	result := s.exec.Execute(ctx, api.QuotaList())
	if err := result.Err(); err != nil {
		return QuotaView{}, fmt.Errorf("fetch quotas: %w", err)
	}
	if err := s.ApplyRefresh(ctx, result.Data()); err != nil {
		return QuotaView{}, err
	}
	return s.Board(ctx)
}

// Board returns the stored board. It returns domain.ErrNoQuotas when nothing
// has been captured yet.
func (s *QuotaService) Board(ctx context.Context) (QuotaView, error) {
	board, err := s.repo.Get(ctx)
	if err != nil {
		return QuotaView{}, fmt.Errorf("get quota board: %w", err)
	}

	return QuotaView{
		Board: board,
		Stale: board.IsStale(s.clock.Now(), s.staleAfter),
	}, nil
}
