package service

import (
	"context"
	"sync"
	"time"

	"github.com/dolphinbot/dolphin/internal/biz/repo"
	"github.com/dolphinbot/dolphin/internal/observability"
)

// HistorySweeper periodically removes group histories idle for longer than ttl
type HistorySweeper struct {
	historyRepo repo.HistoryRepo
	ttl         time.Duration
	interval    time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHistorySweeper creates a new history sweeper.
// The sweep interval is a tenth of the TTL, clamped to [1m, 6h].
func NewHistorySweeper(historyRepo repo.HistoryRepo, ttl time.Duration) *HistorySweeper {
	interval := ttl / 10
	if interval < time.Minute {
		interval = time.Minute
	}
	if interval > 6*time.Hour {
		interval = 6 * time.Hour
	}
	return &HistorySweeper{
		historyRepo: historyRepo,
		ttl:         ttl,
		interval:    interval,
	}
}

// Start starts the sweep loop; a non-positive TTL disables it
func (s *HistorySweeper) Start(ctx context.Context) {
	if s.ttl <= 0 {
		observability.Logger().Info("History sweeper disabled")
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.loop(ctx)

	observability.Logger().Info("History sweeper started", "ttl", s.ttl.String(), "interval", s.interval.String())
}

// Stop stops the sweep loop
func (s *HistorySweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *HistorySweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup pass and returns the number of removed histories
func (s *HistorySweeper) Sweep(ctx context.Context) int64 {
	removed, err := s.historyRepo.CleanupStale(ctx, time.Now().Add(-s.ttl))
	if err != nil {
		observability.Logger().Error("Failed to sweep history", "error", err)
		return 0
	}
	if removed > 0 {
		observability.Logger().Info("Swept stale group histories", "removed", removed)
	}
	return removed
}
