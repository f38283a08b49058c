package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
	"github.com/aussiebroadwan/huproof/internal/huproof/store"
)

const (
	DefaultHousekeepingInterval  = time.Hour
	DefaultHousekeepingRetention = 24 * time.Hour
)

// HousekeepingService periodically prunes nonces and session tokens that
// expired more than Retention ago. The protocol flows never delete rows;
// this worker is the only thing that does.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the worker. Non-positive durations fall
// back to the defaults.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}
	if retention <= 0 {
		retention = DefaultHousekeepingRetention
	}

	return &HousekeepingService{
		Store:     store,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "retention", s.Retention)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// cleanup deletes expired rows. Each deletion is independent.
func (s *HousekeepingService) cleanup(ctx context.Context) (nonces, tokens int64) {
	before := domain.Now().Add(-s.Retention)

	nonces, err := s.Store.Nonces().DeleteExpiredNonces(ctx, before)
	if err != nil {
		s.Logger.Error("failed to delete expired nonces", "error", err)
	}

	tokens, err = s.Store.SessionTokens().DeleteExpiredSessionTokens(ctx, before)
	if err != nil {
		s.Logger.Error("failed to delete expired session tokens", "error", err)
	}

	users, err := s.Store.Users().CountUsers(ctx)
	if err != nil {
		s.Logger.Error("failed to count users", "error", err)
	}

	s.Logger.Info("housekeeping cleanup completed",
		"nonces_deleted", nonces,
		"session_tokens_deleted", tokens,
		"users", users,
	)
	return nonces, tokens
}
