package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/openward/accountd/internal/account/store"
)

// HousekeepingService periodically sweeps expired verification statuses
// so the table doesn't grow without bound. Backends with native TTL
// expiry make the sweep a no-op.
type HousekeepingService struct {
	Verifications store.VerificationStatuses
	Logger        *slog.Logger
	Interval      time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the sweeper. A non-positive interval
// defaults to 1 hour.
func NewHousekeepingService(verifications store.VerificationStatuses, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Verifications: verifications,
		Logger:        logger,
		Interval:      interval,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut it
// down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", "interval", s.Interval)
}

// Stop shuts down the worker, blocking until any in-progress sweep ends.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep once on startup, then on the ticker.
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	ctx := context.Background()

	if err := s.Verifications.DeleteExpired(ctx, time.Now().UTC()); err != nil {
		s.Logger.Error("failed to delete expired verification statuses", "error", err)
		return
	}
	s.Logger.Debug("expired verification statuses swept")
}
