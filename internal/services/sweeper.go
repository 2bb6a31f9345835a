package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yueban/activity-board/internal/repository"
)

// Sweeper periodically deletes activities whose end time has passed,
// cascading their participations and messages. A failed deletion is logged
// and retried on the next interval; the sweep itself never takes the
// process down.
type Sweeper struct {
	activityRepo repository.ActivityRepository
	interval     time.Duration
	logger       zerolog.Logger
}

// NewSweeper creates a sweeper firing once per interval.
func NewSweeper(activityRepo repository.ActivityRepository, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		activityRepo: activityRepo,
		interval:     interval,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("expiry sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(time.Now().UTC())
		}
	}
}

// Sweep deletes every activity whose end time lies strictly before now.
// Each activity is removed in its own transaction; one failure does not
// stop the rest. Returns the number of activities deleted. Running a
// second time against the same instant is a no-op.
func (s *Sweeper) Sweep(now time.Time) int {
	expired, err := s.activityRepo.ListExpired(now)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to query expired activities")
		return 0
	}

	deleted := 0
	for _, activity := range expired {
		if err := s.activityRepo.Delete(activity.ID); err != nil {
			s.logger.Error().Err(err).Uint64("activity_id", activity.ID).Str("title", activity.Title).
				Msg("failed to delete expired activity")
			continue
		}
		s.logger.Info().Uint64("activity_id", activity.ID).Str("title", activity.Title).
			Msg("deleted expired activity")
		deleted++
	}

	return deleted
}
