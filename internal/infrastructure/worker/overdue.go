// Package worker hosts background jobs that run alongside the HTTP server.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/flowsuit/flowsuit-api/internal/core/ports"
)

const defaultInterval = time.Hour

// OverdueSweeper periodically flips pending milestones whose due date has
// passed to overdue. Milestone status is otherwise only changed by explicit
// owner actions, so the sweep is the single writer of the overdue state.
type OverdueSweeper struct {
	milestones ports.MilestoneRepository
	interval   time.Duration
	log        zerolog.Logger
}

// NewOverdueSweeper creates a sweeper running every interval.
// If interval <= 0, defaultInterval is used.
func NewOverdueSweeper(milestones ports.MilestoneRepository, interval time.Duration, log zerolog.Logger) *OverdueSweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &OverdueSweeper{milestones: milestones, interval: interval, log: log}
}

// Start launches the sweep loop in a goroutine. One sweep runs immediately;
// the loop stops when ctx is cancelled.
func (s *OverdueSweeper) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *OverdueSweeper) run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *OverdueSweeper) sweep(ctx context.Context) {
	n, err := s.milestones.MarkOverdue(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error().Err(err).Msg("overdue sweep failed")
		return
	}
	if n > 0 {
		s.log.Info().Int64("milestones", n).Msg("milestones marked overdue")
	}
}
