package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/flowsuit/flowsuit-api/internal/core/domain"
	"github.com/flowsuit/flowsuit-api/internal/core/ports"
)

// MilestoneService implements milestone payment tracking.
type MilestoneService struct {
	milestones ports.MilestoneRepository
	projects   ports.ProjectRepository
	logger     zerolog.Logger
}

func NewMilestoneService(milestones ports.MilestoneRepository, projects ports.ProjectRepository, logger zerolog.Logger) *MilestoneService {
	return &MilestoneService{milestones: milestones, projects: projects, logger: logger}
}

// MarkPaid marks a pending or overdue milestone as paid. Ownership is checked
// through the milestone's project; a milestone in someone else's project is
// reported as not found rather than forbidden.
func (s *MilestoneService) MarkPaid(ctx context.Context, id, userID string) (*domain.PaymentMilestone, error) {
	milestone, err := s.milestones.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.projects.FindByID(ctx, milestone.ProjectID, userID); err != nil {
		return nil, domain.ErrMilestoneNotFound
	}

	if milestone.Status == domain.MilestonePaid {
		return nil, domain.ErrMilestoneAlreadyPaid
	}

	now := time.Now().UTC()
	if err := s.milestones.MarkPaid(ctx, milestone.ID, now); err != nil {
		return nil, fmt.Errorf("mark milestone paid: %w", err)
	}

	milestone.Status = domain.MilestonePaid
	milestone.PaidAt = &now

	s.logger.Info().Str("milestone_id", milestone.ID).Float64("amount", milestone.Amount).Msg("milestone paid")
	return milestone, nil
}
