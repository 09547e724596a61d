package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/flowsuit/flowsuit-api/internal/core/domain"
	"github.com/flowsuit/flowsuit-api/internal/core/ports"
)

// ProjectService implements project status transitions.
type ProjectService struct {
	repo   ports.ProjectRepository
	logger zerolog.Logger
}

func NewProjectService(repo ports.ProjectRepository, logger zerolog.Logger) *ProjectService {
	return &ProjectService{repo: repo, logger: logger}
}

// UpdateStatus validates and applies a project status transition. The
// repository stamps end_date when the project reaches a terminal status.
func (s *ProjectService) UpdateStatus(ctx context.Context, id, userID string, next domain.ProjectStatus) (*domain.Project, error) {
	project, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if !project.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, project.Status, next)
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, project.ID, next, now); err != nil {
		return nil, fmt.Errorf("update project status: %w", err)
	}

	project.Status = next
	if next == domain.ProjectCompleted || next == domain.ProjectCancelled {
		project.EndDate = &now
	}

	s.logger.Info().Str("project_id", project.ID).Str("status", string(next)).Msg("project status updated")
	return project, nil
}
