package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/flowsuit/flowsuit-api/internal/core/ports"
)

// DashboardService aggregates headline numbers for the acting user.
type DashboardService struct {
	clients   ports.ClientRepository
	proposals ports.ProposalRepository
	projects  ports.ProjectRepository
	logger    zerolog.Logger
}

func NewDashboardService(
	clients ports.ClientRepository,
	proposals ports.ProposalRepository,
	projects ports.ProjectRepository,
	logger zerolog.Logger,
) *DashboardService {
	return &DashboardService{clients: clients, proposals: proposals, projects: projects, logger: logger}
}

// Summary returns client/proposal/project counts and the total proposal
// pipeline amount for the user.
func (s *DashboardService) Summary(ctx context.Context, userID string) (*ports.DashboardSummary, error) {
	clients, err := s.clients.Count(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: count clients: %w", err)
	}
	proposals, err := s.proposals.Count(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: count proposals: %w", err)
	}
	projects, err := s.projects.Count(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: count projects: %w", err)
	}
	pipeline, err := s.proposals.TotalPipeline(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: pipeline total: %w", err)
	}

	return &ports.DashboardSummary{
		Clients:       clients,
		Proposals:     proposals,
		Projects:      projects,
		PipelineTotal: pipeline,
	}, nil
}
