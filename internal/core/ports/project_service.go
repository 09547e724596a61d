package ports

import (
	"context"

	"github.com/flowsuit/flowsuit-api/internal/core/domain"
)

// ProjectService defines use-case operations for projects.
type ProjectService interface {
	// UpdateStatus validates and applies a project status transition.
	UpdateStatus(ctx context.Context, id, userID string, next domain.ProjectStatus) (*domain.Project, error)
}

// MilestoneService defines use-case operations for payment milestones.
type MilestoneService interface {
	// MarkPaid marks a pending or overdue milestone as paid. Ownership is
	// enforced through the milestone's project.
	MarkPaid(ctx context.Context, id, userID string) (*domain.PaymentMilestone, error)
}

// DashboardSummary aggregates headline numbers for the acting user.
type DashboardSummary struct {
	Clients       int64
	Proposals     int64
	Projects      int64
	PipelineTotal float64
}

// DashboardService provides the dashboard aggregation.
type DashboardService interface {
	Summary(ctx context.Context, userID string) (*DashboardSummary, error)
}
