package ports

import (
	"context"
	"time"

	"github.com/flowsuit/flowsuit-api/internal/core/domain"
)

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	// FindByID retrieves a project owned by userID, or domain.ErrProjectNotFound.
	FindByID(ctx context.Context, id, userID string) (*domain.Project, error)
	// FindByProposalID retrieves the project spawned by the given proposal.
	FindByProposalID(ctx context.Context, proposalID string) (*domain.Project, error)
	// UpdateStatus applies a status change; end_date is set when the project
	// reaches a terminal status (completed or cancelled).
	UpdateStatus(ctx context.Context, id string, status domain.ProjectStatus, at time.Time) error
	Count(ctx context.Context, userID string) (int64, error)
}
