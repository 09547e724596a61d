package ports

import (
	"context"
	"time"

	"github.com/flowsuit/flowsuit-api/internal/core/domain"
)

// MilestoneRepository defines persistence operations for payment milestones.
type MilestoneRepository interface {
	// CreateMany inserts the full schedule for a project in insertion order.
	CreateMany(ctx context.Context, milestones []*domain.PaymentMilestone) error
	FindByID(ctx context.Context, id string) (*domain.PaymentMilestone, error)
	// ListByProject returns a project's milestones in schedule order.
	ListByProject(ctx context.Context, projectID string) ([]*domain.PaymentMilestone, error)
	// MarkPaid sets status=paid and paid_at on a milestone.
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
	// MarkOverdue flips pending milestones with a due date before the cutoff
	// to overdue, returning how many were updated.
	MarkOverdue(ctx context.Context, before time.Time) (int64, error)
}
