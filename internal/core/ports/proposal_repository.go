package ports

import (
	"context"
	"time"

	"github.com/flowsuit/flowsuit-api/internal/core/domain"
)

// ListProposalsFilter carries all query parameters for listing proposals.
// UserID is always enforced by the service layer.
type ListProposalsFilter struct {
	UserID   string
	ClientID string    // optional: filter by client
	Status   string    // optional: filter by proposal status
	Search   string    // optional: partial match on title
	DateFrom time.Time // optional: created_at >= DateFrom
	DateTo   time.Time // optional: created_at <= DateTo
	Page     int       // 1-based
	Limit    int       // max rows per page (capped at 100 by service)
}

// ProposalRepository defines persistence operations for proposals.
type ProposalRepository interface {
	Create(ctx context.Context, p *domain.Proposal) (*domain.Proposal, error)
	// FindByID retrieves a proposal owned by userID, or domain.ErrProposalNotFound.
	FindByID(ctx context.Context, id, userID string) (*domain.Proposal, error)
	// FindByToken retrieves a proposal by its magic link token, unscoped.
	// This is the only lookup path not keyed by the owning user.
	FindByToken(ctx context.Context, token string) (*domain.Proposal, error)
	// UpdateStatus applies a status change plus the matching timestamp
	// (sent_at or accepted_at) in a single write.
	UpdateStatus(ctx context.Context, id string, status domain.ProposalStatus, at time.Time) error
	// List returns a page of proposals matching filter and the total count.
	List(ctx context.Context, filter ListProposalsFilter) ([]*domain.Proposal, int64, error)
	Count(ctx context.Context, userID string) (int64, error)
	// TotalPipeline sums total_amount over all proposals owned by userID.
	TotalPipeline(ctx context.Context, userID string) (float64, error)
}
