package ports

import (
	"context"
	"time"

	"github.com/flowsuit/flowsuit-api/internal/core/domain"
)

// CreateProposalInput carries all data needed to create a proposal and its
// derived project and milestone schedule.
type CreateProposalInput struct {
	UserID      string
	ClientID    string
	Title       string
	TotalBudget float64
	StartDate   time.Time
	PaymentTerm string
}

// CreateProposalResult is returned after a successful creation. ShareURL is
// the client-facing magic link built from the configured base URL.
type CreateProposalResult struct {
	ProposalID string
	ProjectID  string
	Status     string
	ShareURL   string
	Milestones domain.MilestoneSchedule
	CreatedAt  time.Time
}

// MilestoneItem is a persisted milestone as exposed in proposal detail views.
type MilestoneItem struct {
	ID          string
	Title       string
	Description string
	Amount      float64
	DueDate     *time.Time
	Status      string
	PaidAt      *time.Time
}

// ProposalDetail is the owner-facing full view of a proposal.
type ProposalDetail struct {
	Proposal   *domain.Proposal
	ClientName string
	ProjectID  string
	ShareURL   string
	Milestones []MilestoneItem
}

// ShareView is the client-facing view resolved from a magic link token. It
// deliberately omits internal identifiers.
type ShareView struct {
	Title       string
	ClientName  string
	TotalAmount float64
	Status      string
	Milestones  []MilestoneItem
}

// ListProposalsInput carries all parameters for the list endpoint.
type ListProposalsInput struct {
	UserID   string
	ClientID string
	Status   string
	Search   string
	DateFrom time.Time
	DateTo   time.Time
	Page     int
	Limit    int
}

// ListProposalsResult is returned by ListProposals.
type ListProposalsResult struct {
	Items      []*domain.Proposal
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ProposalService defines use-case operations for proposals, including the
// public magic link surface.
type ProposalService interface {
	CreateProposal(ctx context.Context, input CreateProposalInput) (*CreateProposalResult, error)
	GetProposal(ctx context.Context, id, userID string) (*ProposalDetail, error)
	ListProposals(ctx context.Context, input ListProposalsInput) (*ListProposalsResult, error)
	// SendProposal transitions a draft proposal to sent and stamps sent_at.
	SendProposal(ctx context.Context, id, userID string) (*domain.Proposal, error)
	// ResolveToken returns the client-facing view behind a magic link token.
	ResolveToken(ctx context.Context, token string) (*ShareView, error)
	// AcceptByToken transitions a sent proposal to accepted on behalf of the
	// client holding the magic link.
	AcceptByToken(ctx context.Context, token string) (*ShareView, error)
}
