package domain

import (
	"errors"
	"time"
)

// ProposalStatus represents the lifecycle state of a proposal.
type ProposalStatus string

const (
	ProposalDraft    ProposalStatus = "draft"
	ProposalSent     ProposalStatus = "sent"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

// proposalTransitions defines the allowed state machine transitions.
var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalDraft: {ProposalSent},
	ProposalSent:  {ProposalAccepted, ProposalRejected},
}

var ErrProposalNotFound = errors.New("proposal not found")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrForbidden = errors.New("access forbidden")

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	for _, allowed := range proposalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Proposal is a priced offer to a client. The magic link token is the only
// credential ever disclosed to the client; it is never serialized in owner
// facing JSON.
type Proposal struct {
	ID             string         `json:"id" bson:"_id,omitempty"`
	UserID         string         `json:"user_id" bson:"user_id"`
	ClientID       string         `json:"client_id" bson:"client_id"`
	Title          string         `json:"title" bson:"title"`
	TotalAmount    float64        `json:"total_amount" bson:"total_amount"`
	Status         ProposalStatus `json:"status" bson:"status"`
	MagicLinkToken string         `json:"-" bson:"magic_link_token"`
	SentAt         *time.Time     `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
	AcceptedAt     *time.Time     `json:"accepted_at,omitempty" bson:"accepted_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
}
