package handler

import "time"

// --- Request types ---

type createProposalRequest struct {
	ClientID    string  `json:"client_id"    validate:"required"`
	Title       string  `json:"title"        validate:"required"`
	TotalBudget float64 `json:"total_budget" validate:"required,gt=0"`
	StartDate   string  `json:"start_date"   validate:"required,datetime=2006-01-02"`
	PaymentTerm string  `json:"payment_term" validate:"required,oneof=50-50 upfront milestones"`
}

// --- Response types ---
// Response-only types owned by the transport layer, intentionally separate
// from ports/domain types so the JSON contract is not coupled to internal
// service changes.

type proposalLinks struct {
	Self  string `json:"self"`
	Share string `json:"share"`
}

type milestoneResponse struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Amount      float64    `json:"amount"`
	DueDate     *string    `json:"due_date"`
	Status      string     `json:"status,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

type createProposalResponse struct {
	ID         string              `json:"id"`
	ProjectID  string              `json:"project_id"`
	Status     string              `json:"status"`
	ShareURL   string              `json:"share_url"`
	Milestones []milestoneResponse `json:"milestones"`
	CreatedAt  time.Time           `json:"created_at"`
	Links      proposalLinks       `json:"_links"`
}

// proposalSummaryResponse is the lightweight item used in list responses.
// It intentionally omits the milestone schedule to keep payloads small.
type proposalSummaryResponse struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"client_id"`
	Title       string     `json:"title"`
	TotalAmount float64    `json:"total_amount"`
	Status      string     `json:"status"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type getProposalResponse struct {
	proposalSummaryResponse
	ClientName string              `json:"client_name,omitempty"`
	ProjectID  string              `json:"project_id,omitempty"`
	ShareURL   string              `json:"share_url"`
	Milestones []milestoneResponse `json:"milestones"`
	Links      proposalLinks       `json:"_links"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listProposalsResponse struct {
	Data       []proposalSummaryResponse `json:"data"`
	Pagination paginationResponse        `json:"pagination"`
}

// shareViewResponse is the client-facing payload behind a magic link. It
// carries no internal identifiers.
type shareViewResponse struct {
	Title       string              `json:"title"`
	ClientName  string              `json:"client_name,omitempty"`
	TotalAmount float64             `json:"total_amount"`
	Status      string              `json:"status"`
	Milestones  []milestoneResponse `json:"milestones"`
}
