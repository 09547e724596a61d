package handler

import (
	"time"

	"github.com/flowsuit/flowsuit-api/internal/core/domain"
	"github.com/flowsuit/flowsuit-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateProposalInput(req createProposalRequest, userID string) ports.CreateProposalInput {
	// Already validated against 2006-01-02 by the request binding.
	start, _ := time.Parse("2006-01-02", req.StartDate)
	return ports.CreateProposalInput{
		UserID:      userID,
		ClientID:    req.ClientID,
		Title:       req.Title,
		TotalBudget: req.TotalBudget,
		StartDate:   start,
		PaymentTerm: req.PaymentTerm,
	}
}

// --- Service result → HTTP response ---

func toCreateProposalResponse(r *ports.CreateProposalResult) createProposalResponse {
	return createProposalResponse{
		ID:         r.ProposalID,
		ProjectID:  r.ProjectID,
		Status:     r.Status,
		ShareURL:   r.ShareURL,
		Milestones: toScheduleResponse(r.Milestones),
		CreatedAt:  r.CreatedAt.UTC(),
		Links: proposalLinks{
			Self:  "/v1/proposals/" + r.ProposalID,
			Share: r.ShareURL,
		},
	}
}

func toScheduleResponse(schedule domain.MilestoneSchedule) []milestoneResponse {
	out := make([]milestoneResponse, 0, len(schedule))
	for _, m := range schedule {
		out = append(out, milestoneResponse{
			Title:       m.Title,
			Description: m.Description,
			Amount:      m.Amount,
			DueDate:     formatDate(m.DueDate),
		})
	}
	return out
}

func toMilestoneResponses(items []ports.MilestoneItem) []milestoneResponse {
	out := make([]milestoneResponse, 0, len(items))
	for _, m := range items {
		out = append(out, milestoneResponse{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Amount:      m.Amount,
			DueDate:     formatDate(m.DueDate),
			Status:      m.Status,
			PaidAt:      m.PaidAt,
		})
	}
	return out
}

func toProposalSummary(p *domain.Proposal) proposalSummaryResponse {
	return proposalSummaryResponse{
		ID:          p.ID,
		ClientID:    p.ClientID,
		Title:       p.Title,
		TotalAmount: p.TotalAmount,
		Status:      string(p.Status),
		SentAt:      p.SentAt,
		AcceptedAt:  p.AcceptedAt,
		CreatedAt:   p.CreatedAt.UTC(),
	}
}

func toGetProposalResponse(d *ports.ProposalDetail) getProposalResponse {
	return getProposalResponse{
		proposalSummaryResponse: toProposalSummary(d.Proposal),
		ClientName:              d.ClientName,
		ProjectID:               d.ProjectID,
		ShareURL:                d.ShareURL,
		Milestones:              toMilestoneResponses(d.Milestones),
		Links: proposalLinks{
			Self:  "/v1/proposals/" + d.Proposal.ID,
			Share: d.ShareURL,
		},
	}
}

func toListProposalsResponse(r *ports.ListProposalsResult) listProposalsResponse {
	items := make([]proposalSummaryResponse, 0, len(r.Items))
	for _, p := range r.Items {
		items = append(items, toProposalSummary(p))
	}
	return listProposalsResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}

func toShareViewResponse(v *ports.ShareView) shareViewResponse {
	return shareViewResponse{
		Title:       v.Title,
		ClientName:  v.ClientName,
		TotalAmount: v.TotalAmount,
		Status:      v.Status,
		Milestones:  toMilestoneResponses(v.Milestones),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format("2006-01-02")
	return &s
}
