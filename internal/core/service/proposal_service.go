package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/flowsuit/flowsuit-api/internal/core/domain"
	"github.com/flowsuit/flowsuit-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	tokenReserveAttempts = 3
)

// TokenStore abstracts the magic link token store (Redis). Reservation keeps
// freshly generated tokens unique across replicas before the proposal row
// exists; the proposal-id cache serves the public share lookup.
type TokenStore interface {
	// Reserve claims a token. It returns false when the token is already taken.
	Reserve(ctx context.Context, token string) (bool, error)
	CacheProposalID(ctx context.Context, token, proposalID string) error
	// LookupProposalID returns the cached proposal id, or "" on a cache miss.
	LookupProposalID(ctx context.Context, token string) (string, error)
}

// ProposalService implements proposal creation, listing, the send transition,
// and the public magic link surface.
type ProposalService struct {
	proposals  ports.ProposalRepository
	projects   ports.ProjectRepository
	milestones ports.MilestoneRepository
	clients    ports.ClientRepository
	tokens     TokenStore
	baseURL    string
	logger     zerolog.Logger
}

func NewProposalService(
	proposals ports.ProposalRepository,
	projects ports.ProjectRepository,
	milestones ports.MilestoneRepository,
	clients ports.ClientRepository,
	tokens TokenStore,
	baseURL string,
	logger zerolog.Logger,
) *ProposalService {
	return &ProposalService{
		proposals:  proposals,
		projects:   projects,
		milestones: milestones,
		clients:    clients,
		tokens:     tokens,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// CreateProposal runs the full creation chain: validate, generate the magic
// link token, then persist proposal, project and milestone schedule in strict
// order. Each write depends on the id produced by the previous one, so the
// three writes are sequential, and a failure aborts the chain tagged with the
// stage that broke.
func (s *ProposalService) CreateProposal(ctx context.Context, input ports.CreateProposalInput) (*ports.CreateProposalResult, error) {
	if input.TotalBudget <= 0 {
		return nil, domain.ErrInvalidBudget
	}
	term := domain.PaymentTerm(input.PaymentTerm)
	if !term.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPaymentTerm, input.PaymentTerm)
	}

	// Referential check: the client must exist and belong to the acting user.
	if _, err := s.clients.FindByID(ctx, input.ClientID, input.UserID); err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}

	token, err := s.reserveToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}

	now := time.Now().UTC()

	// 1. Proposal.
	proposal, err := s.proposals.Create(ctx, &domain.Proposal{
		UserID:         input.UserID,
		ClientID:       input.ClientID,
		Title:          input.Title,
		TotalAmount:    input.TotalBudget,
		Status:         domain.ProposalDraft,
		MagicLinkToken: token,
		CreatedAt:      now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("client_id", input.ClientID).Msg("proposal write failed")
		return nil, &domain.CreationError{Stage: domain.StageProposal, Err: err}
	}

	// 2. Project, referencing the new proposal.
	start := input.StartDate
	project, err := s.projects.Create(ctx, &domain.Project{
		UserID:     input.UserID,
		ClientID:   input.ClientID,
		ProposalID: proposal.ID,
		Name:       input.Title,
		Budget:     input.TotalBudget,
		Status:     domain.ProjectActive,
		StartDate:  &start,
		CreatedAt:  now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("proposal_id", proposal.ID).Msg("project write failed")
		return nil, &domain.CreationError{Stage: domain.StageProject, Err: err}
	}

	// 3. Milestone schedule, referencing the new project.
	schedule := domain.ComputeSchedule(input.TotalBudget, term, input.StartDate)
	records := make([]*domain.PaymentMilestone, 0, len(schedule))
	for _, m := range schedule {
		records = append(records, &domain.PaymentMilestone{
			ProjectID:   project.ID,
			Title:       m.Title,
			Description: m.Description,
			Amount:      m.Amount,
			DueDate:     m.DueDate,
			Status:      domain.MilestonePending,
			CreatedAt:   now,
		})
	}
	if err := s.milestones.CreateMany(ctx, records); err != nil {
		s.logger.Error().Err(err).Str("project_id", project.ID).Msg("milestone write failed")
		return nil, &domain.CreationError{Stage: domain.StageMilestones, Err: err}
	}

	// Cache miss here only costs the share endpoint a Mongo lookup.
	if err := s.tokens.CacheProposalID(ctx, token, proposal.ID); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache magic link token")
	}

	s.logger.Info().
		Str("proposal_id", proposal.ID).
		Str("project_id", project.ID).
		Str("payment_term", input.PaymentTerm).
		Int("milestones", len(records)).
		Msg("proposal created")

	return &ports.CreateProposalResult{
		ProposalID: proposal.ID,
		ProjectID:  project.ID,
		Status:     string(proposal.Status),
		ShareURL:   s.shareURL(token),
		Milestones: schedule,
		CreatedAt:  proposal.CreatedAt,
	}, nil
}

// reserveToken generates a magic link token and claims it in the token store.
// A reservation conflict regenerates; a store outage is tolerated because the
// unique index on magic_link_token backstops uniqueness.
func (s *ProposalService) reserveToken(ctx context.Context) (string, error) {
	var token string
	for i := 0; i < tokenReserveAttempts; i++ {
		token = newMagicToken()
		ok, err := s.tokens.Reserve(ctx, token)
		if err != nil {
			s.logger.Warn().Err(err).Msg("token reservation unavailable, relying on unique index")
			return token, nil
		}
		if ok {
			return token, nil
		}
	}
	return "", fmt.Errorf("could not reserve a unique token after %d attempts", tokenReserveAttempts)
}

// newMagicToken returns a URL-safe opaque token with 122 bits of entropy:
// a random UUID with the separators stripped.
func newMagicToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *ProposalService) shareURL(token string) string {
	return s.baseURL + "/p/" + token
}

// GetProposal returns the owner-facing detail view, including the derived
// project's milestone schedule and the shareable link.
func (s *ProposalService) GetProposal(ctx context.Context, id, userID string) (*ports.ProposalDetail, error) {
	proposal, err := s.proposals.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	detail := &ports.ProposalDetail{
		Proposal: proposal,
		ShareURL: s.shareURL(proposal.MagicLinkToken),
	}

	if client, err := s.clients.FindByID(ctx, proposal.ClientID, userID); err == nil {
		detail.ClientName = client.Name
	}

	project, err := s.projects.FindByProposalID(ctx, proposal.ID)
	if err != nil {
		// A proposal without a project means an earlier partial failure;
		// still return the proposal rather than hiding it.
		s.logger.Warn().Err(err).Str("proposal_id", proposal.ID).Msg("proposal has no project")
		return detail, nil
	}
	detail.ProjectID = project.ID

	milestones, err := s.milestones.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}
	detail.Milestones = toMilestoneItems(milestones)

	return detail, nil
}

// ListProposals returns a page of the user's proposals.
func (s *ProposalService) ListProposals(ctx context.Context, input ports.ListProposalsInput) (*ports.ListProposalsResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, total, err := s.proposals.List(ctx, ports.ListProposalsFilter{
		UserID:   input.UserID,
		ClientID: input.ClientID,
		Status:   input.Status,
		Search:   input.Search,
		DateFrom: input.DateFrom,
		DateTo:   input.DateTo,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	return &ports.ListProposalsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// SendProposal transitions a draft proposal to sent and stamps sent_at.
func (s *ProposalService) SendProposal(ctx context.Context, id, userID string) (*domain.Proposal, error) {
	proposal, err := s.proposals.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if !proposal.Status.CanTransitionTo(domain.ProposalSent) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, proposal.Status, domain.ProposalSent)
	}

	now := time.Now().UTC()
	if err := s.proposals.UpdateStatus(ctx, proposal.ID, domain.ProposalSent, now); err != nil {
		return nil, fmt.Errorf("send proposal: %w", err)
	}

	proposal.Status = domain.ProposalSent
	proposal.SentAt = &now

	s.logger.Info().Str("proposal_id", proposal.ID).Msg("proposal sent")
	return proposal, nil
}

// ResolveToken returns the client-facing view behind a magic link token.
func (s *ProposalService) ResolveToken(ctx context.Context, token string) (*ports.ShareView, error) {
	proposal, err := s.findByTokenCached(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.buildShareView(ctx, proposal)
}

// AcceptByToken transitions a sent proposal to accepted on behalf of the
// client holding the magic link.
func (s *ProposalService) AcceptByToken(ctx context.Context, token string) (*ports.ShareView, error) {
	proposal, err := s.findByTokenCached(ctx, token)
	if err != nil {
		return nil, err
	}

	if !proposal.Status.CanTransitionTo(domain.ProposalAccepted) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, proposal.Status, domain.ProposalAccepted)
	}

	now := time.Now().UTC()
	if err := s.proposals.UpdateStatus(ctx, proposal.ID, domain.ProposalAccepted, now); err != nil {
		return nil, fmt.Errorf("accept proposal: %w", err)
	}

	proposal.Status = domain.ProposalAccepted
	proposal.AcceptedAt = &now

	s.logger.Info().Str("proposal_id", proposal.ID).Msg("proposal accepted via magic link")
	return s.buildShareView(ctx, proposal)
}

// findByTokenCached consults the token cache first; on a miss it falls back
// to the indexed Mongo lookup.
func (s *ProposalService) findByTokenCached(ctx context.Context, token string) (*domain.Proposal, error) {
	if id, err := s.tokens.LookupProposalID(ctx, token); err != nil {
		s.logger.Warn().Err(err).Msg("token cache lookup failed")
	} else if id != "" {
		// Unscoped read: the token itself is the credential here.
		if proposal, err := s.proposals.FindByID(ctx, id, ""); err == nil && proposal.MagicLinkToken == token {
			return proposal, nil
		}
	}
	return s.proposals.FindByToken(ctx, token)
}

func (s *ProposalService) buildShareView(ctx context.Context, proposal *domain.Proposal) (*ports.ShareView, error) {
	view := &ports.ShareView{
		Title:       proposal.Title,
		TotalAmount: proposal.TotalAmount,
		Status:      string(proposal.Status),
	}

	if client, err := s.clients.FindByID(ctx, proposal.ClientID, proposal.UserID); err == nil {
		view.ClientName = client.Name
	}

	project, err := s.projects.FindByProposalID(ctx, proposal.ID)
	if err != nil {
		return view, nil
	}
	milestones, err := s.milestones.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve token: %w", err)
	}
	view.Milestones = toMilestoneItems(milestones)
	return view, nil
}

func toMilestoneItems(milestones []*domain.PaymentMilestone) []ports.MilestoneItem {
	items := make([]ports.MilestoneItem, 0, len(milestones))
	for _, m := range milestones {
		items = append(items, ports.MilestoneItem{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Amount:      m.Amount,
			DueDate:     m.DueDate,
			Status:      string(m.Status),
			PaidAt:      m.PaidAt,
		})
	}
	return items
}
