package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/flowsuit/flowsuit-api/internal/core/domain"
	"github.com/flowsuit/flowsuit-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubClientRepo struct {
	byID map[string]*domain.Client
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{byID: make(map[string]*domain.Client)}
}

func (r *stubClientRepo) Create(_ context.Context, c *domain.Client) (*domain.Client, error) {
	clone := *c
	if clone.ID == "" {
		clone.ID = fmt.Sprintf("client_%d", len(r.byID)+1)
	}
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id, userID string) (*domain.Client, error) {
	c, ok := r.byID[id]
	if !ok || (userID != "" && c.UserID != userID) {
		return nil, domain.ErrClientNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubClientRepo) List(_ context.Context, userID string) ([]*domain.Client, error) {
	var out []*domain.Client
	for _, c := range r.byID {
		if c.UserID == userID {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubClientRepo) Count(_ context.Context, userID string) (int64, error) {
	list, _ := r.List(context.Background(), userID)
	return int64(len(list)), nil
}

type stubProposalRepo struct {
	byID      map[string]*domain.Proposal
	createErr error
	seq       int
}

func newStubProposalRepo() *stubProposalRepo {
	return &stubProposalRepo{byID: make(map[string]*domain.Proposal)}
}

func (r *stubProposalRepo) Create(_ context.Context, p *domain.Proposal) (*domain.Proposal, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	clone := *p
	r.seq++
	clone.ID = fmt.Sprintf("proposal_%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubProposalRepo) FindByID(_ context.Context, id, userID string) (*domain.Proposal, error) {
	p, ok := r.byID[id]
	if !ok || (userID != "" && p.UserID != userID) {
		return nil, domain.ErrProposalNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProposalRepo) FindByToken(_ context.Context, token string) (*domain.Proposal, error) {
	for _, p := range r.byID {
		if p.MagicLinkToken == token {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrProposalNotFound
}

func (r *stubProposalRepo) UpdateStatus(_ context.Context, id string, status domain.ProposalStatus, at time.Time) error {
	p, ok := r.byID[id]
	if !ok {
		return domain.ErrProposalNotFound
	}
	p.Status = status
	switch status {
	case domain.ProposalSent:
		p.SentAt = &at
	case domain.ProposalAccepted:
		p.AcceptedAt = &at
	}
	return nil
}

func (r *stubProposalRepo) List(_ context.Context, f ports.ListProposalsFilter) ([]*domain.Proposal, int64, error) {
	var matched []*domain.Proposal
	for _, p := range r.byID {
		if p.UserID != f.UserID {
			continue
		}
		if f.ClientID != "" && p.ClientID != f.ClientID {
			continue
		}
		if f.Status != "" && string(p.Status) != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Search)) {
			continue
		}
		clone := *p
		matched = append(matched, &clone)
	}
	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip > len(matched) {
		return nil, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubProposalRepo) Count(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, p := range r.byID {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *stubProposalRepo) TotalPipeline(_ context.Context, userID string) (float64, error) {
	var sum float64
	for _, p := range r.byID {
		if p.UserID == userID {
			sum += p.TotalAmount
		}
	}
	return sum, nil
}

type stubProjectRepo struct {
	byID      map[string]*domain.Project
	createErr error
	seq       int
}

func newStubProjectRepo() *stubProjectRepo {
	return &stubProjectRepo{byID: make(map[string]*domain.Project)}
}

func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) (*domain.Project, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	clone := *p
	r.seq++
	clone.ID = fmt.Sprintf("project_%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubProjectRepo) FindByID(_ context.Context, id, userID string) (*domain.Project, error) {
	p, ok := r.byID[id]
	if !ok || (userID != "" && p.UserID != userID) {
		return nil, domain.ErrProjectNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProjectRepo) FindByProposalID(_ context.Context, proposalID string) (*domain.Project, error) {
	for _, p := range r.byID {
		if p.ProposalID == proposalID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

func (r *stubProjectRepo) UpdateStatus(_ context.Context, id string, status domain.ProjectStatus, at time.Time) error {
	p, ok := r.byID[id]
	if !ok {
		return domain.ErrProjectNotFound
	}
	p.Status = status
	if status == domain.ProjectCompleted || status == domain.ProjectCancelled {
		p.EndDate = &at
	}
	return nil
}

func (r *stubProjectRepo) Count(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, p := range r.byID {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

type stubMilestoneRepo struct {
	byID      map[string]*domain.PaymentMilestone
	order     []string
	createErr error
	seq       int
}

func newStubMilestoneRepo() *stubMilestoneRepo {
	return &stubMilestoneRepo{byID: make(map[string]*domain.PaymentMilestone)}
}

func (r *stubMilestoneRepo) CreateMany(_ context.Context, milestones []*domain.PaymentMilestone) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, m := range milestones {
		clone := *m
		r.seq++
		clone.ID = fmt.Sprintf("milestone_%d", r.seq)
		r.byID[clone.ID] = &clone
		r.order = append(r.order, clone.ID)
	}
	return nil
}

func (r *stubMilestoneRepo) FindByID(_ context.Context, id string) (*domain.PaymentMilestone, error) {
	m, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrMilestoneNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *stubMilestoneRepo) ListByProject(_ context.Context, projectID string) ([]*domain.PaymentMilestone, error) {
	var out []*domain.PaymentMilestone
	for _, id := range r.order {
		if m := r.byID[id]; m.ProjectID == projectID {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubMilestoneRepo) MarkPaid(_ context.Context, id string, paidAt time.Time) error {
	m, ok := r.byID[id]
	if !ok {
		return domain.ErrMilestoneNotFound
	}
	m.Status = domain.MilestonePaid
	m.PaidAt = &paidAt
	return nil
}

func (r *stubMilestoneRepo) MarkOverdue(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for _, m := range r.byID {
		if m.Status == domain.MilestonePending && m.DueDate != nil && m.DueDate.Before(before) {
			m.Status = domain.MilestoneOverdue
			n++
		}
	}
	return n, nil
}

type stubTokenStore struct {
	reserved   map[string]bool
	cache      map[string]string
	conflicts  int // first N reservations report a conflict
	reserveErr error
	lookupErr  error
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{reserved: make(map[string]bool), cache: make(map[string]string)}
}

func (s *stubTokenStore) Reserve(_ context.Context, token string) (bool, error) {
	if s.reserveErr != nil {
		return false, s.reserveErr
	}
	if s.conflicts > 0 {
		s.conflicts--
		return false, nil
	}
	if s.reserved[token] {
		return false, nil
	}
	s.reserved[token] = true
	return true, nil
}

func (s *stubTokenStore) CacheProposalID(_ context.Context, token, proposalID string) error {
	s.cache[token] = proposalID
	return nil
}

func (s *stubTokenStore) LookupProposalID(_ context.Context, token string) (string, error) {
	if s.lookupErr != nil {
		return "", s.lookupErr
	}
	return s.cache[token], nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

type proposalFixture struct {
	svc        *ProposalService
	clients    *stubClientRepo
	proposals  *stubProposalRepo
	projects   *stubProjectRepo
	milestones *stubMilestoneRepo
	tokens     *stubTokenStore
}

func newProposalFixture() *proposalFixture {
	f := &proposalFixture{
		clients:    newStubClientRepo(),
		proposals:  newStubProposalRepo(),
		projects:   newStubProjectRepo(),
		milestones: newStubMilestoneRepo(),
		tokens:     newStubTokenStore(),
	}
	f.svc = NewProposalService(f.proposals, f.projects, f.milestones, f.clients, f.tokens, "https://app.flowsuit.dev/", zerolog.Nop())
	f.clients.byID["client_1"] = &domain.Client{ID: "client_1", UserID: "user_1", Name: "Acme GmbH", Email: "kontakt@acme.example"}
	return f
}

var testStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func validInput() ports.CreateProposalInput {
	return ports.CreateProposalInput{
		UserID:      "user_1",
		ClientID:    "client_1",
		Title:       "Website Redesign",
		TotalBudget: 5000.00,
		StartDate:   testStart,
		PaymentTerm: string(domain.TermEqualSplit),
	}
}

// ---------------------------------------------------------------------------
// CreateProposal
// ---------------------------------------------------------------------------

func TestCreateProposal_EqualSplit(t *testing.T) {
	f := newProposalFixture()

	result, err := f.svc.CreateProposal(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateProposal returned error: %v", err)
	}

	proposal := f.proposals.byID[result.ProposalID]
	if proposal == nil {
		t.Fatalf("proposal not persisted")
	}
	if proposal.Status != domain.ProposalDraft {
		t.Fatalf("expected draft status, got %s", proposal.Status)
	}
	if len(proposal.MagicLinkToken) != 32 {
		t.Fatalf("expected 32-char token, got %q", proposal.MagicLinkToken)
	}
	if !strings.HasSuffix(result.ShareURL, "/p/"+proposal.MagicLinkToken) {
		t.Fatalf("share url %q does not carry the token", result.ShareURL)
	}

	project := f.projects.byID[result.ProjectID]
	if project == nil {
		t.Fatalf("project not persisted")
	}
	if project.ProposalID != proposal.ID {
		t.Fatalf("project must reference the proposal that spawned it")
	}
	if project.Budget != 5000.00 || project.Status != domain.ProjectActive {
		t.Fatalf("unexpected project: budget=%v status=%s", project.Budget, project.Status)
	}
	if project.StartDate == nil || !project.StartDate.Equal(testStart) {
		t.Fatalf("unexpected project start date: %v", project.StartDate)
	}

	milestones, _ := f.milestones.ListByProject(context.Background(), project.ID)
	if len(milestones) != 2 {
		t.Fatalf("expected 2 milestones, got %d", len(milestones))
	}
	var sum float64
	for i, m := range milestones {
		if m.Status != domain.MilestonePending {
			t.Fatalf("milestone %d not pending: %s", i, m.Status)
		}
		if m.Amount != 2500.00 {
			t.Fatalf("milestone %d amount %v, expected 2500", i, m.Amount)
		}
		sum += m.Amount
	}
	if sum != 5000.00 {
		t.Fatalf("milestones sum to %v, expected the full budget", sum)
	}
	if milestones[0].DueDate == nil || !milestones[0].DueDate.Equal(testStart) {
		t.Fatalf("first milestone must be due at start date")
	}
	if milestones[1].DueDate != nil {
		t.Fatalf("second milestone must have no due date")
	}
}

func TestCreateProposal_ThreeWaySumsExactly(t *testing.T) {
	f := newProposalFixture()

	input := validInput()
	input.TotalBudget = 3000.00
	input.PaymentTerm = string(domain.TermThreeWay)

	result, err := f.svc.CreateProposal(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateProposal returned error: %v", err)
	}

	milestones, _ := f.milestones.ListByProject(context.Background(), result.ProjectID)
	if len(milestones) != 3 {
		t.Fatalf("expected 3 milestones, got %d", len(milestones))
	}
	sum := milestones[0].Amount + milestones[1].Amount + milestones[2].Amount
	if sum != 3000.00 {
		t.Fatalf("milestones sum to %v, expected exactly 3000", sum)
	}
}

func TestCreateProposal_RejectsNonPositiveBudget(t *testing.T) {
	f := newProposalFixture()

	for _, budget := range []float64{0, -1, -5000} {
		input := validInput()
		input.TotalBudget = budget
		if _, err := f.svc.CreateProposal(context.Background(), input); !errors.Is(err, domain.ErrInvalidBudget) {
			t.Fatalf("budget %v: expected ErrInvalidBudget, got %v", budget, err)
		}
	}
	if len(f.proposals.byID) != 0 || len(f.projects.byID) != 0 || len(f.milestones.byID) != 0 {
		t.Fatalf("no records may be written on validation failure")
	}
}

func TestCreateProposal_RejectsUnknownTerm(t *testing.T) {
	f := newProposalFixture()

	input := validInput()
	input.PaymentTerm = "weekly"
	if _, err := f.svc.CreateProposal(context.Background(), input); !errors.Is(err, domain.ErrUnknownPaymentTerm) {
		t.Fatalf("expected ErrUnknownPaymentTerm, got %v", err)
	}
	if len(f.proposals.byID) != 0 {
		t.Fatalf("no records may be written on validation failure")
	}
}

func TestCreateProposal_RejectsForeignClient(t *testing.T) {
	f := newProposalFixture()

	input := validInput()
	input.UserID = "user_2" // client_1 belongs to user_1
	if _, err := f.svc.CreateProposal(context.Background(), input); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
	if len(f.proposals.byID) != 0 {
		t.Fatalf("no records may be written on referential failure")
	}
}

func TestCreateProposal_TokensAreDistinct(t *testing.T) {
	f := newProposalFixture()

	first, err := f.svc.CreateProposal(context.Background(), validInput())
	if err != nil {
		t.Fatalf("first creation failed: %v", err)
	}
	second, err := f.svc.CreateProposal(context.Background(), validInput())
	if err != nil {
		t.Fatalf("second creation failed: %v", err)
	}

	t1 := f.proposals.byID[first.ProposalID].MagicLinkToken
	t2 := f.proposals.byID[second.ProposalID].MagicLinkToken
	if t1 == t2 {
		t.Fatalf("two proposals received the same token")
	}
}

func TestCreateProposal_StageErrors(t *testing.T) {
	t.Run("proposal stage", func(t *testing.T) {
		f := newProposalFixture()
		f.proposals.createErr = errors.New("boom")

		_, err := f.svc.CreateProposal(context.Background(), validInput())
		var ce *domain.CreationError
		if !errors.As(err, &ce) || ce.Stage != domain.StageProposal {
			t.Fatalf("expected proposal-stage CreationError, got %v", err)
		}
	})

	t.Run("project stage", func(t *testing.T) {
		f := newProposalFixture()
		f.projects.createErr = errors.New("boom")

		_, err := f.svc.CreateProposal(context.Background(), validInput())
		var ce *domain.CreationError
		if !errors.As(err, &ce) || ce.Stage != domain.StageProject {
			t.Fatalf("expected project-stage CreationError, got %v", err)
		}
	})

	t.Run("milestones stage", func(t *testing.T) {
		f := newProposalFixture()
		f.milestones.createErr = errors.New("boom")

		_, err := f.svc.CreateProposal(context.Background(), validInput())
		var ce *domain.CreationError
		if !errors.As(err, &ce) || ce.Stage != domain.StageMilestones {
			t.Fatalf("expected milestones-stage CreationError, got %v", err)
		}
		if len(f.milestones.byID) != 0 {
			t.Fatalf("failed milestone write must not leave records")
		}
	})
}

func TestCreateProposal_TokenConflictRegenerates(t *testing.T) {
	f := newProposalFixture()
	f.tokens.conflicts = 2

	result, err := f.svc.CreateProposal(context.Background(), validInput())
	if err != nil {
		t.Fatalf("expected regeneration to succeed, got %v", err)
	}
	if f.proposals.byID[result.ProposalID].MagicLinkToken == "" {
		t.Fatalf("expected a token after regeneration")
	}
}

func TestCreateProposal_TokenStoreOutageIsTolerated(t *testing.T) {
	f := newProposalFixture()
	f.tokens.reserveErr = errors.New("redis down")

	if _, err := f.svc.CreateProposal(context.Background(), validInput()); err != nil {
		t.Fatalf("creation must survive a token store outage, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// GetProposal / ListProposals / SendProposal
// ---------------------------------------------------------------------------

func TestGetProposal_Detail(t *testing.T) {
	f := newProposalFixture()
	created, _ := f.svc.CreateProposal(context.Background(), validInput())

	detail, err := f.svc.GetProposal(context.Background(), created.ProposalID, "user_1")
	if err != nil {
		t.Fatalf("GetProposal returned error: %v", err)
	}
	if detail.ClientName != "Acme GmbH" {
		t.Fatalf("unexpected client name: %q", detail.ClientName)
	}
	if detail.ProjectID != created.ProjectID {
		t.Fatalf("unexpected project id: %q", detail.ProjectID)
	}
	if len(detail.Milestones) != 2 {
		t.Fatalf("expected 2 milestones in detail, got %d", len(detail.Milestones))
	}
	if detail.ShareURL != created.ShareURL {
		t.Fatalf("share url mismatch: %q vs %q", detail.ShareURL, created.ShareURL)
	}
}

func TestGetProposal_ScopedToOwner(t *testing.T) {
	f := newProposalFixture()
	created, _ := f.svc.CreateProposal(context.Background(), validInput())

	if _, err := f.svc.GetProposal(context.Background(), created.ProposalID, "user_2"); !errors.Is(err, domain.ErrProposalNotFound) {
		t.Fatalf("expected ErrProposalNotFound for foreign user, got %v", err)
	}
}

func TestListProposals_Pagination(t *testing.T) {
	f := newProposalFixture()
	for i := 0; i < 5; i++ {
		if _, err := f.svc.CreateProposal(context.Background(), validInput()); err != nil {
			t.Fatalf("creation %d failed: %v", i, err)
		}
	}

	result, err := f.svc.ListProposals(context.Background(), ports.ListProposalsInput{UserID: "user_1", Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListProposals returned error: %v", err)
	}
	if result.Total != 5 || len(result.Items) != 2 || result.TotalPages != 3 {
		t.Fatalf("unexpected page: total=%d items=%d pages=%d", result.Total, len(result.Items), result.TotalPages)
	}
}

func TestListProposals_CapsLimit(t *testing.T) {
	f := newProposalFixture()

	result, err := f.svc.ListProposals(context.Background(), ports.ListProposalsInput{UserID: "user_1", Limit: 500})
	if err != nil {
		t.Fatalf("ListProposals returned error: %v", err)
	}
	if result.Limit != 100 {
		t.Fatalf("expected limit capped at 100, got %d", result.Limit)
	}
}

func TestSendProposal_Transition(t *testing.T) {
	f := newProposalFixture()
	created, _ := f.svc.CreateProposal(context.Background(), validInput())

	sent, err := f.svc.SendProposal(context.Background(), created.ProposalID, "user_1")
	if err != nil {
		t.Fatalf("SendProposal returned error: %v", err)
	}
	if sent.Status != domain.ProposalSent || sent.SentAt == nil {
		t.Fatalf("expected sent proposal with timestamp, got %+v", sent)
	}

	// Sending twice is an invalid transition.
	if _, err := f.svc.SendProposal(context.Background(), created.ProposalID, "user_1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Magic link surface
// ---------------------------------------------------------------------------

func TestResolveToken(t *testing.T) {
	f := newProposalFixture()
	created, _ := f.svc.CreateProposal(context.Background(), validInput())
	token := f.proposals.byID[created.ProposalID].MagicLinkToken

	view, err := f.svc.ResolveToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ResolveToken returned error: %v", err)
	}
	if view.Title != "Website Redesign" || view.ClientName != "Acme GmbH" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if len(view.Milestones) != 2 {
		t.Fatalf("expected milestone schedule in view, got %d entries", len(view.Milestones))
	}
}

func TestResolveToken_CacheMissFallsBack(t *testing.T) {
	f := newProposalFixture()
	created, _ := f.svc.CreateProposal(context.Background(), validInput())
	token := f.proposals.byID[created.ProposalID].MagicLinkToken

	f.tokens.cache = map[string]string{} // drop the cache

	if _, err := f.svc.ResolveToken(context.Background(), token); err != nil {
		t.Fatalf("expected Mongo fallback to resolve the token, got %v", err)
	}
}

func TestResolveToken_Unknown(t *testing.T) {
	f := newProposalFixture()

	if _, err := f.svc.ResolveToken(context.Background(), "nope"); !errors.Is(err, domain.ErrProposalNotFound) {
		t.Fatalf("expected ErrProposalNotFound, got %v", err)
	}
}

func TestAcceptByToken(t *testing.T) {
	f := newProposalFixture()
	created, _ := f.svc.CreateProposal(context.Background(), validInput())
	token := f.proposals.byID[created.ProposalID].MagicLinkToken

	// Draft proposals cannot be accepted yet.
	if _, err := f.svc.AcceptByToken(context.Background(), token); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for draft, got %v", err)
	}

	if _, err := f.svc.SendProposal(context.Background(), created.ProposalID, "user_1"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	view, err := f.svc.AcceptByToken(context.Background(), token)
	if err != nil {
		t.Fatalf("AcceptByToken returned error: %v", err)
	}
	if view.Status != string(domain.ProposalAccepted) {
		t.Fatalf("expected accepted view, got %s", view.Status)
	}

	stored := f.proposals.byID[created.ProposalID]
	if stored.Status != domain.ProposalAccepted || stored.AcceptedAt == nil {
		t.Fatalf("expected accepted proposal with timestamp, got %+v", stored)
	}
}
