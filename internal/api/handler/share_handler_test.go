package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/flowsuit/flowsuit-api/internal/core/domain"
	"github.com/flowsuit/flowsuit-api/internal/core/ports"
)

func TestShareHandler_View_Success(t *testing.T) {
	stub := &stubProposalService{
		resolveFn: func(ctx context.Context, token string) (*ports.ShareView, error) {
			if token != "deadbeef" {
				t.Fatalf("unexpected token: %s", token)
			}
			return &ports.ShareView{
				Title:       "Website Redesign",
				ClientName:  "Acme GmbH",
				TotalAmount: 5000,
				Status:      "sent",
				Milestones: []ports.MilestoneItem{
					{ID: "m1", Title: "Deposit (50%)", Amount: 2500, Status: "pending"},
				},
			}, nil
		},
	}
	handler := NewShareHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/p/deadbeef", "")
	c.SetParamNames("token")
	c.SetParamValues("deadbeef")

	if err := handler.View(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["title"] != "Website Redesign" || resp["total_amount"] != float64(5000) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	// No internal ids in the public payload.
	for _, key := range []string{"id", "user_id", "client_id", "project_id"} {
		if _, present := resp[key]; present {
			t.Fatalf("public view must not expose %q", key)
		}
	}
}

func TestShareHandler_View_UnknownToken(t *testing.T) {
	stub := &stubProposalService{
		resolveFn: func(ctx context.Context, token string) (*ports.ShareView, error) {
			return nil, domain.ErrProposalNotFound
		},
	}
	handler := NewShareHandler(stub)

	c, _ := newTestContext(t, http.MethodGet, "/p/bogus", "")
	c.SetParamNames("token")
	c.SetParamValues("bogus")

	if err := handler.View(c); !errors.Is(err, domain.ErrProposalNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestShareHandler_Accept_PropagatesTransitionError(t *testing.T) {
	stub := &stubProposalService{
		acceptFn: func(ctx context.Context, token string) (*ports.ShareView, error) {
			return nil, domain.ErrInvalidTransition
		},
	}
	handler := NewShareHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/p/deadbeef/accept", "")
	c.SetParamNames("token")
	c.SetParamValues("deadbeef")

	if err := handler.Accept(c); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected transition error, got %v", err)
	}
}

func TestShareHandler_Accept_Success(t *testing.T) {
	stub := &stubProposalService{
		acceptFn: func(ctx context.Context, token string) (*ports.ShareView, error) {
			return &ports.ShareView{Title: "Website Redesign", Status: "accepted", TotalAmount: 5000}, nil
		},
	}
	handler := NewShareHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/p/deadbeef/accept", "")
	c.SetParamNames("token")
	c.SetParamValues("deadbeef")

	if err := handler.Accept(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "accepted" {
		t.Fatalf("expected accepted status, got %v", resp["status"])
	}
}
