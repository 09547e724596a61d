package ports

import (
	"context"

	"github.com/flowsuit/flowsuit-api/internal/core/domain"
)

// ClientRepository defines persistence operations for clients. Every query is
// scoped by the owning user's id; cross-user access is not expressible.
type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) (*domain.Client, error)
	// FindByID retrieves a client owned by userID, or domain.ErrClientNotFound.
	FindByID(ctx context.Context, id, userID string) (*domain.Client, error)
	// List returns all clients for userID, newest first.
	List(ctx context.Context, userID string) ([]*domain.Client, error)
	Count(ctx context.Context, userID string) (int64, error)
}
