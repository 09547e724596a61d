package ports

import (
	"context"

	"github.com/flowsuit/flowsuit-api/internal/core/domain"
)

// CreateClientInput carries all data needed to create a new client record.
// Optional fields are stored empty when not provided.
type CreateClientInput struct {
	UserID  string
	Name    string
	Email   string
	Phone   string
	Company string
	Address string
	Notes   string
}

// ClientService defines use-case operations for clients.
type ClientService interface {
	CreateClient(ctx context.Context, input CreateClientInput) (*domain.Client, error)
	ListClients(ctx context.Context, userID string) ([]*domain.Client, error)
}
