package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/flowsuit/flowsuit-api/internal/core/domain"
	"github.com/flowsuit/flowsuit-api/internal/core/ports"
)

// ClientService implements client creation and listing.
type ClientService struct {
	repo   ports.ClientRepository
	logger zerolog.Logger
}

func NewClientService(repo ports.ClientRepository, logger zerolog.Logger) *ClientService {
	return &ClientService{repo: repo, logger: logger}
}

// CreateClient persists a new client owned by the acting user.
func (s *ClientService) CreateClient(ctx context.Context, input ports.CreateClientInput) (*domain.Client, error) {
	client := &domain.Client{
		UserID:    input.UserID,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Company:   input.Company,
		Address:   input.Address,
		Notes:     input.Notes,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, client)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create client")
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.logger.Info().Str("client_id", created.ID).Str("user_id", input.UserID).Msg("client created")
	return created, nil
}

// ListClients returns the user's clients, newest first.
func (s *ClientService) ListClients(ctx context.Context, userID string) ([]*domain.Client, error) {
	clients, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}
