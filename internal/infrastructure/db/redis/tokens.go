package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// reserveTTL only needs to cover the window between token generation and
	// the proposal insert, after which the unique Mongo index owns uniqueness.
	reserveTTL = time.Hour
	cacheTTL   = 7 * 24 * time.Hour
)

// TokenStore keeps magic link tokens unique across replicas and caches the
// token → proposal id mapping for the public share lookup.
// Key formats: reserve:token:<token>, proposal:token:<token>
type TokenStore struct {
	client *redis.Client
}

// NewTokenStore creates a TokenStore wrapping the given Redis client.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// Reserve claims a freshly generated token. It returns false when the token
// is already taken.
func (s *TokenStore) Reserve(ctx context.Context, token string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.reserveKey(token), "1", reserveTTL).Result()
	if err != nil {
		return false, fmt.Errorf("token reserve: %w", err)
	}
	return ok, nil
}

// CacheProposalID records the token → proposal id mapping (expires after cacheTTL).
func (s *TokenStore) CacheProposalID(ctx context.Context, token, proposalID string) error {
	return s.client.Set(ctx, s.cacheKey(token), proposalID, cacheTTL).Err()
}

// LookupProposalID returns the cached proposal id, or "" on a cache miss.
func (s *TokenStore) LookupProposalID(ctx context.Context, token string) (string, error) {
	id, err := s.client.Get(ctx, s.cacheKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("token lookup: %w", err)
	}
	return id, nil
}

func (s *TokenStore) reserveKey(token string) string {
	return "reserve:token:" + token
}

func (s *TokenStore) cacheKey(token string) string {
	return "proposal:token:" + token
}
