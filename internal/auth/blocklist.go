package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const revokedKeyPrefix = "auth:revoked:"

// RevocationStore persists revoked token ids until their natural expiry.
// Backed by a shared store rather than process memory so revocation survives
// restarts and applies across all API instances.
type RevocationStore interface {
	// Revoke marks a token id as revoked for the given lifetime. The TTL
	// should be the remaining validity of the token; keeping the record
	// longer serves no purpose since expired tokens fail verification anyway.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error

	// IsRevoked reports whether a token id has been revoked.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// redisRevocationStore implements RevocationStore on Redis with expiring keys.
type redisRevocationStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRevocationStore creates a Redis-backed revocation store and verifies
// connectivity.
func NewRevocationStore(ctx context.Context, client *redis.Client, logger zerolog.Logger) (RevocationStore, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &redisRevocationStore{
		client: client,
		logger: logger.With().Str("store", "revocation").Logger(),
	}, nil
}

func (s *redisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired; nothing to persist.
		return nil
	}

	if err := s.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		s.logger.Error().Err(err).Str("token_id", tokenID).Msg("failed to record revocation")
		return fmt.Errorf("failed to record revocation: %w", err)
	}

	s.logger.Debug().Str("token_id", tokenID).Dur("ttl", ttl).Msg("token revoked")
	return nil
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		s.logger.Error().Err(err).Str("token_id", tokenID).Msg("failed to check revocation")
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return n > 0, nil
}
