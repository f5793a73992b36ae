package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrResetTokenInvalid is returned when a reset token is unknown or expired.
var ErrResetTokenInvalid = errors.New("reset token invalid or expired")

// ResetTokenStore keeps single-use password-reset tokens in Redis with a TTL.
type ResetTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResetTokenStore creates a store; tokens expire after ttl.
func NewResetTokenStore(client *redis.Client, ttl time.Duration) *ResetTokenStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResetTokenStore{client: client, ttl: ttl}
}

func resetKey(token string) string { return "pwreset:" + token }

// Issue stores a fresh token for the user and returns it.
func (s *ResetTokenStore) Issue(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, resetKey(token), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("auth: store reset token: %w", err)
	}
	return token, nil
}

// Consume resolves a token to its user id and deletes it so it cannot be
// replayed.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, resetKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrResetTokenInvalid
	}
	if err != nil {
		return "", fmt.Errorf("auth: consume reset token: %w", err)
	}
	return userID, nil
}
