package notification

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// TokenStore keeps the FCM device token registered for each user.
type TokenStore interface {
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, token string) error
}

// RedisTokenStore stores device tokens in Redis. Tokens have no TTL; clients
// re-register on every app start.
type RedisTokenStore struct {
	Client *redis.Client
}

func tokenKey(userID string) string {
	return "fcm:token:" + userID
}

// Get returns the registered token, or "" when the user has none.
func (s *RedisTokenStore) Get(ctx context.Context, userID string) (string, error) {
	token, err := s.Client.Get(ctx, tokenKey(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// Set registers (or replaces) the user's token.
func (s *RedisTokenStore) Set(ctx context.Context, userID, token string) error {
	return s.Client.Set(ctx, tokenKey(userID), token, 0).Err()
}
