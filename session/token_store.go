package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore is a redis-backed revocation list. JWTs stay stateless on the
// happy path; only revoked jtis are stored, each expiring with its token.
type TokenStore struct {
	rdb *redis.Client
}

func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

func revokedKey(jti string) string { return fmt.Sprintf("auth:revoked:%s", jti) }
func userSetKey(uid string) string { return fmt.Sprintf("auth:user_tokens:%s", uid) }

// Track remembers which jtis belong to a user so they can all be revoked at
// once when the account is deleted or deactivated.
func (s *TokenStore) Track(ctx context.Context, userID, jti string, ttl time.Duration) error {
	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, userSetKey(userID), jti)
	pipe.Expire(ctx, userSetKey(userID), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *TokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return s.rdb.Set(ctx, revokedKey(jti), "1", ttl).Err()
}

func (s *TokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := s.rdb.Get(ctx, revokedKey(jti)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RevokeAllForUser kills every tracked token of the user.
func (s *TokenStore) RevokeAllForUser(ctx context.Context, userID string, ttl time.Duration) error {
	ids, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	for _, jti := range ids {
		pipe.Set(ctx, revokedKey(jti), "1", ttl)
	}
	pipe.Del(ctx, userSetKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}
