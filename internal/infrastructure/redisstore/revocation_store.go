package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/todo-calendar-api/internal/domain/apperror"
	"github.com/oksasatya/todo-calendar-api/internal/domain/repository"
)

const revokedPrefix = "token:revoked:"

// RevocationStore keeps revoked token ids in Redis. Entries for expiring
// tokens carry a TTL so Redis drops them once the token is dead anyway.
type RevocationStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRevocationStore(rdb *redis.Client) *RevocationStore {
	return &RevocationStore{rdb: rdb, now: time.Now}
}

func revokedKey(jti string) string { return revokedPrefix + jti }

func (s *RevocationStore) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	var ttl time.Duration
	if !expiresAt.IsZero() {
		ttl = expiresAt.Sub(s.now())
		if ttl <= 0 {
			return nil
		}
	}
	err := s.rdb.Set(ctx, revokedKey(jti), userID, ttl).Err()
	return apperror.Internal("revocations.revoke", err)
}

func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, apperror.Internal("revocations.is_revoked", err)
	}
	return n > 0, nil
}

// Prune is a no-op: expired entries are removed by their TTL.
func (s *RevocationStore) Prune(context.Context, time.Time) (int, error) {
	return 0, nil
}

var _ repository.RevocationStore = (*RevocationStore)(nil)
