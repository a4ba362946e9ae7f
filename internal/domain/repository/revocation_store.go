package repository

import (
	"context"
	"time"
)

// RevocationStore remembers token ids that must no longer be accepted.
// A zero expiresAt means the token never expires and is kept until deleted.
type RevocationStore interface {
	Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Prune drops entries whose token would be rejected for expiry anyway.
	Prune(ctx context.Context, now time.Time) (int, error)
}
