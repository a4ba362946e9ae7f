package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/oksasatya/todo-calendar-api/internal/domain/apperror"
	"github.com/oksasatya/todo-calendar-api/internal/domain/repository"
)

// RevocationStore keeps revoked token ids in the token_revocations table.
type RevocationStore struct {
	db sqlx.ExtContext
}

func NewRevocationStore(db sqlx.ExtContext) *RevocationStore {
	return &RevocationStore{db: db}
}

func (s *RevocationStore) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	var exp any
	if !expiresAt.IsZero() {
		exp = formatTime(expiresAt)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO token_revocations (jti, user_id, expires_at, revoked_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (jti) DO NOTHING
	`, jti, userID, exp, formatTime(time.Now()))
	return apperror.Internal("revocations.revoke", err)
}

func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var found bool
	err := sqlx.GetContext(ctx, s.db, &found, `SELECT EXISTS (SELECT 1 FROM token_revocations WHERE jti = ?)`, jti)
	if err != nil {
		return false, apperror.Internal("revocations.is_revoked", err)
	}
	return found, nil
}

func (s *RevocationStore) Prune(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM token_revocations
		WHERE expires_at IS NOT NULL AND expires_at <= ?
	`, formatTime(now))
	if err != nil {
		return 0, apperror.Internal("revocations.prune", err)
	}
	n, err := res.RowsAffected()
	return int(n), apperror.Internal("revocations.prune", err)
}

var _ repository.RevocationStore = (*RevocationStore)(nil)
