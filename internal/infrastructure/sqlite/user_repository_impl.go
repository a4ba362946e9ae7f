package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/oksasatya/todo-calendar-api/internal/domain/apperror"
	"github.com/oksasatya/todo-calendar-api/internal/domain/entity"
	"github.com/oksasatya/todo-calendar-api/internal/domain/repository"
)

type userRow struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Name         string `db:"name"`
	CreatedAt    string `db:"created_at"`
}

func (r userRow) toEntity() (*entity.User, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &entity.User{ID: r.ID, Email: r.Email, PasswordHash: r.PasswordHash, Name: r.Name, CreatedAt: created}, nil
}

type UserRepository struct {
	db sqlx.ExtContext
}

func NewUserRepository(db sqlx.ExtContext) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	const op = "users.create"
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash, u.Name, formatTime(u.CreatedAt))
	if isUniqueViolation(err) {
		return apperror.Conflict(op, "User with this email already exists")
	}
	return apperror.Internal(op, err)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.UserView, error) {
	const op = "users.get_by_id"
	var row userRow
	err := sqlx.GetContext(ctx, r.db, &row, `
		SELECT id, email, '' AS password_hash, name, created_at
		FROM users
		WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound(op, "User not found")
	}
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	u, err := row.toEntity()
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	view := u.View()
	return &view, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const op = "users.get_by_email"
	var row userRow
	err := sqlx.GetContext(ctx, r.db, &row, `
		SELECT id, email, password_hash, name, created_at
		FROM users
		WHERE email = ?
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound(op, "User not found")
	}
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	u, err := row.toEntity()
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	return u, nil
}

// Delete removes a user; categories and todos go with it through ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const op = "users.delete"
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return apperror.Internal(op, err)
	}
	return requireAffected(op, res, "User not found")
}

func requireAffected(op string, res sql.Result, notFound string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Internal(op, err)
	}
	if n == 0 {
		return apperror.NotFound(op, notFound)
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
