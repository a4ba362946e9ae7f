package sqlite

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/oksasatya/todo-calendar-api/internal/domain/apperror"
	"github.com/oksasatya/todo-calendar-api/internal/domain/entity"
	"github.com/oksasatya/todo-calendar-api/internal/domain/repository"
)

type categoryRow struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Icon    string `db:"icon"`
	Color   string `db:"color"`
	OwnerID string `db:"user_id"`
}

type CategoryRepository struct {
	db sqlx.ExtContext
}

func NewCategoryRepository(db sqlx.ExtContext) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.Category, error) {
	const op = "categories.list"
	query, args, err := sq.Select("id", "name", "icon", "color", "user_id").
		From("categories").
		Where(sq.Eq{"user_id": ownerID}).
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	var rows []categoryRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, apperror.Internal(op, err)
	}
	out := make([]entity.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.Category(row))
	}
	return out, nil
}

func (r *CategoryRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM categories WHERE user_id = ?`, ownerID)
	return n, apperror.Internal("categories.count", err)
}

func (r *CategoryRepository) Create(ctx context.Context, c *entity.Category) error {
	const op = "categories.create"
	if c.ID == "" || c.Name == "" || c.Icon == "" || c.Color == "" {
		return apperror.Validation(op, "Missing required fields")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, icon, color, user_id)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Icon, c.Color, c.OwnerID)
	switch {
	case isUniqueViolation(err):
		return apperror.Conflict(op, "Category with id '%s' already exists", c.ID)
	case isForeignKeyViolation(err):
		return ownerGone(op)
	}
	return apperror.Internal(op, err)
}

// CreateMany inserts all categories or none.
func (r *CategoryRepository) CreateMany(ctx context.Context, cs []entity.Category) error {
	return withTx(ctx, r.db, func(q sqlx.ExtContext) error {
		tx := NewCategoryRepository(q)
		for i := range cs {
			if err := tx.Create(ctx, &cs[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CategoryRepository) Update(ctx context.Context, ownerID, id string, patch entity.CategoryPatch) error {
	const op = "categories.update"
	if patch.IsEmpty() {
		return apperror.Validation(op, "No fields to update")
	}
	for _, v := range []*string{patch.Name, patch.Icon, patch.Color} {
		if v != nil && *v == "" {
			return apperror.Validation(op, "Fields cannot be empty")
		}
	}
	query, args, err := sq.Update("categories").
		Set("name", sq.Expr("COALESCE(?, name)", nullableString(patch.Name))).
		Set("icon", sq.Expr("COALESCE(?, icon)", nullableString(patch.Icon))).
		Set("color", sq.Expr("COALESCE(?, color)", nullableString(patch.Color))).
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		ToSql()
	if err != nil {
		return apperror.Internal(op, err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperror.Internal(op, err)
	}
	return requireAffected(op, res, "Category not found")
}

// Delete leaves todos that reference the category untouched.
func (r *CategoryRepository) Delete(ctx context.Context, ownerID, id string) error {
	const op = "categories.delete"
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return apperror.Internal(op, err)
	}
	return requireAffected(op, res, "Category not found")
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)
