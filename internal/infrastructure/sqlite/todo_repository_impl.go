package sqlite

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/oksasatya/todo-calendar-api/internal/domain/apperror"
	"github.com/oksasatya/todo-calendar-api/internal/domain/entity"
	"github.com/oksasatya/todo-calendar-api/internal/domain/repository"
)

// todoRow mirrors the stored shape; completed is an INTEGER 0/1.
type todoRow struct {
	ID         string         `db:"id"`
	Text       string         `db:"text"`
	Completed  int64          `db:"completed"`
	Date       string         `db:"date"`
	CategoryID sql.NullString `db:"category_id"`
	OwnerID    string         `db:"user_id"`
}

func (r todoRow) toEntity() entity.Todo {
	t := entity.Todo{
		ID:        r.ID,
		Text:      r.Text,
		Completed: r.Completed != 0,
		Date:      r.Date,
		OwnerID:   r.OwnerID,
	}
	if r.CategoryID.Valid {
		id := r.CategoryID.String
		t.CategoryID = &id
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type TodoRepository struct {
	db sqlx.ExtContext
}

func NewTodoRepository(db sqlx.ExtContext) *TodoRepository {
	return &TodoRepository{db: db}
}

// ListByOwner returns the owner's todos, newest date first.
func (r *TodoRepository) ListByOwner(ctx context.Context, ownerID string, f entity.TodoFilter) ([]entity.Todo, error) {
	const op = "todos.list"
	q := sq.Select("id", "text", "completed", "date", "category_id", "user_id").
		From("todos").
		Where(sq.Eq{"user_id": ownerID})
	if f.From != "" {
		q = q.Where(sq.GtOrEq{"date": f.From})
	}
	if f.To != "" {
		q = q.Where(sq.Lt{"date": f.To})
	}
	if f.CategoryID != "" {
		q = q.Where(sq.Eq{"category_id": f.CategoryID})
	}
	if f.Completed != nil {
		q = q.Where(sq.Eq{"completed": boolToInt(*f.Completed)})
	}
	query, args, err := q.OrderBy("date DESC", "id").ToSql()
	if err != nil {
		return nil, apperror.Internal(op, err)
	}

	var rows []todoRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, apperror.Internal(op, err)
	}
	out := make([]entity.Todo, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func validateTodo(t *entity.Todo) bool {
	return t.ID != "" && t.Text != "" && t.Date != ""
}

func (r *TodoRepository) Create(ctx context.Context, ownerID string, t *entity.Todo) error {
	const op = "todos.create"
	if !validateTodo(t) {
		return apperror.Validation(op, "Missing required fields")
	}
	return r.insert(ctx, r.db, op, ownerID, t)
}

func (r *TodoRepository) insert(ctx context.Context, db sqlx.ExtContext, op, ownerID string, t *entity.Todo) error {
	t.OwnerID = ownerID
	_, err := db.ExecContext(ctx, `
		INSERT INTO todos (id, text, completed, date, category_id, user_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.ID, t.Text, boolToInt(t.Completed), t.Date, nullableString(t.CategoryID), ownerID)
	switch {
	case isUniqueViolation(err):
		return apperror.Conflict(op, "Todo with id '%s' already exists", t.ID)
	case isForeignKeyViolation(err):
		return ownerGone(op)
	}
	return apperror.Internal(op, err)
}

// BulkCreate validates every item before writing and inserts all of them in
// one transaction. Any failure leaves the table unchanged.
func (r *TodoRepository) BulkCreate(ctx context.Context, ownerID string, ts []entity.Todo) (int, error) {
	const op = "todos.bulk_create"
	if len(ts) == 0 {
		return 0, apperror.Validation(op, "Empty array provided")
	}
	for i := range ts {
		if !validateTodo(&ts[i]) {
			return 0, apperror.Validation(op, "Invalid todo data at index %d: missing required fields", i)
		}
	}
	err := withTx(ctx, r.db, func(q sqlx.ExtContext) error {
		for i := range ts {
			if err := r.insert(ctx, q, op, ownerID, &ts[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(ts), nil
}

func (r *TodoRepository) Update(ctx context.Context, ownerID, id string, patch entity.TodoPatch) error {
	const op = "todos.update"
	if patch.IsEmpty() {
		return apperror.Validation(op, "No fields to update")
	}
	if (patch.Text != nil && *patch.Text == "") || (patch.Date != nil && *patch.Date == "") {
		return apperror.Validation(op, "text and date cannot be empty")
	}
	var completed any
	if patch.Completed != nil {
		completed = boolToInt(*patch.Completed)
	}
	query, args, err := sq.Update("todos").
		Set("text", sq.Expr("COALESCE(?, text)", nullableString(patch.Text))).
		Set("completed", sq.Expr("COALESCE(?, completed)", completed)).
		Set("date", sq.Expr("COALESCE(?, date)", nullableString(patch.Date))).
		Set("category_id", sq.Expr("CASE WHEN ? THEN ? ELSE category_id END",
			boolToInt(patch.CategoryID.Set), nullableString(patch.CategoryID.Value))).
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		ToSql()
	if err != nil {
		return apperror.Internal(op, err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperror.Internal(op, err)
	}
	return requireAffected(op, res, "Todo not found")
}

func (r *TodoRepository) Delete(ctx context.Context, ownerID, id string) error {
	const op = "todos.delete"
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return apperror.Internal(op, err)
	}
	return requireAffected(op, res, "Todo not found")
}

func (r *TodoRepository) DeleteAll(ctx context.Context, ownerID string) (int, error) {
	const op = "todos.delete_all"
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE user_id = ?`, ownerID)
	if err != nil {
		return 0, apperror.Internal(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperror.Internal(op, err)
	}
	return int(n), nil
}

var _ repository.TodoRepository = (*TodoRepository)(nil)
