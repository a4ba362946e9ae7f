package repository

import (
	"context"

	"github.com/oksasatya/todo-calendar-api/internal/domain/entity"
)

// TodoRepository is scoped by owner on every call. The owner on the passed
// entities is overwritten with ownerID.
type TodoRepository interface {
	ListByOwner(ctx context.Context, ownerID string, f entity.TodoFilter) ([]entity.Todo, error)
	Create(ctx context.Context, ownerID string, t *entity.Todo) error
	// BulkCreate inserts every todo or none when used inside a transaction.
	BulkCreate(ctx context.Context, ownerID string, ts []entity.Todo) (int, error)
	Update(ctx context.Context, ownerID, id string, patch entity.TodoPatch) error
	Delete(ctx context.Context, ownerID, id string) error
	DeleteAll(ctx context.Context, ownerID string) (int, error)
}
