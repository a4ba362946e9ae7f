package repository

import (
	"context"

	"github.com/oksasatya/todo-calendar-api/internal/domain/entity"
)

// CategoryRepository is scoped by owner on every call.
type CategoryRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Category, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	Create(ctx context.Context, c *entity.Category) error
	CreateMany(ctx context.Context, cs []entity.Category) error
	Update(ctx context.Context, ownerID, id string, patch entity.CategoryPatch) error
	Delete(ctx context.Context, ownerID, id string) error
}
