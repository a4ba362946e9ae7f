package application

import (
	"context"

	"github.com/oksasatya/todo-calendar-api/internal/domain/entity"
)

type CategoryService struct {
	Store Store
}

func NewCategoryService(store Store) *CategoryService {
	return &CategoryService{Store: store}
}

func (s *CategoryService) List(ctx context.Context, ownerID string) ([]entity.Category, error) {
	return s.Store.Registry().Categories.ListByOwner(ctx, ownerID)
}

// Create stores c for ownerID, ignoring any owner set on c.
func (s *CategoryService) Create(ctx context.Context, ownerID string, c entity.Category) (string, error) {
	c.OwnerID = ownerID
	if err := s.Store.Registry().Categories.Create(ctx, &c); err != nil {
		return "", err
	}
	return c.ID, nil
}

func (s *CategoryService) Update(ctx context.Context, ownerID, id string, patch entity.CategoryPatch) error {
	return s.Store.Registry().Categories.Update(ctx, ownerID, id, patch)
}

func (s *CategoryService) Delete(ctx context.Context, ownerID, id string) error {
	return s.Store.Registry().Categories.Delete(ctx, ownerID, id)
}
