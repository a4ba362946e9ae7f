package application

import (
	"context"

	"github.com/oksasatya/todo-calendar-api/internal/domain/apperror"
	"github.com/oksasatya/todo-calendar-api/internal/domain/entity"
	repo "github.com/oksasatya/todo-calendar-api/internal/domain/repository"
)

type TodoService struct {
	Store Store
}

func NewTodoService(store Store) *TodoService {
	return &TodoService{Store: store}
}

func (s *TodoService) List(ctx context.Context, ownerID string, f entity.TodoFilter) ([]entity.Todo, error) {
	return s.Store.Registry().Todos.ListByOwner(ctx, ownerID, f)
}

func (s *TodoService) Create(ctx context.Context, ownerID string, t entity.Todo) (string, error) {
	if err := s.Store.Registry().Todos.Create(ctx, ownerID, &t); err != nil {
		return "", err
	}
	return t.ID, nil
}

// BulkCreate inserts every todo or none of them.
func (s *TodoService) BulkCreate(ctx context.Context, ownerID string, ts []entity.Todo) (int, error) {
	var n int
	err := s.Store.InTx(ctx, func(r repo.Registry) error {
		var err error
		n, err = r.Todos.BulkCreate(ctx, ownerID, ts)
		return err
	})
	if err != nil {
		return 0, apperror.Internal("todos.bulk_create", err)
	}
	return n, nil
}

func (s *TodoService) Update(ctx context.Context, ownerID, id string, patch entity.TodoPatch) error {
	return s.Store.Registry().Todos.Update(ctx, ownerID, id, patch)
}

func (s *TodoService) Delete(ctx context.Context, ownerID, id string) error {
	return s.Store.Registry().Todos.Delete(ctx, ownerID, id)
}

func (s *TodoService) DeleteAll(ctx context.Context, ownerID string) (int, error) {
	return s.Store.Registry().Todos.DeleteAll(ctx, ownerID)
}

// Export returns every todo the owner has, newest date first.
func (s *TodoService) Export(ctx context.Context, ownerID string) ([]entity.Todo, error) {
	return s.List(ctx, ownerID, entity.TodoFilter{})
}

type ImportResult struct {
	Count        int `json:"count"`
	DeletedCount int `json:"deletedCount"`
}

// Import replaces all of the owner's todos with ts in one transaction. An
// empty ts clears the owner's todos.
func (s *TodoService) Import(ctx context.Context, ownerID string, ts []entity.Todo) (*ImportResult, error) {
	const op = "todos.import"
	for i := range ts {
		if ts[i].ID == "" || ts[i].Text == "" || ts[i].Date == "" {
			return nil, apperror.Validation(op, "Invalid todo data at index %d: missing required fields", i)
		}
	}
	var res ImportResult
	err := s.Store.InTx(ctx, func(r repo.Registry) error {
		var err error
		if res.DeletedCount, err = r.Todos.DeleteAll(ctx, ownerID); err != nil {
			return err
		}
		if len(ts) == 0 {
			return nil
		}
		res.Count, err = r.Todos.BulkCreate(ctx, ownerID, ts)
		return err
	})
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	return &res, nil
}
