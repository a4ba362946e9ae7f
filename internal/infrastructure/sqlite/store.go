package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/oksasatya/todo-calendar-api/internal/domain/repository"
)

// Store hands out repositories bound to the shared handle or to a transaction.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sqlx.DB { return s.db }

func registryFor(q sqlx.ExtContext) repository.Registry {
	return repository.Registry{
		Users:      NewUserRepository(q),
		Categories: NewCategoryRepository(q),
		Todos:      NewTodoRepository(q),
	}
}

// Registry returns repositories outside any transaction.
func (s *Store) Registry() repository.Registry {
	return registryFor(s.db)
}

func (s *Store) InTx(ctx context.Context, fn func(r repository.Registry) error) error {
	return WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(registryFor(tx))
	})
}

var _ repository.Transactor = (*Store)(nil)
