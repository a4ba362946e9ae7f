package repository

import "context"

// Registry bundles repositories that share one connection or transaction.
type Registry struct {
	Users      UserRepository
	Categories CategoryRepository
	Todos      TodoRepository
}

// Transactor runs fn inside a single store transaction. Returning an error
// from fn rolls everything back.
type Transactor interface {
	InTx(ctx context.Context, fn func(r Registry) error) error
}
