package application

import "github.com/oksasatya/todo-calendar-api/internal/domain/repository"

// Store gives services plain repositories for single statements and a
// transaction for anything that writes more than one row.
type Store interface {
	repository.Transactor
	Registry() repository.Registry
}
