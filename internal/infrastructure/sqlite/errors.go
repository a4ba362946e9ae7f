package sqlite

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/oksasatya/todo-calendar-api/internal/domain/apperror"
)

// isUniqueViolation reports whether err comes from a primary key or unique
// constraint. The message check covers drivers that do not expose codes.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY constraint failed")
}

// isForeignKeyViolation reports whether err comes from a foreign key check.
// The only enforced reference is user_id, so on insert it means the owner is gone.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// ownerGone is returned when a write names an owner that no longer exists,
// e.g. a still-valid token of a deleted account.
func ownerGone(op string) error {
	return apperror.Unauthenticated(op, "User no longer exists")
}
