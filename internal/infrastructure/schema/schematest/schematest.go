// Package schematest opens fully migrated throwaway stores for tests.
package schematest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/schema"
	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/sqlite"
)

// NewDB returns a migrated store in a temp dir, closed when the test ends.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todo.db")
	db, err := sqlite.Open(context.Background(), path, 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	m := schema.NewManager(db, schema.Options{DSN: sqlite.DSN(path), Logger: logger})
	require.NoError(t, m.Migrate(context.Background()))
	return db
}
