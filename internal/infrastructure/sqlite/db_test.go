package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSNForPlainPath(t *testing.T) {
	assert.Equal(t,
		"file:data/todo.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate",
		DSN("data/todo.db"))
}

func TestDSNKeepsOptionsAndAddsMissingPragmas(t *testing.T) {
	dsn := DSN("file:todo.db?_pragma=busy_timeout(100)&_txlock=deferred")
	assert.Equal(t, "file:todo.db?_pragma=busy_timeout(100)&_txlock=deferred&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", dsn)

	dsn = DSN("todo.db?_pragma=foreign_keys(0)")
	assert.Contains(t, dsn, "_pragma=foreign_keys(0)&")
	assert.Contains(t, dsn, "&_pragma=foreign_keys(1)")

	dsn = DSN("file:todo.db?_pragma=foreign_keys(1)")
	assert.Equal(t, 1, strings.Count(dsn, "foreign_keys"))
}

func TestOpenEnforcesForeignKeysForQueryPaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.db")
	db, err := Open(context.Background(), "file:"+path+"?_pragma=foreign_keys(0)", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var on int
	require.NoError(t, db.Get(&on, `PRAGMA foreign_keys`))
	assert.Equal(t, 1, on)
}

func TestFilePath(t *testing.T) {
	assert.Equal(t, "data/todo.db", FilePath("file:data/todo.db?_pragma=foreign_keys(1)"))
	assert.Equal(t, "todo.db", FilePath("todo.db"))
}
