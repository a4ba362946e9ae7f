package schema

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/sqlite"
)

const legacyDDL = `
CREATE TABLE categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    icon TEXT NOT NULL,
    color TEXT NOT NULL
);
CREATE TABLE todos (
    id TEXT PRIMARY KEY,
    text TEXT NOT NULL,
    completed INTEGER DEFAULT 0,
    date TEXT NOT NULL,
    categoryId TEXT,
    FOREIGN KEY (categoryId) REFERENCES categories(id)
);
INSERT INTO categories (id, name, icon, color) VALUES
    ('work', 'Work', 'Briefcase', '#3b82f6'),
    ('home', 'Home', 'Home', '#ec4899');
INSERT INTO todos (id, text, completed, date, categoryId) VALUES
    ('t1', 'buy milk', 0, '2024-01-01', 'home'),
    ('t2', 'ship report', 1, '2024-01-02T09:00:00.000Z', 'work'),
    ('t3', 'call mom', NULL, '2024-01-03', NULL);
`

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

func newManager(t *testing.T, seed string) (*Manager, *sqlx.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todo.db")
	db, err := sqlite.Open(context.Background(), path, 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	if seed != "" {
		_, err := db.Exec(seed)
		require.NoError(t, err)
	}
	return NewManager(db, Options{DSN: sqlite.DSN(path), Logger: quietLogger()}), db
}

func count(t *testing.T, db *sqlx.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, query, args...))
	return n
}

func rowCounts(t *testing.T, db *sqlx.DB) [3]int {
	return [3]int{
		count(t, db, `SELECT COUNT(*) FROM users`),
		count(t, db, `SELECT COUNT(*) FROM categories`),
		count(t, db, `SELECT COUNT(*) FROM todos`),
	}
}

func TestMigrateFreshStore(t *testing.T) {
	ctx := context.Background()
	m, db := newManager(t, "")

	require.NoError(t, m.Migrate(ctx))

	for _, table := range []string{"users", "categories", "todos", "token_revocations"} {
		ok, err := tableExists(ctx, db, table)
		require.NoError(t, err)
		assert.True(t, ok, table)
	}
	legacy, err := hasLegacyTables(ctx, db)
	require.NoError(t, err)
	assert.False(t, legacy)

	st, err := m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(3), st.Version)
	assert.False(t, st.Dirty)
	assert.Empty(t, st.OwnershipState)
	assert.Equal(t, [3]int{0, 0, 0}, rowCounts(t, db))
}

func TestStatusDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	m, db := newManager(t, legacyDDL)

	st, err := m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(0), st.Version)
	assert.Empty(t, st.OwnershipState)

	for _, table := range []string{"ownership_migration", "schema_migrations", "users"} {
		ok, err := tableExists(ctx, db, table)
		require.NoError(t, err)
		assert.False(t, ok, table)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m, db := newManager(t, legacyDDL)

	require.NoError(t, m.Migrate(ctx))
	first := rowCounts(t, db)
	require.NoError(t, m.Migrate(ctx))
	assert.Equal(t, first, rowCounts(t, db))
}

func TestMigrateUpgradesLegacyTables(t *testing.T) {
	ctx := context.Background()
	m, db := newManager(t, legacyDDL)

	require.NoError(t, m.Migrate(ctx))

	st, err := m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(StateComplete), st.OwnershipState)
	require.NotEmpty(t, st.FallbackUserID)

	for _, table := range []string{"categories_legacy", "todos_legacy"} {
		ok, err := tableExists(ctx, db, table)
		require.NoError(t, err)
		assert.False(t, ok, table)
	}

	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM users WHERE email = 'legacy@localhost'`))
	assert.Equal(t, 2, count(t, db, `SELECT COUNT(*) FROM categories WHERE user_id = ?`, st.FallbackUserID))
	assert.Equal(t, 3, count(t, db, `SELECT COUNT(*) FROM todos WHERE user_id = ?`, st.FallbackUserID))
	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM todos WHERE completed = 1`))
	assert.Equal(t, 0, count(t, db, `SELECT COUNT(*) FROM todos WHERE completed IS NULL`))
	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM todos WHERE id = 't1' AND category_id = 'home'`))

	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_todos_user_date'`))
}

func TestMigrateSeedsFallbackOwnerWithoutCategories(t *testing.T) {
	ctx := context.Background()
	m, db := newManager(t, `
		CREATE TABLE todos (id TEXT PRIMARY KEY, text TEXT NOT NULL, completed INTEGER DEFAULT 0, date TEXT NOT NULL, categoryId TEXT);
		INSERT INTO todos (id, text, date) VALUES ('t1', 'water plants', '2024-02-01');
	`)

	require.NoError(t, m.Migrate(ctx))
	st, err := m.Status(ctx)
	require.NoError(t, err)

	assert.Equal(t, 6, count(t, db, `SELECT COUNT(*) FROM categories WHERE user_id = ?`, st.FallbackUserID))
	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM todos WHERE user_id = ?`, st.FallbackUserID))

	require.NoError(t, m.Migrate(ctx))
	assert.Equal(t, 6, count(t, db, `SELECT COUNT(*) FROM categories`))
}

func TestMigrateReusesExistingFallbackOwner(t *testing.T) {
	ctx := context.Background()
	m, db := newManager(t, legacyDDL+`
		CREATE TABLE users (id TEXT PRIMARY KEY, email TEXT NOT NULL UNIQUE, password_hash TEXT NOT NULL, name TEXT NOT NULL, created_at TEXT NOT NULL);
		INSERT INTO users VALUES ('owner-1', 'legacy@localhost', '!locked', 'Legacy Owner', '2024-01-01T00:00:00.000000000Z');
	`)

	require.NoError(t, m.Migrate(ctx))
	st, err := m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", st.FallbackUserID)
	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM users`))
}

func TestMigrateResumesInterruptedUpgrade(t *testing.T) {
	ctx := context.Background()
	m, db := newManager(t, legacyDDL)

	// Simulate a crash right after the rename step committed.
	require.NoError(t, ensureStateTable(ctx, db))
	require.NoError(t, sqlite.WithTransaction(ctx, db, func(tx *sqlx.Tx) error { return m.start(ctx, tx) }))
	rec, err := loadRecord(ctx, db)
	require.NoError(t, err)
	require.NoError(t, sqlite.WithTransaction(ctx, db, func(tx *sqlx.Tx) error {
		if err := m.renameLegacy(ctx, tx, rec); err != nil {
			return err
		}
		return advance(ctx, tx, StatePending, StateRenamed)
	}))

	ok, err := tableExists(ctx, db, "todos_legacy")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, m.Migrate(ctx))

	st, err := m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(StateComplete), st.OwnershipState)
	assert.Equal(t, 3, count(t, db, `SELECT COUNT(*) FROM todos`))
	ok, err = tableExists(ctx, db, "todos_legacy")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdvanceRejectsStaleState(t *testing.T) {
	ctx := context.Background()
	m, db := newManager(t, legacyDDL)
	require.NoError(t, ensureStateTable(ctx, db))
	require.NoError(t, sqlite.WithTransaction(ctx, db, func(tx *sqlx.Tx) error { return m.start(ctx, tx) }))

	err := sqlite.WithTransaction(ctx, db, func(tx *sqlx.Tx) error {
		return advance(ctx, tx, StateCopied, StateIndexed)
	})
	assert.Error(t, err)
}

const ownedCamelCaseDDL = `
CREATE TABLE users (
    id TEXT PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    password TEXT NOT NULL,
    name TEXT NOT NULL,
    createdAt TEXT NOT NULL
);
CREATE TABLE categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    icon TEXT NOT NULL,
    color TEXT NOT NULL,
    userId TEXT NOT NULL,
    FOREIGN KEY (userId) REFERENCES users(id) ON DELETE CASCADE
);
CREATE TABLE todos (
    id TEXT PRIMARY KEY,
    text TEXT NOT NULL,
    completed INTEGER DEFAULT 0,
    date TEXT NOT NULL,
    categoryId TEXT,
    userId TEXT NOT NULL
);
INSERT INTO users (id, email, password, name, createdAt) VALUES
    ('u1', 'a@x.com', '$2a$10$abcdefghijklmnopqrstuu', 'Alice', '2024-01-01T10:00:00.000Z');
INSERT INTO categories (id, name, icon, color, userId) VALUES
    ('u1-work', 'Work', 'Briefcase', '#3b82f6', 'u1');
INSERT INTO todos (id, text, completed, date, categoryId, userId) VALUES
    ('t1', 'ship report', 1, '2024-01-02', 'u1-work', 'u1'),
    ('t2', 'orphan', 0, '2024-01-03', NULL, 'gone');
`

func TestMigrateCarriesCamelCaseOwnership(t *testing.T) {
	ctx := context.Background()
	m, db := newManager(t, ownedCamelCaseDDL)

	legacy, err := hasLegacyTables(ctx, db)
	require.NoError(t, err)
	require.True(t, legacy)

	require.NoError(t, m.Migrate(ctx))
	st, err := m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(StateComplete), st.OwnershipState)
	require.NotEmpty(t, st.FallbackUserID)

	for _, table := range []string{"users_legacy", "categories_legacy", "todos_legacy"} {
		ok, err := tableExists(ctx, db, table)
		require.NoError(t, err)
		assert.False(t, ok, table)
	}

	u, err := sqlite.NewUserRepository(db).GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "$2a$10$abcdefghijklmnopqrstuu", u.PasswordHash)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, 2024, u.CreatedAt.Year())

	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM categories WHERE id = 'u1-work' AND user_id = 'u1'`))
	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM todos WHERE id = 't1' AND user_id = 'u1' AND category_id = 'u1-work'`))
	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM todos WHERE id = 't2' AND user_id = ?`, st.FallbackUserID))

	// The cascade now runs through the rebuilt foreign keys.
	require.NoError(t, sqlite.NewUserRepository(db).Delete(ctx, "u1"))
	assert.Equal(t, 0, count(t, db, `SELECT COUNT(*) FROM todos WHERE user_id = 'u1'`))

	require.NoError(t, m.Migrate(ctx))
}
