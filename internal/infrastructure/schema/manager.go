package schema

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	msqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	tablesMigration  = "migrations/000001_create_tables.up.sql"
	indexesMigration = "migrations/000002_create_indexes.up.sql"
)

// Options configures a Manager.
type Options struct {
	// DSN opens the separate handle golang-migrate owns and closes.
	DSN              string
	LegacyOwnerEmail string
	Logger           *logrus.Logger
}

// Manager brings the store to the expected shape on startup.
type Manager struct {
	db     *sqlx.DB
	opts   Options
	logger *logrus.Logger
}

func NewManager(db *sqlx.DB, opts Options) *Manager {
	if opts.LegacyOwnerEmail == "" {
		opts.LegacyOwnerEmail = "legacy@localhost"
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Manager{db: db, opts: opts, logger: logger}
}

// Status describes where the store stands.
type Status struct {
	Version        uint
	Dirty          bool
	OwnershipState string // empty when no upgrade was ever needed
	FallbackUserID string
}

// Migrate upgrades legacy ownerless tables, then applies versioned
// migrations. Running it again on a migrated store does nothing.
func (m *Manager) Migrate(ctx context.Context) error {
	if err := m.upgradeOwnership(ctx); err != nil {
		return fmt.Errorf("ownership upgrade: %w", err)
	}
	if err := m.runVersioned(); err != nil {
		return fmt.Errorf("versioned migrations: %w", err)
	}
	return nil
}

func (m *Manager) newMigrate() (*migrate.Migrate, error) {
	if m.opts.DSN == "" {
		return nil, errors.New("schema: DSN is required")
	}
	handle, err := sql.Open(sqlite.DriverName, m.opts.DSN)
	if err != nil {
		return nil, err
	}
	driver, err := msqlite.WithInstance(handle, &msqlite.Config{})
	if err != nil {
		_ = handle.Close()
		return nil, err
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		_ = driver.Close()
		return nil, err
	}
	return migrate.NewWithInstance("iofs", src, "sqlite", driver)
}

func (m *Manager) runVersioned() error {
	mg, err := m.newMigrate()
	if err != nil {
		return err
	}
	defer func() { _, _ = mg.Close() }()

	m.logger.Info("running migrations...")
	err = mg.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("no migrations to run")
		return nil
	}
	return err
}

// Status reports the migration version and the ownership upgrade state. It
// only reads: a store that was never migrated reports version 0.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	var st Status
	ok, err := tableExists(ctx, m.db, "ownership_migration")
	if err != nil {
		return st, err
	}
	if ok {
		rec, err := loadRecord(ctx, m.db)
		if err != nil {
			return st, err
		}
		if rec != nil {
			st.OwnershipState = string(rec.State)
			st.FallbackUserID = rec.FallbackUserID.String
		}
	}

	// golang-migrate creates its version table on open, so skip it when absent.
	ok, err = tableExists(ctx, m.db, "schema_migrations")
	if err != nil || !ok {
		return st, err
	}
	mg, err := m.newMigrate()
	if err != nil {
		return st, err
	}
	defer func() { _, _ = mg.Close() }()
	version, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return st, err
	}
	st.Version, st.Dirty = version, dirty
	return st, nil
}

func execFile(ctx context.Context, q sqlx.ExecerContext, name string) error {
	body, err := fs.ReadFile(migrationsFS, name)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, string(body))
	return err
}
