package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-calendar-api/internal/domain/apperror"
	"github.com/oksasatya/todo-calendar-api/internal/domain/entity"
	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/sqlite"
)

// OwnershipState is the persisted progress of the one-time upgrade that moves
// categories and todos without a user_id column (ownerless, or owned through
// the older camelCase userId column) onto the current schema.
type OwnershipState string

const (
	StatePending  OwnershipState = "pending"
	StateRenamed  OwnershipState = "renamed"
	StateCopied   OwnershipState = "copied"
	StateIndexed  OwnershipState = "indexed"
	StateComplete OwnershipState = "complete"
)

const (
	fallbackOwnerName = "Legacy Owner"
	legacySuffix      = "_legacy"
)

var ownedTables = []string{"categories", "todos"}

type ownershipRecord struct {
	State          OwnershipState `db:"state"`
	FallbackUserID sql.NullString `db:"fallback_user_id"`
}

type ownershipStep func(ctx context.Context, tx *sqlx.Tx, rec *ownershipRecord) error

// next maps each non-terminal state to the work that moves it forward.
func (m *Manager) next(s OwnershipState) (OwnershipState, ownershipStep, error) {
	switch s {
	case StatePending:
		return StateRenamed, m.renameLegacy, nil
	case StateRenamed:
		return StateCopied, m.copyLegacy, nil
	case StateCopied:
		return StateIndexed, m.rebuildIndexes, nil
	case StateIndexed:
		return StateComplete, m.seedFallbackOwner, nil
	default:
		return "", nil, fmt.Errorf("no transition from state %q", s)
	}
}

func ensureStateTable(ctx context.Context, q sqlx.ExecerContext) error {
	_, err := q.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ownership_migration (
			id               INTEGER PRIMARY KEY CHECK (id = 1),
			state            TEXT NOT NULL,
			fallback_user_id TEXT,
			updated_at       TEXT NOT NULL
		)
	`)
	return err
}

func loadRecord(ctx context.Context, q sqlx.QueryerContext) (*ownershipRecord, error) {
	var rec ownershipRecord
	err := sqlx.GetContext(ctx, q, &rec, `SELECT state, fallback_user_id FROM ownership_migration WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// advance moves the record from one state to the next, failing if another
// process already moved it.
func advance(ctx context.Context, tx *sqlx.Tx, from, to OwnershipState) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE ownership_migration SET state = ?, updated_at = ?
		WHERE id = 1 AND state = ?
	`, string(to), time.Now().UTC().Format(time.RFC3339Nano), string(from))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("ownership migration: expected state %s, record moved", from)
	}
	return nil
}

func (m *Manager) upgradeOwnership(ctx context.Context) error {
	if err := ensureStateTable(ctx, m.db); err != nil {
		return err
	}
	rec, err := loadRecord(ctx, m.db)
	if err != nil {
		return err
	}
	if rec == nil {
		legacy, err := hasLegacyTables(ctx, m.db)
		if err != nil {
			return err
		}
		if !legacy {
			return nil
		}
		m.logger.Warn("legacy tables detected, starting ownership upgrade")
		err = sqlite.WithTransaction(ctx, m.db, func(tx *sqlx.Tx) error { return m.start(ctx, tx) })
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		if rec, err = loadRecord(ctx, m.db); err != nil {
			return err
		}
	}

	for rec.State != StateComplete {
		from := rec.State
		to, step, err := m.next(from)
		if err != nil {
			return err
		}
		err = sqlite.WithTransaction(ctx, m.db, func(tx *sqlx.Tx) error {
			if err := step(ctx, tx, rec); err != nil {
				return err
			}
			return advance(ctx, tx, from, to)
		})
		if err != nil {
			return fmt.Errorf("%s -> %s: %w", from, to, err)
		}
		rec.State = to
		m.logger.WithFields(logrus.Fields{"from": from, "to": to}).Info("ownership migration advanced")
	}
	return nil
}

// start adopts old-shape users, creates or reuses the fallback owner and
// records the pending state.
func (m *Manager) start(ctx context.Context, tx *sqlx.Tx) error {
	if err := adoptLegacyUsers(ctx, tx); err != nil {
		return fmt.Errorf("adopt users: %w", err)
	}
	if err := execFile(ctx, tx, tablesMigration); err != nil {
		return err
	}
	users := sqlite.NewUserRepository(tx)
	owner, err := users.GetByEmail(ctx, m.opts.LegacyOwnerEmail)
	switch {
	case err == nil:
	case apperror.KindOf(err) == apperror.KindNotFound:
		owner = &entity.User{
			ID:           uuid.NewString(),
			Email:        m.opts.LegacyOwnerEmail,
			PasswordHash: "!locked",
			Name:         fallbackOwnerName,
			CreatedAt:    time.Now(),
		}
		if err := users.Create(ctx, owner); err != nil {
			return err
		}
	default:
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO ownership_migration (id, state, fallback_user_id, updated_at)
		VALUES (1, ?, ?, ?)
	`, string(StatePending), owner.ID, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// adoptLegacyUsers moves a users table with password/createdAt columns aside
// and copies its rows into the current users table. users_legacy is dropped
// by copyLegacy once nothing references it.
func adoptLegacyUsers(ctx context.Context, tx *sqlx.Tx) error {
	legacy, err := isLegacyUsersTable(ctx, tx)
	if err != nil || !legacy {
		return err
	}
	if _, err := tx.ExecContext(ctx, `ALTER TABLE users RENAME TO users`+legacySuffix); err != nil {
		return err
	}
	if err := execFile(ctx, tx, tablesMigration); err != nil {
		return err
	}
	cols, err := columns(ctx, tx, "users"+legacySuffix)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO users (id, email, password_hash, name, created_at)
		SELECT id, email, COALESCE(%s, '!locked'), COALESCE(name, ''), COALESCE(%s, ?) FROM users_legacy
	`, firstColumn(cols, "password", "password_hash"), firstColumn(cols, "createdAt", "created_at")),
		time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (m *Manager) renameLegacy(ctx context.Context, tx *sqlx.Tx, _ *ownershipRecord) error {
	for _, table := range ownedTables {
		legacy, err := isLegacyTable(ctx, tx, table)
		if err != nil {
			return err
		}
		if !legacy {
			continue
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE %s RENAME TO %s%s`, table, table, legacySuffix)); err != nil {
			return err
		}
	}
	return execFile(ctx, tx, tablesMigration)
}

func (m *Manager) copyLegacy(ctx context.Context, tx *sqlx.Tx, rec *ownershipRecord) error {
	owner := rec.FallbackUserID.String
	if owner == "" {
		return errors.New("fallback owner missing from migration record")
	}

	if ok, err := tableExists(ctx, tx, "categories"+legacySuffix); err != nil {
		return err
	} else if ok {
		cols, err := columns(ctx, tx, "categories"+legacySuffix)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO categories (id, name, icon, color, user_id)
			SELECT id, name, icon, color, %s FROM categories_legacy
		`, ownerExpr(cols)), owner); err != nil {
			return err
		}
	}

	if ok, err := tableExists(ctx, tx, "todos"+legacySuffix); err != nil {
		return err
	} else if ok {
		cols, err := columns(ctx, tx, "todos"+legacySuffix)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO todos (id, text, completed, date, category_id, user_id)
			SELECT id, text, COALESCE(completed, 0), date, %s, %s FROM todos_legacy
		`, firstColumn(cols, "categoryId", "category_id"), ownerExpr(cols)), owner); err != nil {
			return err
		}
		// todos_legacy may reference categories_legacy, so it goes first.
		if _, err := tx.ExecContext(ctx, `DROP TABLE todos_legacy`); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS categories_legacy`); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS users_legacy`)
	return err
}

// ownerExpr keeps a legacy userId when it names a known user and falls back
// to the bound owner otherwise.
func ownerExpr(cols map[string]bool) string {
	if cols["userId"] {
		return `CASE WHEN userId IN (SELECT id FROM users) THEN userId ELSE ? END`
	}
	return "?"
}

// firstColumn returns the first of names present in cols, or NULL.
func firstColumn(cols map[string]bool, names ...string) string {
	for _, n := range names {
		if cols[n] {
			return n
		}
	}
	return "NULL"
}

func (m *Manager) rebuildIndexes(ctx context.Context, tx *sqlx.Tx, _ *ownershipRecord) error {
	return execFile(ctx, tx, indexesMigration)
}

func (m *Manager) seedFallbackOwner(ctx context.Context, tx *sqlx.Tx, rec *ownershipRecord) error {
	owner := rec.FallbackUserID.String
	categories := sqlite.NewCategoryRepository(tx)
	n, err := categories.CountByOwner(ctx, owner)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return categories.CreateMany(ctx, entity.DefaultCategories(owner))
}

func tableExists(ctx context.Context, q sqlx.QueryerContext, table string) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
	return n > 0, err
}

func columns(ctx context.Context, q sqlx.QueryerContext, table string) (map[string]bool, error) {
	var names []string
	if err := sqlx.SelectContext(ctx, q, &names, `SELECT name FROM pragma_table_info(?)`, table); err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out, nil
}

// isLegacyTable reports whether table exists without an ownership column.
func isLegacyTable(ctx context.Context, q sqlx.QueryerContext, table string) (bool, error) {
	ok, err := tableExists(ctx, q, table)
	if err != nil || !ok {
		return false, err
	}
	cols, err := columns(ctx, q, table)
	if err != nil {
		return false, err
	}
	return !cols["user_id"], nil
}

// isLegacyUsersTable reports whether users exists in the older shape with
// password and createdAt columns.
func isLegacyUsersTable(ctx context.Context, q sqlx.QueryerContext) (bool, error) {
	ok, err := tableExists(ctx, q, "users")
	if err != nil || !ok {
		return false, err
	}
	cols, err := columns(ctx, q, "users")
	if err != nil {
		return false, err
	}
	return !cols["password_hash"], nil
}

func hasLegacyTables(ctx context.Context, q sqlx.QueryerContext) (bool, error) {
	if legacy, err := isLegacyUsersTable(ctx, q); err != nil || legacy {
		return legacy, err
	}
	for _, table := range ownedTables {
		legacy, err := isLegacyTable(ctx, q, table)
		if err != nil {
			return false, err
		}
		if legacy {
			return true, nil
		}
	}
	return false, nil
}
