package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// timeLayout is fixed-width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// defaultPragmas are added when path does not set them.
var defaultPragmas = []string{"busy_timeout(5000)", "journal_mode(WAL)"}

// DSN builds a modernc.org/sqlite DSN for path with foreign keys on, WAL
// journaling, a busy timeout and immediate write transactions. Options
// already in path are kept and missing ones are added.
func DSN(path string) string {
	base, query, _ := strings.Cut(path, "?")
	if !strings.HasPrefix(base, "file:") {
		base = "file:" + base
	}
	var params []string
	if query != "" {
		params = append(params, query)
	}
	for _, p := range defaultPragmas {
		name, _, _ := strings.Cut(p, "(")
		if !strings.Contains(query, "_pragma="+name+"(") {
			params = append(params, "_pragma="+p)
		}
	}
	// Foreign keys are always on: pragmas apply in order, so this one wins
	// over any earlier foreign_keys(0).
	if !strings.Contains(query, "_pragma=foreign_keys(1)") || strings.Contains(query, "_pragma=foreign_keys(0)") {
		params = append(params, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(query, "_txlock=") {
		params = append(params, "_txlock=immediate")
	}
	return base + "?" + strings.Join(params, "&")
}

// FilePath strips the file: scheme and query from path.
func FilePath(path string) string {
	clean := strings.TrimPrefix(path, "file:")
	clean, _, _ = strings.Cut(clean, "?")
	return clean
}

// Open opens the store file, creating its directory if needed.
func Open(ctx context.Context, path string, maxOpenConns int) (*sqlx.DB, error) {
	if err := ensureDirForSQLite(path); err != nil {
		return nil, err
	}
	db, err := sqlx.Open(DriverName, DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(path string) error {
	if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
		return nil
	}
	dir := filepath.Dir(FilePath(path))
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
