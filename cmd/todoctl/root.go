package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oksasatya/todo-calendar-api/config"
	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/schema"
	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/sqlite"
	"github.com/oksasatya/todo-calendar-api/pkg/helpers"
)

// app carries what every subcommand needs.
type app struct {
	cfg    *config.Config
	dbPath string
	logger *logrus.Logger
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg}
	root := &cobra.Command{
		Use:   "todoctl",
		Short: "Operate the todo calendar store",
		Long: `Maintenance commands for the todo calendar API store: apply migrations,
inspect schema state, back up to Google Cloud Storage and manage users and
revoked tokens.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = helpers.NewLogger(cfg.AppName+"-ctl", cfg.Env, cfg.LogLevel)
			a.logger.SetOutput(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", cfg.DBPath, "Path to the SQLite store")

	root.AddCommand(newMigrateCmd(a))
	root.AddCommand(newBackupCmd(a))
	root.AddCommand(newRevocationsCmd(a))
	root.AddCommand(newUsersCmd(a))
	return root
}

func (a *app) open(ctx context.Context) (*sqlx.DB, error) {
	return sqlite.Open(ctx, a.dbPath, 1)
}

// openExisting opens the store without creating it.
func (a *app) openExisting(ctx context.Context) (*sqlx.DB, error) {
	if _, err := os.Stat(sqlite.FilePath(a.dbPath)); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("store %s does not exist", a.dbPath)
	} else if err != nil {
		return nil, err
	}
	return a.open(ctx)
}

func (a *app) manager(db *sqlx.DB) *schema.Manager {
	return schema.NewManager(db, schema.Options{
		DSN:              sqlite.DSN(a.dbPath),
		LegacyOwnerEmail: a.cfg.LegacyOwnerEmail,
		Logger:           a.logger,
	})
}

// openMigrated opens the store and brings it up to date, like the server does on boot.
func (a *app) openMigrated(ctx context.Context) (*sqlx.DB, error) {
	db, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.manager(db).Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func closeQuietly(c io.Closer) { _ = c.Close() }
