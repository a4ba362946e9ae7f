package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/sqlite"
)

func newRevocationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revocations",
		Short: "Manage the revoked token list",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete revocations for tokens that have expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openMigrated(cmd.Context())
			if err != nil {
				return err
			}
			defer closeQuietly(db)
			n, err := sqlite.NewRevocationStore(db).Prune(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d revocations\n", n)
			return nil
		},
	})
	return cmd
}
