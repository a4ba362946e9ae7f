package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect schema migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Upgrade legacy tables and apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeQuietly(db)
			if err := a.manager(db).Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "store is up to date")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the schema version and ownership upgrade state",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openExisting(cmd.Context())
			if err != nil {
				return err
			}
			defer closeQuietly(db)
			st, err := a.manager(db).Status(cmd.Context())
			if err != nil {
				return err
			}
			ownership := st.OwnershipState
			if ownership == "" {
				ownership = "not needed"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version: %d\n", st.Version)
			fmt.Fprintf(out, "dirty: %t\n", st.Dirty)
			fmt.Fprintf(out, "ownership upgrade: %s\n", ownership)
			if st.FallbackUserID != "" {
				fmt.Fprintf(out, "fallback owner: %s\n", st.FallbackUserID)
			}
			return nil
		},
	})
	return cmd
}
