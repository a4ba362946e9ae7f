package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/sqlite"
)

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <email>",
		Short: "Delete a user together with their categories and todos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.openMigrated(ctx)
			if err != nil {
				return err
			}
			defer closeQuietly(db)

			users := sqlite.NewUserRepository(db)
			u, err := users.GetByEmail(ctx, args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := users.Delete(ctx, u.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s (%s)\n", u.Email, u.ID)
			return nil
		},
	})
	return cmd
}
