package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/backup"
	"github.com/oksasatya/todo-calendar-api/pkg/helpers"
)

func newBackupCmd(a *app) *cobra.Command {
	var (
		bucket, prefix string
		keep           int
	)
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the store and upload it to Google Cloud Storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bucket == "" {
				return errors.New("no bucket: set GCS_BUCKET or pass --bucket")
			}
			ctx := cmd.Context()
			client, err := helpers.NewGCSClient(ctx, a.cfg.GCSCredentialsJSONPath)
			if err != nil {
				return fmt.Errorf("init gcs client: %w", err)
			}
			defer closeQuietly(client)

			db, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer closeQuietly(db)

			svc := backup.NewService(db, &backup.GCSUploader{Client: client, Bucket: bucket}, prefix, a.logger)
			svc.Keep = keep
			res, err := svc.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%d bytes)\n", res.URI, res.Bytes)
			for _, name := range res.Pruned {
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", a.cfg.GCSBucket, "Destination bucket")
	cmd.Flags().StringVar(&prefix, "prefix", a.cfg.BackupPrefix, "Object name prefix")
	cmd.Flags().IntVar(&keep, "keep", a.cfg.BackupKeep, "Snapshots to retain, 0 keeps all")
	return cmd
}
