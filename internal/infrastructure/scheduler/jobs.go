package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-calendar-api/internal/domain/repository"
	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/backup"
)

const jobTimeout = 5 * time.Minute

// PruneRevocationsJob drops revocation entries whose token has expired.
func PruneRevocationsJob(store repository.RevocationStore, logger *logrus.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		n, err := store.Prune(ctx, time.Now())
		if err != nil {
			logger.WithError(err).Warn("scheduled revocation prune failed")
			return
		}
		if n > 0 {
			logger.WithField("pruned", n).Info("pruned expired token revocations")
		}
	}
}

// BackupJob uploads a snapshot of the store; failures are logged only.
func BackupJob(svc *backup.Service, logger *logrus.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if _, err := svc.Run(ctx); err != nil {
			logger.WithError(err).Error("scheduled backup failed")
		}
	}
}
