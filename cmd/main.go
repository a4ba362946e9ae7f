package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/todo-calendar-api/config"
	"github.com/oksasatya/todo-calendar-api/internal/container"
	"github.com/oksasatya/todo-calendar-api/internal/domain/repository"
	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/backup"
	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/redisstore"
	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/scheduler"
	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/schema"
	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/sqlite"
	"github.com/oksasatya/todo-calendar-api/internal/router"
	"github.com/oksasatya/todo-calendar-api/pkg/helpers"
	"github.com/oksasatya/todo-calendar-api/pkg/response"
	"github.com/oksasatya/todo-calendar-api/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()
	response.Configure(logger, cfg.IsProduction())

	ctx := context.Background()

	db, err := sqlite.Open(ctx, cfg.DBPath, cfg.DBMaxOpenConns)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Never serve against a partially migrated store.
	mgr := schema.NewManager(db, schema.Options{
		DSN:              sqlite.DSN(cfg.DBPath),
		LegacyOwnerEmail: cfg.LegacyOwnerEmail,
		Logger:           logger,
	})
	if err := mgr.Migrate(ctx); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	// Redis is optional; without it auth is not rate limited and revocations live in SQLite.
	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("failed to connect to redis: %v", err)
	}
	var revocations repository.RevocationStore = sqlite.NewRevocationStore(db)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		revocations = redisstore.NewRevocationStore(rdb)
	}
	if n, err := revocations.Prune(ctx, time.Now()); err != nil {
		logger.WithError(err).Warn("failed to prune token revocations")
	} else if n > 0 {
		logger.WithField("pruned", n).Info("pruned expired token revocations")
	}

	if cfg.AccessTTL == 0 {
		logger.Warn("JWT_ACCESS_TTL is 0: issued tokens never expire and stay valid until revoked")
	}
	tokens := helpers.NewTokenManager(cfg.JWTSecret, cfg.AccessTTL)

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetDB(db)
	container.SetRedis(rdb)
	container.SetTokens(tokens)
	container.SetRevocations(revocations)

	jobs := scheduler.New(time.UTC)
	if cfg.RevocationPruneInterval > 0 {
		if _, err := jobs.ScheduleInterval(cfg.RevocationPruneInterval, scheduler.PruneRevocationsJob(revocations, logger)); err != nil {
			logger.Fatalf("failed to schedule revocation prune: %v", err)
		}
	}
	if cfg.GCSBucket != "" && cfg.BackupDailyAt != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.Fatalf("failed to init gcs client: %v", err)
		}
		defer func() { _ = gcs.Close() }()
		svc := backup.NewService(db, &backup.GCSUploader{Client: gcs, Bucket: cfg.GCSBucket}, cfg.BackupPrefix, logger)
		svc.Keep = cfg.BackupKeep
		if _, err := jobs.ScheduleDaily(cfg.BackupDailyAt, scheduler.BackupJob(svc, logger)); err != nil {
			logger.Fatalf("failed to schedule backup: %v", err)
		}
		logger.WithField("at", cfg.BackupDailyAt).Info("daily backup scheduled (UTC)")
	}
	jobs.Start()

	r := router.NewEngine()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.WithField("db_path", cfg.DBPath).Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")
	jobs.Stop()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}
