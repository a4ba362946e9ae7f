package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/todo-calendar-api/config"
	"github.com/oksasatya/todo-calendar-api/internal/application"
	"github.com/oksasatya/todo-calendar-api/internal/domain/apperror"
	"github.com/oksasatya/todo-calendar-api/internal/domain/entity"
	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/schema"
	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/sqlite"
	"github.com/oksasatya/todo-calendar-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	db, err := sqlite.Open(ctx, cfg.DBPath, 1)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	mgr := schema.NewManager(db, schema.Options{DSN: sqlite.DSN(cfg.DBPath), LegacyOwnerEmail: cfg.LegacyOwnerEmail, Logger: logger})
	if err := mgr.Migrate(ctx); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	email := "demo@example.com"
	password := "password123"
	name := "Demo User"

	store := sqlite.NewStore(db)
	if u, err := store.Registry().Users.GetByEmail(ctx, email); err == nil {
		fmt.Printf("user already seeded: id=%s email=%s\n", u.ID, u.Email)
		return
	} else if apperror.KindOf(err) != apperror.KindNotFound {
		log.Fatalf("failed to look up user: %v", err)
	}

	auth := application.NewAuthService(store, helpers.NewTokenManager(cfg.JWTSecret, cfg.AccessTTL), sqlite.NewRevocationStore(db), cfg.BcryptCost, logger)
	res, err := auth.Register(ctx, application.RegisterInput{Email: email, Password: password, Name: name})
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", res.User.ID, email, name, password)

	today := time.Now().UTC()
	day := func(offset int) string { return today.AddDate(0, 0, offset).Format("2006-01-02") }
	work := res.User.ID + "-work"
	shopping := res.User.ID + "-shopping"
	todos := []entity.Todo{
		{ID: res.User.ID + "-t1", Text: "Plan the week", Completed: true, Date: day(-2), CategoryID: &work},
		{ID: res.User.ID + "-t2", Text: "Buy groceries", Date: day(0), CategoryID: &shopping},
		{ID: res.User.ID + "-t3", Text: "Review pull requests", Date: day(1), CategoryID: &work},
	}
	n, err := application.NewTodoService(store).BulkCreate(ctx, res.User.ID, todos)
	if err != nil {
		log.Fatalf("failed to seed todos: %v", err)
	}
	fmt.Printf("seeded %d todos\n", n)
	fmt.Printf("token: %s\n", res.Token)
}
