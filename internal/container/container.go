package container

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-calendar-api/config"
	"github.com/oksasatya/todo-calendar-api/internal/domain/repository"
	"github.com/oksasatya/todo-calendar-api/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	db          *sqlx.DB
	redisClient *redis.Client

	tokenManager *helpers.TokenManager
	revocations  repository.RevocationStore
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger != nil {
		return logger
	}
	return logrus.StandardLogger()
}

func SetDB(d *sqlx.DB)                  { db = d }
func GetDB() *sqlx.DB                   { return db }
func SetRedis(r *redis.Client)          { redisClient = r }
func GetRedis() *redis.Client           { return redisClient }
func SetTokens(m *helpers.TokenManager) { tokenManager = m }
func GetTokens() *helpers.TokenManager  { return tokenManager }

func SetRevocations(s repository.RevocationStore) { revocations = s }
func GetRevocations() repository.RevocationStore  { return revocations }
