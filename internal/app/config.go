package app

import (
	"time"

	"github.com/yungbote/learnhub-backend/internal/data/db"
	"github.com/yungbote/learnhub-backend/internal/pkg/envutil"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
)

const ServiceName = "learnhub-backend"

type Config struct {
	Port         string
	JWTSecretKey string
	CORSOrigins  []string

	Database db.Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	GenerationTimeout time.Duration
	StatsConcurrency  int
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:         envutil.String("PORT", "8080", log),
		JWTSecretKey: envutil.String("JWT_SECRET_KEY", "", log),
		CORSOrigins:  envutil.List("CORS_ORIGINS", nil, log),
		Database: db.Config{
			Driver:           envutil.String("DATABASE_DRIVER", db.DriverPostgres, log),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost", log),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432", log),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres", log),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", "", log),
			PostgresName:     envutil.String("POSTGRES_NAME", "learnhub", log),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable", log),
			SQLitePath:       envutil.String("SQLITE_PATH", "learnhub.db", log),
		},
		RedisAddr:         envutil.String("REDIS_ADDR", "", log),
		RedisPassword:     envutil.String("REDIS_PASSWORD", "", log),
		RedisDB:           envutil.Int("REDIS_DB", 0, log),
		RedisChannel:      envutil.String("REDIS_CHANNEL", "document-changes", log),
		GenerationTimeout: envutil.Seconds("GENERATION_TIMEOUT_SECONDS", 120*time.Second, log),
		StatsConcurrency:  envutil.Int("STATS_CONCURRENCY", 4, log),
	}
}
