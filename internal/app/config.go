package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	catalogdb "github.com/yungbote/sealant-catalog-backend/internal/data/db"
	"github.com/yungbote/sealant-catalog-backend/internal/observability"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/envutil"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

type Config struct {
	LogMode string
	Port    string

	DB catalogdb.Config

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisChannelPrefix string
	PromotionLockTTL   time.Duration

	PreviewLimit   int
	AuditPageLimit int

	MetricsEnabled bool
	AllowedOrigins []string
	Otel           observability.OtelConfig

	ShutdownTimeout time.Duration
}

// LoadEnvFile loads ENV_FILE (default .env) into the process environment.
// A missing file is not an error; variables already set win.
func LoadEnvFile() error {
	path := envutil.String("ENV_FILE", ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		LogMode: envutil.String("LOG_MODE", "development"),
		Port:    envutil.String("PORT", "8080"),
		DB: catalogdb.Config{
			Driver:           catalogdb.Driver(strings.ToLower(envutil.String("DB_DRIVER", string(catalogdb.DriverPostgres)))),
			PostgresDSN:      envutil.String("POSTGRES_DSN", ""),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "sealant_catalog"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", "catalog.db"),
			MaxOpenConns:     envutil.Int("DB_MAX_OPEN_CONNS", 0),
			SlowThreshold:    envutil.Duration("DB_SLOW_THRESHOLD", 500*time.Millisecond),
		},
		RedisAddr:          envutil.String("REDIS_ADDR", ""),
		RedisPassword:      envutil.String("REDIS_PASSWORD", ""),
		RedisDB:            envutil.Int("REDIS_DB", 0),
		RedisChannelPrefix: envutil.String("REDIS_CHANNEL_PREFIX", "sealant-catalog"),
		PromotionLockTTL:   envutil.Duration("REDIS_PROMOTION_LOCK_TTL", 2*time.Minute),
		PreviewLimit:       envutil.Int("PREVIEW_LIMIT", 20),
		AuditPageLimit:     envutil.Int("AUDIT_PAGE_LIMIT", 50),
		MetricsEnabled:     observability.Enabled(),
		AllowedOrigins:     envutil.CSV("CORS_ALLOWED_ORIGINS", nil),
		Otel: observability.OtelConfig{
			ServiceName: envutil.String("OTEL_SERVICE_NAME", observability.DefaultServiceName),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", ""),
		},
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	if log != nil {
		log.Info("config loaded",
			"db_driver", string(cfg.DB.Driver),
			"port", cfg.Port,
			"redis", cfg.RedisAddr != "",
			"metrics", cfg.MetricsEnabled,
		)
	}
	return cfg
}
