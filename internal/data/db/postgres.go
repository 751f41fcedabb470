package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// Config selects and addresses the catalog database. PostgresDSN wins over the
// individual Postgres fields when set.
type Config struct {
	Driver Driver

	PostgresDSN      string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string
	PostgresSSLMode  string

	SQLitePath string

	MaxOpenConns  int
	SlowThreshold time.Duration
}

// Service owns the *gorm.DB handle for the process lifetime.
type Service struct {
	db     *gorm.DB
	driver Driver
	log    *logger.Logger
}

func Open(cfg Config, logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DatabaseService")

	driver := Driver(strings.ToLower(strings.TrimSpace(string(cfg.Driver))))
	if driver == "" {
		driver = DriverPostgres
	}

	var (
		gdb *gorm.DB
		err error
	)
	switch driver {
	case DriverPostgres:
		gdb, err = openPostgres(cfg)
	case DriverSQLite:
		gdb, err = openSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	serviceLog.Info("database connected", "driver", string(driver))
	return &Service{db: gdb, driver: driver, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB     { return s.db }
func (s *Service) Driver() Driver   { return s.driver }
func (s *Service) IsPostgres() bool { return s.driver == DriverPostgres }

func (s *Service) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DriverOf reports the driver behind an open handle (a transaction included).
func DriverOf(gdb *gorm.DB) Driver {
	if gdb == nil || gdb.Dialector == nil {
		return ""
	}
	switch gdb.Dialector.Name() {
	case "postgres":
		return DriverPostgres
	case "sqlite":
		return DriverSQLite
	}
	return Driver(gdb.Dialector.Name())
}

func PostgresDSN(cfg Config) string {
	if dsn := strings.TrimSpace(cfg.PostgresDSN); dsn != "" {
		return dsn
	}
	sslMode := cfg.PostgresSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.PostgresUser,
		cfg.PostgresPassword,
		cfg.PostgresHost,
		cfg.PostgresPort,
		cfg.PostgresName,
		sslMode,
	)
}

func openPostgres(cfg Config) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(PostgresDSN(cfg)), gormConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	return gdb, nil
}

func gormConfig(cfg Config) *gorm.Config {
	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = time.Second
	}
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}
}
