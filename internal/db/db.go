package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"site-panel/internal/config"
	"site-panel/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database, tunes the pool and migrates the
// schema. SQLite is capped at a single open connection, which makes it the
// single writer the rest of the application assumes.
func Open(cfg config.Database, log *zap.SugaredLogger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormLogger := logger.New(zap.NewStdLog(log.Desugar()), logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})

	database, err := gorm.Open(dialector, NewGormConfig(gormLogger))
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}

	switch cfg.Driver {
	case "sqlite":
		sqlDB.SetMaxOpenConns(1)
	default:
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	log.Infow("database connected", "driver", cfg.Driver)

	if err := Migrate(database); err != nil {
		return nil, err
	}
	log.Infow("database migration completed")

	return database, nil
}

// NewGormConfig is shared by Open and by tests that build their own dialector.
// TranslateError maps driver unique violations to gorm.ErrDuplicatedKey and
// timestamps are kept in UTC so lexical and temporal order agree on SQLite.
func NewGormConfig(l logger.Interface) *gorm.Config {
	return &gorm.Config{
		Logger:         l,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Migrate creates or updates the users, sites and deploy_logs tables.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&models.User{},
		&models.Site{},
		&models.DeployLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func dialectorFor(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(cfg.Path), nil
	case "postgres":
		return postgres.Open(PostgresDSN(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// PostgresDSN renders the key/value DSN understood by pgx.
func PostgresDSN(cfg config.Database) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.Port,
		cfg.SSLMode,
	)
}
