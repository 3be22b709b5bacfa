package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CUknot/social_backend/config"
	"github.com/CUknot/social_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect establishes a connection to the configured database. For postgres
// the database is created first when it does not exist yet.
func Connect(cfg config.DBConfig, log logrus.FieldLogger) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		log.WithField("path", cfg.SQLitePath).Info("Connecting to SQLite database")
		return Open(sqlite.Open(cfg.SQLitePath), log)
	case "postgres", "":
		if err := ensureDatabase(cfg, log); err != nil {
			log.WithError(err).Warn("Could not ensure database exists")
		}
		log.WithField("host", cfg.Host).Info("Connecting to PostgreSQL database")
		return Open(postgres.Open(dsn(cfg, cfg.Name)), log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open opens a gorm connection with the application's settings
func Open(dialector gorm.Dialector, log logrus.FieldLogger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	log.Info("Database connection established")
	return db, nil
}

// Migrate automatically migrates the database schema
func Migrate(db *gorm.DB, log logrus.FieldLogger) error {
	for _, model := range models.All() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}
	log.Info("Database migration completed")
	return nil
}

func dsn(cfg config.DBConfig, name string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, name, cfg.Port, cfg.SSLMode)
}

// ensureDatabase creates cfg.Name through the maintenance database
func ensureDatabase(cfg config.DBConfig, log logrus.FieldLogger) error {
	admin, err := gorm.Open(postgres.Open(dsn(cfg, "postgres")), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return err
	}
	sqlDB, err := admin.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	var exists int64
	if err := admin.Raw("SELECT count(*) FROM pg_database WHERE datname = ?", cfg.Name).Scan(&exists).Error; err != nil {
		return err
	}
	if exists > 0 {
		return nil
	}

	quoted := `"` + strings.ReplaceAll(cfg.Name, `"`, `""`) + `"`
	if err := admin.Exec("CREATE DATABASE " + quoted).Error; err != nil {
		return err
	}
	log.WithField("database", cfg.Name).Info("Database created")
	return nil
}

// IsDuplicate reports whether err is a unique constraint violation
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
