package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Connection pool configuration
const (
	DefaultMaxIdleConns    = 10
	DefaultMaxOpenConns    = 100
	DefaultConnMaxLifetime = time.Hour
	DefaultConnMaxIdleTime = 10 * time.Minute
)

const sqliteScheme = "sqlite://"

// Connect opens the database named by databaseURL.
// postgres:// and postgresql:// URLs use the Postgres driver; sqlite://<path>
// opens a SQLite file, and sqlite://:memory: an in-memory database.
func Connect(databaseURL string) (*gorm.DB, error) {
	dialector, isSQLite, err := dialectorFor(databaseURL)
	if err != nil {
		return nil, err
	}

	// Validate SSL mode in production
	if !isSQLite && os.Getenv("APP_ENV") == "production" {
		if err := validateSSLMode(databaseURL); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if isSQLite {
		// SQLite allows a single writer; one connection keeps in-memory databases shared too.
		err = configureConnectionPool(db, 1, 1)
	} else {
		err = configureConnectionPool(db, DefaultMaxIdleConns, DefaultMaxOpenConns)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("Connected to database successfully", slog.Bool("sqlite", isSQLite))
	return db, nil
}

func dialectorFor(databaseURL string) (gorm.Dialector, bool, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.Open(databaseURL), false, nil
	case strings.HasPrefix(databaseURL, sqliteScheme):
		path := strings.TrimPrefix(databaseURL, sqliteScheme)
		if path == "" {
			return nil, true, fmt.Errorf("sqlite database path cannot be empty")
		}
		return sqlite.Open(sqliteDSN(path)), true, nil
	default:
		return nil, false, fmt.Errorf("unsupported database URL scheme: %q", schemeOf(databaseURL))
	}
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

func schemeOf(databaseURL string) string {
	if i := strings.Index(databaseURL, "://"); i >= 0 {
		return databaseURL[:i]
	}
	return databaseURL
}

// validateSSLMode ensures SSL is enabled in production
func validateSSLMode(databaseURL string) error {
	// Check if sslmode is explicitly disabled
	if strings.Contains(databaseURL, "sslmode=disable") {
		return fmt.Errorf("SSL mode cannot be disabled in production")
	}

	// If no sslmode specified, it's okay (defaults to prefer/require depending on server)
	return nil
}

// configureConnectionPool sets up connection pool limits
func configureConnectionPool(db *gorm.DB, maxIdleConns, maxOpenConns int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(DefaultConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(DefaultConnMaxIdleTime)

	return nil
}

// Migrate runs auto-migration for all models
func Migrate(db *gorm.DB) error {
	slog.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.PhysicalNumber{},
		&models.VirtualNumber{},
		&models.Message{},
		&models.CategoryCooldown{},
		&models.RecoveryCooldown{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Database migrations completed successfully")
	return nil
}

// SeedPhysicalNumber makes sure the configured physical number exists and returns it.
func SeedPhysicalNumber(ctx context.Context, db *gorm.DB, number, ownerName string) (*models.PhysicalNumber, error) {
	if number == "" {
		return nil, errors.New("physical number cannot be empty")
	}

	seed := models.PhysicalNumber{Number: number, OwnerName: ownerName, IsActive: true}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "number"}}, DoNothing: true}).
		Create(&seed).Error
	if err != nil {
		return nil, fmt.Errorf("failed to seed physical number: %w", err)
	}

	var pn models.PhysicalNumber
	if err := db.WithContext(ctx).Where("number = ?", number).First(&pn).Error; err != nil {
		return nil, fmt.Errorf("failed to load physical number: %w", err)
	}
	return &pn, nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
