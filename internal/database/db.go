package database

import (
	"errors"
	"fmt"
	"time"

	"erp-backend/internal/config"
	"erp-backend/internal/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// WalkInCustomerName is the display name of the reserved walk-in customer.
const WalkInCustomerName = "Consumidor Final"

func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		dialector = postgres.Open(cfg.DatabaseDSN)
	}

	gormLog, err := newGormLogger(zap.L())
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.DatabaseDriver == "sqlite" {
		// one writer at a time; also keeps a :memory: database on a single connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// newGormLogger sends slow queries and SQL errors to zap at warn level.
// Missing rows are an ordinary lookup result and are not logged.
func newGormLogger(l *zap.Logger) (logger.Interface, error) {
	std, err := zap.NewStdLogAt(l.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		return nil, fmt.Errorf("gorm logger: %w", err)
	}
	return logger.New(std, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	}), nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Customer{},
		&models.Sale{},
		&models.SaleItem{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Seed inserts the reserved walk-in customer and the bootstrap admin when
// they are missing.
func Seed(db *gorm.DB, cfg *config.Config) error {
	var walkIn models.Customer
	err := db.First(&walkIn, cfg.WalkInCustomerID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		walkIn = models.Customer{ID: cfg.WalkInCustomerID, Name: WalkInCustomerName, Active: true}
		if err := db.Create(&walkIn).Error; err != nil {
			return fmt.Errorf("seed walk-in customer: %w", err)
		}
		// an explicit id does not advance the serial sequence
		if db.Dialector.Name() == "postgres" {
			if err := db.Exec(`SELECT setval(pg_get_serial_sequence('customers', 'id'), (SELECT MAX(id) FROM customers))`).Error; err != nil {
				return fmt.Errorf("reset customers sequence: %w", err)
			}
		}
		zap.S().Infof("walk-in customer seeded with id %d", walkIn.ID)
	case err != nil:
		return fmt.Errorf("load walk-in customer: %w", err)
	}

	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", cfg.AdminUsername).Count(&count).Error; err != nil {
		return fmt.Errorf("look up admin user: %w", err)
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{
		Username:     cfg.AdminUsername,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	zap.S().Infof("admin user %q seeded", admin.Username)
	return nil
}
