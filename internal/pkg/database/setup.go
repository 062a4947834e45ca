package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ManuelReschke/CopyFox/app/models"
	"github.com/ManuelReschke/CopyFox/internal/pkg/env"
	"github.com/ManuelReschke/CopyFox/internal/pkg/logger"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// DB is the process-wide database handle.
var DB *gorm.DB

// GetDB returns the database handle or nil before SetupDatabase.
func GetDB() *gorm.DB {
	return DB
}

// SetDB replaces the global handle. Used by tests and tools.
func SetDB(db *gorm.DB) {
	DB = db
}

// DSN builds the MySQL data source name from DB_* variables.
func DSN() string {
	// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=UTC"
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)
}

// SetupDatabase connects with retries and auto-migrates the billing tables
// unless DB_AUTO_MIGRATE is not "true", in which case cmd/migrate owns the schema.
func SetupDatabase() error {
	var err error
	logLevel := gormlogger.Warn
	if env.IsDev() {
		logLevel = gormlogger.Info
	}

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       DSN(),
			DefaultStringSize:         256,   // default size for string fields
			DisableDatetimePrecision:  true,  // disable datetime precision, which not supported before MySQL 5.6
			DontSupportRenameIndex:    true,  // drop & create when rename index, rename index not supported before MySQL 5.7, MariaDB
			DontSupportRenameColumn:   true,  // `change` when rename column, rename column not supported before MySQL 8, MariaDB
			SkipInitializeWithVersion: false, // auto configure based on currently MySQL version
		}), &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)})
		if err == nil {
			if env.GetEnv("DB_AUTO_MIGRATE", "true") != "true" {
				return nil
			}
			if err = AutoMigrate(DB); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			return nil
		}

		logger.L().Warn("failed to connect to database",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Error(err),
		)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return err
}

// AutoMigrate creates or updates all tables owned by the service.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.UserSettings{},
		&models.BillingAccount{},
		&models.BillingPlanMapping{},
		&models.BillingSubscription{},
		&models.BillingWebhookEvent{},
		&models.GenerationUsage{},
	)
}
