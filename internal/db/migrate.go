package db

import (
	"fmt"

	"notes_system/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
	"gorm.io/gorm/logger"
)

// Open connects to MySQL. TranslateError is required by the store to map
// unique and foreign key violations.
func Open(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if log.IsLevelEnabled(logrus.DebugLevel) {
		level = logger.Info
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.New(log, logger.Config{LogLevel: level, IgnoreRecordNotFoundError: true}),
	})
}

// Migrate creates the users and notes tables. The unique index on
// users.username and the RESTRICT foreign key from notes.user_id back the
// checks done by the user manager.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}, &domain.Note{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
