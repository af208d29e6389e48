package main

import (
	"notes_system/internal/config" // Custom import path (Config)
	"notes_system/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus"
)

// Main entry point for migration
func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	if cfg.DBDriver != config.DriverMySQL {
		logrus.Fatalf("migrations only apply to the %s driver", config.DriverMySQL)
	}

	conn, err := db.Open(cfg.DSN(), logrus.StandardLogger())
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatal(err)
	}
	logrus.Info("Migration completed.")
}
