// Package db opens the catalog database from server configuration.
package db

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/stp-archive/catalog/internal/config"
	"github.com/stp-archive/catalog/pkg/database"
	"github.com/stp-archive/catalog/pkg/models"
)

// NewDB connects to the database described by cfg.
func NewDB(cfg *config.Database, log hclog.Logger) (*gorm.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}
	return database.Connect(database.Config{
		Driver:   cfg.Driver,
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
		Path:     cfg.Path,
	}, log)
}

// CreateTables creates the catalog schema. There is no migration system; this
// is the one-time, operator-triggered table creation behind the migrate
// command.
func CreateTables(db *gorm.DB) error {
	if err := db.AutoMigrate(models.ModelsToAutoMigrate()...); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}
