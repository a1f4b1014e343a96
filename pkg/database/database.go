// Package database implements the store repositories on gorm. Postgres
// is the shared deployment mode; sqlite keeps everything in one local
// file for single-node installs.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emeraldsmp/portal/pkg/store"
)

// Open connects with the named driver ("postgres" or "sqlite").
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	switch driver {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), cfg)
	case "sqlite":
		return gorm.Open(sqlite.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

// New migrates the schema and returns the repository set.
func New(db *gorm.DB) (*store.Store, error) {
	err := db.AutoMigrate(&User{}, &Application{}, &Chat{}, &Document{})
	if err != nil {
		return nil, err
	}

	return &store.Store{
		Users:        &userRepo{db: db},
		Applications: &applicationRepo{db: db},
		Chats:        &chatRepo{db: db},
		Settings:     &settingsRepo{db: db},
	}, nil
}
