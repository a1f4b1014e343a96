// Package store defines the persistence interfaces the portal service
// is written against. The gorm-backed implementation lives in
// pkg/database; the in-memory one here backs tests and single-process
// caching.
package store

import (
	"context"
	"errors"

	"github.com/emeraldsmp/portal/pkg/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type UserRepo interface {
	List(ctx context.Context) ([]models.UserAccount, error)
	Get(ctx context.Context, id string) (*models.UserAccount, error)
	GetByEmail(ctx context.Context, email string) (*models.UserAccount, error)
	GetByDiscordID(ctx context.Context, discordID string) (*models.UserAccount, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.UserAccount, error)
	Create(ctx context.Context, u *models.UserAccount) error
	Update(ctx context.Context, u *models.UserAccount) error
	Delete(ctx context.Context, id string) error
}

type ApplicationRepo interface {
	// List returns entries newest-first.
	List(ctx context.Context) ([]models.ApplicationEntry, error)
	ListByUser(ctx context.Context, userID string) ([]models.ApplicationEntry, error)
	Get(ctx context.Context, id string) (*models.ApplicationEntry, error)
	Create(ctx context.Context, a *models.ApplicationEntry) error
	Update(ctx context.Context, a *models.ApplicationEntry) error
	Delete(ctx context.Context, id string) error
}

type ChatRepo interface {
	// Get returns (nil, nil) when no thread exists for the application.
	Get(ctx context.Context, appID string) (*models.ApplicationChat, error)
	Save(ctx context.Context, c *models.ApplicationChat) error
	Delete(ctx context.Context, appID string) error
}

type SettingsRepo interface {
	// Get always returns a fully-defaulted document; corrupt or missing
	// stored state degrades to the defaults rather than an error.
	Get(ctx context.Context) (*models.SiteSettings, error)
	Save(ctx context.Context, s *models.SiteSettings) error
}

// Store aggregates the repositories; it is constructed once per process
// and passed by reference to handlers.
type Store struct {
	Users        UserRepo
	Applications ApplicationRepo
	Chats        ChatRepo
	Settings     SettingsRepo
}
