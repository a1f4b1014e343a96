// Package portal holds the business logic behind the HTTP layer:
// accounts and the role ceiling, the application lifecycle, the form
// schema engine glue, chat threads and site settings. It is written
// against the store interfaces so tests run on the in-memory store.
package portal

import (
	"context"
	"errors"
	"time"

	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/rbac"
	"github.com/emeraldsmp/portal/pkg/store"
)

var (
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")

	ErrUserNotFound        = errors.New("user not found")
	ErrApplicationNotFound = errors.New("application not found")

	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrRegistrationClosed = errors.New("registrations are currently closed")
	ErrLoginDisabled      = errors.New("login is currently disabled for maintenance")

	ErrOwnerImmutable   = errors.New("cannot change the owner's role")
	ErrOwnerAssignment  = errors.New("owner role cannot be assigned")
	ErrAdminAssignment  = errors.New("only the owner can assign the admin role")
	ErrAdminCeiling     = errors.New("admins can only assign manager, staff, builder or member roles")
	ErrOwnerUndeletable = errors.New("cannot delete the owner account")
	ErrOwnerProtected   = errors.New("cannot modify owner details")
	ErrUnknownRole      = errors.New("unknown role")
	ErrBuiltinRole      = errors.New("builtin roles cannot be modified")
	ErrNameRequired     = errors.New("a name is required")

	ErrFormClosed         = errors.New("this form is not accepting submissions")
	ErrBannedRestricted   = errors.New("your account is restricted to ban appeals")
	ErrApplicationLimit   = errors.New("you have reached the submission limit")
	ErrInvalidTransition  = errors.New("unknown application status")
	ErrChatClosed         = errors.New("this conversation has been closed")
	ErrChatAccessDenied   = errors.New("you are not a participant in this conversation")
	ErrSubmissionNotOwned = errors.New("this application belongs to another user")
)

// Config carries the seeded owner credentials.
type Config struct {
	OwnerEmail    string
	OwnerPassword string
}

func (c Config) withDefaults() Config {
	if c.OwnerEmail == "" {
		c.OwnerEmail = "owner@emeraldsmp.com"
	}
	if c.OwnerPassword == "" {
		c.OwnerPassword = "emerald2025"
	}
	return c
}

// Service is constructed once per process and shared by all handlers.
type Service struct {
	store *store.Store
	cfg   Config
	now   func() time.Time
}

func New(st *store.Store, cfg Config) *Service {
	return &Service{
		store: st,
		cfg:   cfg.withDefaults(),
		now:   time.Now,
	}
}

// Store exposes the underlying repositories for wiring (session
// middleware, cloud sync).
func (s *Service) Store() *store.Store {
	return s.store
}

// policy builds the permission table including custom roles. Settings
// reads never fail into errors for callers, so neither does this.
func (s *Service) policy(ctx context.Context) *rbac.Policy {
	settings, err := s.store.Settings.Get(ctx)
	if err != nil || settings == nil {
		return rbac.New(nil)
	}
	return rbac.New(settings.CustomRoles)
}

// authorize checks one permission for the acting user.
func (s *Service) authorize(ctx context.Context, actor *models.UserAccount, perm models.Permission) error {
	if actor == nil || !s.policy(ctx).Has(actor.Role, perm) {
		return ErrPermissionDenied
	}
	return nil
}

// Authorize is the uniform entry point for permission checks outside
// the service (route middleware).
func (s *Service) Authorize(ctx context.Context, actor *models.UserAccount, perm models.Permission) bool {
	return s.authorize(ctx, actor, perm) == nil
}
