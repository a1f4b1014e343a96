package portal

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/emeraldsmp/portal/pkg/logger"
	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/rbac"
	"github.com/emeraldsmp/portal/pkg/store"
)

const ownerAccountID = "owner-001"

// EnsureOwnerAccount seeds the single owner record if no account holds
// the owner role. It is idempotent; seeding is the only way the owner
// role is ever granted.
func (s *Service) EnsureOwnerAccount(ctx context.Context) error {
	users, err := s.store.Users.List(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Role == models.RoleOwner {
			return nil
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.OwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	owner := &models.UserAccount{
		ID:           ownerAccountID,
		DisplayName:  "Emerald",
		Email:        s.cfg.OwnerEmail,
		AuthMethod:   models.AuthEmail,
		PasswordHash: string(hash),
		Role:         models.RoleOwner,
		Status:       models.UserActive,
		CreatedAt:    s.now(),
	}
	if err := s.store.Users.Create(ctx, owner); err != nil {
		return err
	}
	logger.Info("seeded owner account")
	return nil
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// Register creates an email account. New accounts always start with the
// base member role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.UserAccount, error) {
	settings, err := s.store.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.RegistrationEnabled {
		return nil, ErrRegistrationClosed
	}
	if len(in.Password) < 6 {
		return nil, ErrPasswordTooShort
	}

	email := strings.TrimSpace(strings.ToLower(in.Email))
	if _, err := s.store.Users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	user := &models.UserAccount{
		ID:           uuid.New().String(),
		DisplayName:  displayName,
		Email:        email,
		AuthMethod:   models.AuthEmail,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Status:       models.UserActive,
		CreatedAt:    s.now(),
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return user, nil
}

// Login verifies email credentials. During maintenance only accounts
// with admin-panel access may sign in.
func (s *Service) Login(ctx context.Context, email, password string) (*models.UserAccount, error) {
	if err := s.EnsureOwnerAccount(ctx); err != nil {
		return nil, err
	}

	user, err := s.store.Users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.AuthMethod != models.AuthEmail {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	settings, err := s.store.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.LoginEnabled && !s.policy(ctx).Has(user.Role, models.PermAccessAdmin) {
		return nil, ErrLoginDisabled
	}

	return user, nil
}

// SignInWithDiscord matches an existing account by Discord id or
// registers a new one on first sign-in.
func (s *Service) SignInWithDiscord(ctx context.Context, profile *models.DiscordUser) (*models.UserAccount, error) {
	existing, err := s.store.Users.GetByDiscordID(ctx, profile.ID)
	if err == nil {
		existing.DiscordUsername = profile.Tag()
		existing.DiscordAvatar = profile.AvatarURL()
		if err := s.store.Users.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	displayName := profile.GlobalName
	if displayName == "" {
		displayName = profile.Username
	}

	user := &models.UserAccount{
		ID:              uuid.New().String(),
		DisplayName:     displayName,
		Email:           profile.Email,
		AuthMethod:      models.AuthDiscord,
		DiscordID:       profile.ID,
		DiscordUsername: profile.Tag(),
		DiscordAvatar:   profile.AvatarURL(),
		Role:            models.RoleUser,
		Status:          models.UserActive,
		CreatedAt:       s.now(),
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SignInWithGoogle matches an existing account by Google subject id or
// registers a new one on first sign-in.
func (s *Service) SignInWithGoogle(ctx context.Context, profile *models.GoogleUser) (*models.UserAccount, error) {
	existing, err := s.store.Users.GetByGoogleID(ctx, profile.Sub)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	displayName := profile.Name
	if displayName == "" {
		displayName = profile.GivenName
	}
	if displayName == "" {
		displayName = strings.SplitN(profile.Email, "@", 2)[0]
	}

	user := &models.UserAccount{
		ID:          uuid.New().String(),
		DisplayName: displayName,
		Email:       profile.Email,
		AuthMethod:  models.AuthGoogle,
		GoogleID:    profile.Sub,
		Role:        models.RoleUser,
		Status:      models.UserActive,
		CreatedAt:   s.now(),
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser loads one account by id.
func (s *Service) GetUser(ctx context.Context, id string) (*models.UserAccount, error) {
	u, err := s.store.Users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Users lists every account for the admin panel.
func (s *Service) Users(ctx context.Context, actor *models.UserAccount) ([]models.UserAccount, error) {
	if err := s.authorize(ctx, actor, models.PermAccessAdmin); err != nil {
		return nil, err
	}
	return s.store.Users.List(ctx)
}

// roleExists accepts builtin roles and custom role ids.
func (s *Service) roleExists(ctx context.Context, role string) bool {
	if rbac.IsBuiltin(role) {
		return true
	}
	settings, err := s.store.Settings.Get(ctx)
	if err != nil {
		return false
	}
	for _, r := range settings.CustomRoles {
		if r.ID == role {
			return true
		}
	}
	return false
}

// checkAssignment enforces the assignment ceiling: the owner role is
// never assignable, only the owner hands out admin, and admin actors
// stay strictly below their own rank.
func checkAssignment(actor *models.UserAccount, newRole string) error {
	if newRole == models.RoleOwner {
		return ErrOwnerAssignment
	}
	if actor.Role == models.RoleAdmin && newRole == models.RoleAdmin {
		return ErrAdminCeiling
	}
	if newRole == models.RoleAdmin && actor.Role != models.RoleOwner {
		return ErrAdminAssignment
	}
	return nil
}

// UpdateUserRole changes the target's role subject to the ceiling
// rules. The change is visible on the target's next authenticated
// request without re-login.
func (s *Service) UpdateUserRole(ctx context.Context, actor *models.UserAccount, userID, newRole string) error {
	if err := s.authorize(ctx, actor, models.PermManageRoles); err != nil {
		return err
	}

	target, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleOwner {
		return ErrOwnerImmutable
	}
	if err := checkAssignment(actor, newRole); err != nil {
		return err
	}
	if !s.roleExists(ctx, newRole) {
		return ErrUnknownRole
	}

	target.Role = newRole
	return s.store.Users.Update(ctx, target)
}

// DeleteUser removes an account. Only the owner may delete users and
// the owner record itself is undeletable.
func (s *Service) DeleteUser(ctx context.Context, actor *models.UserAccount, userID string) error {
	if err := s.authorize(ctx, actor, models.PermDeleteUsers); err != nil {
		return err
	}

	target, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleOwner {
		return ErrOwnerUndeletable
	}
	return s.store.Users.Delete(ctx, userID)
}

type UserUpdate struct {
	DisplayName *string
	Email       *string
	Status      *models.UserStatus
}

// UpdateUserInfo edits profile fields and the active/banned flag.
func (s *Service) UpdateUserInfo(ctx context.Context, actor *models.UserAccount, userID string, upd UserUpdate) error {
	if err := s.authorize(ctx, actor, models.PermManageUsers); err != nil {
		return err
	}

	target, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleOwner && actor.Role != models.RoleOwner {
		return ErrOwnerProtected
	}

	if upd.DisplayName != nil && *upd.DisplayName != "" {
		target.DisplayName = *upd.DisplayName
	}
	if upd.Email != nil && *upd.Email != "" {
		target.Email = strings.TrimSpace(strings.ToLower(*upd.Email))
	}
	if upd.Status != nil {
		target.Status = *upd.Status
	}
	return s.store.Users.Update(ctx, target)
}

// UpdateUserPassword resets an email account's password.
func (s *Service) UpdateUserPassword(ctx context.Context, actor *models.UserAccount, userID, newPassword string) error {
	if err := s.authorize(ctx, actor, models.PermManageUsers); err != nil {
		return err
	}
	if len(newPassword) < 6 {
		return ErrPasswordTooShort
	}

	target, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleOwner && actor.Role != models.RoleOwner {
		return ErrOwnerProtected
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	target.PasswordHash = string(hash)
	return s.store.Users.Update(ctx, target)
}

type CreateUserInput struct {
	DisplayName string
	Email       string
	Password    string
	Role        string
}

// CreateUser lets an administrator provision an email account with an
// explicit role, subject to the same assignment ceiling.
func (s *Service) CreateUser(ctx context.Context, actor *models.UserAccount, in CreateUserInput) (*models.UserAccount, error) {
	if err := s.authorize(ctx, actor, models.PermManageUsers); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if err := checkAssignment(actor, in.Role); err != nil {
		return nil, err
	}
	if !s.roleExists(ctx, in.Role) {
		return nil, ErrUnknownRole
	}
	if len(in.Password) < 6 {
		return nil, ErrPasswordTooShort
	}

	email := strings.TrimSpace(strings.ToLower(in.Email))
	if _, err := s.store.Users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.UserAccount{
		ID:           uuid.New().String(),
		DisplayName:  in.DisplayName,
		Email:        email,
		MemberID:     GenerateMemberID(),
		AuthMethod:   models.AuthEmail,
		PasswordHash: string(hash),
		Role:         in.Role,
		Status:       models.UserActive,
		CreatedAt:    s.now(),
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return user, nil
}

// GenerateMemberID produces a short human-readable member tag.
func GenerateMemberID() string {
	return fmt.Sprintf("EMD-%04d", rand.Intn(10000))
}

// AssignMemberID stamps a freshly generated member id onto the target.
func (s *Service) AssignMemberID(ctx context.Context, actor *models.UserAccount, userID string) (string, error) {
	if err := s.authorize(ctx, actor, models.PermManageUsers); err != nil {
		return "", err
	}

	target, err := s.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	target.MemberID = GenerateMemberID()
	if err := s.store.Users.Update(ctx, target); err != nil {
		return "", err
	}
	return target.MemberID, nil
}
