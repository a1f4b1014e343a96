package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"

	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/store"
)

// isUniqueViolation detects a postgres duplicate-key error so races on
// the unique email index surface as ErrDuplicate instead of a 500.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type User struct {
	gorm.Model `json:"-"`

	UserID          string  `gorm:"uniqueIndex;not null"`
	DisplayName     string  `gorm:"not null"`
	Email           *string `gorm:"uniqueIndex"`
	MemberID        *string
	AuthMethod      string  `gorm:"not null"`
	DiscordID       *string `gorm:"uniqueIndex"`
	DiscordUsername string
	DiscordAvatar   string
	GoogleID        *string `gorm:"uniqueIndex"`
	PasswordHash    string
	Role            string `gorm:"not null"`
	Status          string `gorm:"not null;default:active"`
	RegisteredAt    time.Time
}

func (u *User) toModel() *models.UserAccount {
	out := &models.UserAccount{
		ID:              u.UserID,
		DisplayName:     u.DisplayName,
		AuthMethod:      models.AuthMethod(u.AuthMethod),
		DiscordUsername: u.DiscordUsername,
		DiscordAvatar:   u.DiscordAvatar,
		PasswordHash:    u.PasswordHash,
		Role:            u.Role,
		Status:          models.UserStatus(u.Status),
		CreatedAt:       u.RegisteredAt,
	}
	if u.Email != nil {
		out.Email = *u.Email
	}
	if u.MemberID != nil {
		out.MemberID = *u.MemberID
	}
	if u.DiscordID != nil {
		out.DiscordID = *u.DiscordID
	}
	if u.GoogleID != nil {
		out.GoogleID = *u.GoogleID
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fromModel(u *models.UserAccount) *User {
	return &User{
		UserID:          u.ID,
		DisplayName:     u.DisplayName,
		Email:           optional(u.Email),
		MemberID:        optional(u.MemberID),
		AuthMethod:      string(u.AuthMethod),
		DiscordID:       optional(u.DiscordID),
		DiscordUsername: u.DiscordUsername,
		DiscordAvatar:   u.DiscordAvatar,
		GoogleID:        optional(u.GoogleID),
		PasswordHash:    u.PasswordHash,
		Role:            u.Role,
		Status:          string(u.Status),
		RegisteredAt:    u.CreatedAt,
	}
}

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) List(ctx context.Context) ([]models.UserAccount, error) {
	var recs []User
	res := r.db.WithContext(ctx).Order("id").Find(&recs)
	if res.Error != nil {
		return nil, res.Error
	}
	out := make([]models.UserAccount, 0, len(recs))
	for i := range recs {
		out = append(out, *recs[i].toModel())
	}
	return out, nil
}

func (r *userRepo) getWhere(ctx context.Context, query string, arg string) (*models.UserAccount, error) {
	if arg == "" {
		return nil, store.ErrNotFound
	}
	var rec User
	res := r.db.WithContext(ctx).Where(query, arg).First(&rec)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, res.Error
	}
	return rec.toModel(), nil
}

func (r *userRepo) Get(ctx context.Context, id string) (*models.UserAccount, error) {
	return r.getWhere(ctx, "user_id = ?", id)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.UserAccount, error) {
	return r.getWhere(ctx, "email = ?", email)
}

func (r *userRepo) GetByDiscordID(ctx context.Context, discordID string) (*models.UserAccount, error) {
	return r.getWhere(ctx, "discord_id = ?", discordID)
}

func (r *userRepo) GetByGoogleID(ctx context.Context, googleID string) (*models.UserAccount, error) {
	return r.getWhere(ctx, "google_id = ?", googleID)
}

func (r *userRepo) Create(ctx context.Context, u *models.UserAccount) error {
	err := r.db.WithContext(ctx).Create(fromModel(u)).Error
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	return err
}

func (r *userRepo) Update(ctx context.Context, u *models.UserAccount) error {
	rec := fromModel(u)
	res := r.db.WithContext(ctx).
		Model(&User{}).
		Where("user_id = ?", u.ID).
		Select("*").
		Omit("id", "created_at", "user_id").
		Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("user_id = ?", id).Delete(&User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
