package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/store"
)

type Application struct {
	gorm.Model `json:"-"`

	AppID        string `gorm:"uniqueIndex;not null"`
	UserID       string `gorm:"index;not null"`
	FormID       string `gorm:"not null"`
	FormName     string
	Username     string
	Responses    string `gorm:"type:text"`
	Status       string `gorm:"not null;default:pending"`
	SubmittedAt  time.Time
	ReviewedAt   *time.Time
	Notes        string
	AdminMessage string
}

func (a *Application) toModel() *models.ApplicationEntry {
	out := &models.ApplicationEntry{
		ID:           a.AppID,
		UserID:       a.UserID,
		FormID:       a.FormID,
		FormName:     a.FormName,
		Username:     a.Username,
		Status:       models.ApplicationStatus(a.Status),
		SubmittedAt:  a.SubmittedAt,
		ReviewedAt:   a.ReviewedAt,
		Notes:        a.Notes,
		AdminMessage: a.AdminMessage,
	}
	// responses blob degrades to empty, never an error
	if err := json.Unmarshal([]byte(a.Responses), &out.Responses); err != nil || out.Responses == nil {
		out.Responses = map[string]string{}
	}
	return out
}

func fromEntry(a *models.ApplicationEntry) *Application {
	responses, _ := json.Marshal(a.Responses)
	return &Application{
		AppID:        a.ID,
		UserID:       a.UserID,
		FormID:       a.FormID,
		FormName:     a.FormName,
		Username:     a.Username,
		Responses:    string(responses),
		Status:       string(a.Status),
		SubmittedAt:  a.SubmittedAt,
		ReviewedAt:   a.ReviewedAt,
		Notes:        a.Notes,
		AdminMessage: a.AdminMessage,
	}
}

type applicationRepo struct {
	db *gorm.DB
}

func (r *applicationRepo) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]models.ApplicationEntry, error) {
	var recs []Application
	q := r.db.WithContext(ctx).Order("submitted_at DESC")
	if scope != nil {
		q = scope(q)
	}
	if res := q.Find(&recs); res.Error != nil {
		return nil, res.Error
	}
	out := make([]models.ApplicationEntry, 0, len(recs))
	for i := range recs {
		out = append(out, *recs[i].toModel())
	}
	return out, nil
}

func (r *applicationRepo) List(ctx context.Context) ([]models.ApplicationEntry, error) {
	return r.list(ctx, nil)
}

func (r *applicationRepo) ListByUser(ctx context.Context, userID string) ([]models.ApplicationEntry, error) {
	return r.list(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ?", userID)
	})
}

func (r *applicationRepo) Get(ctx context.Context, id string) (*models.ApplicationEntry, error) {
	var rec Application
	res := r.db.WithContext(ctx).Where("app_id = ?", id).First(&rec)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, res.Error
	}
	return rec.toModel(), nil
}

func (r *applicationRepo) Create(ctx context.Context, a *models.ApplicationEntry) error {
	return r.db.WithContext(ctx).Create(fromEntry(a)).Error
}

func (r *applicationRepo) Update(ctx context.Context, a *models.ApplicationEntry) error {
	res := r.db.WithContext(ctx).
		Model(&Application{}).
		Where("app_id = ?", a.ID).
		Select("*").
		Omit("id", "created_at", "app_id").
		Updates(fromEntry(a))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *applicationRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("app_id = ?", id).Delete(&Application{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
