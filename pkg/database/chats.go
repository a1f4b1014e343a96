package database

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/emeraldsmp/portal/pkg/models"
)

type Chat struct {
	gorm.Model `json:"-"`

	AppID            string `gorm:"uniqueIndex;not null"`
	Status           string `gorm:"not null;default:open"`
	InitiatedByStaff bool
	Messages         string `gorm:"type:text"`
}

func (c *Chat) toModel() *models.ApplicationChat {
	out := &models.ApplicationChat{
		AppID:            c.AppID,
		Status:           models.ChatStatus(c.Status),
		InitiatedByStaff: c.InitiatedByStaff,
	}
	if err := json.Unmarshal([]byte(c.Messages), &out.Messages); err != nil || out.Messages == nil {
		out.Messages = []models.ChatMessage{}
	}
	return out
}

type chatRepo struct {
	db *gorm.DB
}

func (r *chatRepo) Get(ctx context.Context, appID string) (*models.ApplicationChat, error) {
	var rec Chat
	res := r.db.WithContext(ctx).Where("app_id = ?", appID).First(&rec)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return rec.toModel(), nil
}

func (r *chatRepo) Save(ctx context.Context, c *models.ApplicationChat) error {
	msgs, err := json.Marshal(c.Messages)
	if err != nil {
		return err
	}
	rec := Chat{
		AppID:            c.AppID,
		Status:           string(c.Status),
		InitiatedByStaff: c.InitiatedByStaff,
		Messages:         string(msgs),
	}

	res := r.db.WithContext(ctx).
		Model(&Chat{}).
		Where("app_id = ?", c.AppID).
		Select("status", "initiated_by_staff", "messages").
		Updates(&rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.db.WithContext(ctx).Create(&rec).Error
	}
	return nil
}

func (r *chatRepo) Delete(ctx context.Context, appID string) error {
	return r.db.WithContext(ctx).Where("app_id = ?", appID).Delete(&Chat{}).Error
}
