package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/emeraldsmp/portal/pkg/logger"
	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/store"
)

// Document is a keyed JSON blob; the settings singleton lives here as a
// single row overwritten whole on every save.
type Document struct {
	gorm.Model `json:"-"`

	Key   string `gorm:"uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

const settingsKey = "site_settings"

type settingsRepo struct {
	db *gorm.DB
}

func (r *settingsRepo) Get(ctx context.Context) (*models.SiteSettings, error) {
	var rec Document
	var s models.SiteSettings

	res := r.db.WithContext(ctx).Where("key = ?", settingsKey).First(&rec)
	if res.Error != nil {
		if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, res.Error
		}
	} else if err := json.Unmarshal([]byte(rec.Value), &s); err != nil {
		// corrupt document degrades to defaults
		logger.Warn("settings document failed to parse, using defaults")
		s = models.SiteSettings{}
	}

	return store.ApplyDefaults(&s, time.Now()), nil
}

func (r *settingsRepo) Save(ctx context.Context, s *models.SiteSettings) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).
		Model(&Document{}).
		Where("key = ?", settingsKey).
		Update("value", string(b))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.db.WithContext(ctx).Create(&Document{Key: settingsKey, Value: string(b)}).Error
	}
	return nil
}
