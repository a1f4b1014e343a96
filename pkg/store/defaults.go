package store

import (
	"time"

	"github.com/emeraldsmp/portal/pkg/models"
)

// ApplyDefaults migrates a loaded settings document to the current
// schema, filling every missing field so callers always see a fully
// populated structure. It is the single place document defaulting
// happens; repositories call it on every read.
func ApplyDefaults(s *models.SiteSettings, now time.Time) *models.SiteSettings {
	if s == nil {
		s = &models.SiteSettings{}
	}
	if s.SchemaVersion == 0 {
		// v0 documents predate explicit toggles; they behaved as enabled.
		s.RegistrationEnabled = true
		s.LoginEnabled = true
	}
	if s.SocialLinks == nil {
		s.SocialLinks = models.DefaultSocialLinks()
	}
	if s.ServerInfo.Gamemode == "" {
		s.ServerInfo = models.DefaultServerInfo()
	}
	if s.ServerInfo.Rules == nil {
		s.ServerInfo.Rules = []string{}
	}
	if s.SeasonInfo.Number == 0 {
		s.SeasonInfo = models.DefaultSeasonInfo(now)
	}
	if s.MaintenanceMessage == "" {
		s.MaintenanceMessage = "System is currently undergoing maintenance. Please check back later."
	}
	if s.MaxApplicationsPerUser == 0 {
		s.MaxApplicationsPerUser = 3
	}
	if s.AppForms == nil {
		s.AppForms = models.DefaultAppForms()
	}
	if s.CustomRoles == nil {
		s.CustomRoles = []models.Role{}
	}
	s.SchemaVersion = models.SettingsSchemaVersion
	return s
}
