package models

import "time"

type SocialLink struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Enabled     bool   `json:"enabled"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type ServerInfo struct {
	Gamemode   string   `json:"gamemode"`
	Version    string   `json:"version"`
	Access     string   `json:"access"`
	ServerType string   `json:"server_type"`
	Rules      []string `json:"rules"`
}

type SeasonInfo struct {
	Number        int    `json:"number"`
	Name          string `json:"name"`
	StartDate     string `json:"start_date"`
	Description   string `json:"description"`
	IsActive      bool   `json:"is_active"`
	Theme         string `json:"theme"`
	BannerImage   string `json:"banner_image"`
	BannerOverlay int    `json:"banner_overlay"`
	HeroBadgeText string `json:"hero_badge_text,omitempty"`
}

// OAuthClientConfig is the admin-managed client registration for one
// provider. The secret stays server-side; API reads redact it.
type OAuthClientConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
	IsEnabled    bool   `json:"is_enabled"`
}

// SupabaseConfig points the manual cloud sync at an external backend.
type SupabaseConfig struct {
	URL       string `json:"url"`
	Key       string `json:"key"`
	IsEnabled bool   `json:"is_enabled"`
}

// SiteSettings is the single settings document. Missing fields are
// defaulted at load time by store.ApplyDefaults, so in-memory instances
// are always fully populated.
type SiteSettings struct {
	SchemaVersion          int               `json:"schema_version"`
	SocialLinks            []SocialLink      `json:"social_links"`
	ServerInfo             ServerInfo        `json:"server_info"`
	SeasonInfo             SeasonInfo        `json:"season_info"`
	DiscordConfig          OAuthClientConfig `json:"discord_config"`
	GoogleConfig           OAuthClientConfig `json:"google_config"`
	SupabaseConfig         SupabaseConfig    `json:"supabase_config"`
	RegistrationEnabled    bool              `json:"registration_enabled"`
	LoginEnabled           bool              `json:"login_enabled"`
	MaintenanceMessage     string            `json:"maintenance_message"`
	MaxApplicationsPerUser int               `json:"max_applications_per_user"`
	AppForms               []AppForm         `json:"app_forms"`
	CustomRoles            []Role            `json:"custom_roles"`
}

// SettingsSchemaVersion is bumped when the document shape changes;
// ApplyDefaults migrates older documents forward.
const SettingsSchemaVersion = 2

// ProtectedFormID always remains deletable-proof so a default submission
// path exists.
const ProtectedFormID = "member-app"

// BanAppealFormID stays available to banned users.
const BanAppealFormID = "ban-appeal"

func DefaultSocialLinks() []SocialLink {
	return []SocialLink{
		{ID: "discord", Name: "Discord", URL: "https://discord.gg/emeraldsmp", Enabled: true, Icon: "discord", Description: "Join our primary community hub", Color: "indigo"},
		{ID: "youtube", Name: "YouTube", URL: "https://youtube.com/@emeraldsmp", Enabled: true, Icon: "youtube", Description: "Watch highlights & content", Color: "red"},
		{ID: "instagram", Name: "Instagram", URL: "https://instagram.com/emeraldsmp", Enabled: true, Icon: "instagram", Description: "Behind the scenes photos", Color: "pink"},
		{ID: "tiktok", Name: "TikTok", URL: "https://tiktok.com/@emeraldsmp", Enabled: true, Icon: "tiktok", Description: "Short-form clips", Color: "neutral"},
	}
}

func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Gamemode:   "Survival SMP",
		Version:    "Java 1.21+",
		Access:     "Whitelisted / Private",
		ServerType: "Semi-Vanilla",
		Rules: []string{
			"No griefing, stealing, or destroying builds",
			"No cheating, exploiting, or unfair advantages",
			"Respect all members; toxicity is not tolerated",
			"No hate speech, discrimination, or harassment",
			"Keep the environment and shared spaces clean",
			"Active communication in Discord is expected",
		},
	}
}

func DefaultSeasonInfo(now time.Time) SeasonInfo {
	return SeasonInfo{
		Number:        1,
		Name:          "New Beginnings",
		StartDate:     now.Format("2006-01-02"),
		Description:   "The first season of Emerald SMP: a fresh world full of possibilities. Build, explore, and create lasting memories with the community.",
		IsActive:      true,
		Theme:         "emerald",
		BannerOverlay: 60,
	}
}

func DefaultAppForms() []AppForm {
	return []AppForm{
		{
			ID:          ProtectedFormID,
			Name:        "Member Application",
			Description: "Apply to become a whitelisted member of our private SMP community.",
			Enabled:     true,
			Status:      FormOpen,
			Schedule:    Schedule{Timezone: "UTC"},
			Fields: []AppField{
				{ID: "username", Label: "Minecraft Username", Type: FieldText, Placeholder: "e.g. Steve", Required: true, Enabled: true},
				{ID: "discord", Label: "Discord Username", Type: FieldText, Placeholder: "e.g. username#1234", Required: true, Enabled: true},
				{ID: "age", Label: "Age", Type: FieldNumber, Placeholder: "e.g. 18", Required: true, Enabled: true},
				{ID: "timezone", Label: "Time Zone", Type: FieldSelect, Required: true, Enabled: true, Options: []string{
					"UTC-12:00 to UTC-08:00 (Pacific)",
					"UTC-07:00 to UTC-05:00 (Americas)",
					"UTC-04:00 to UTC-01:00 (Atlantic)",
					"UTC+00:00 to UTC+03:00 (Europe/Africa)",
					"UTC+04:00 to UTC+06:00 (Central Asia)",
					"UTC+07:00 to UTC+09:00 (East Asia)",
					"UTC+10:00 to UTC+12:00 (Oceania)",
				}},
				{ID: "why", Label: "Why do you want to join?", Type: FieldTextarea, Placeholder: "Tell us what excites you about Emerald SMP...", Required: true, Enabled: true},
				{ID: "experience", Label: "SMP Experience", Type: FieldTextarea, Placeholder: "Describe your experience with Minecraft SMPs...", Required: true, Enabled: true},
			},
		},
		{
			ID:          "staff-app",
			Name:        "Staff Application",
			Description: "Interested in helping manage and protect our community? Apply for a staff position.",
			Enabled:     true,
			Status:      FormOpen,
			Schedule:    Schedule{Timezone: "UTC"},
			Fields: []AppField{
				{ID: "username", Label: "Minecraft Username", Type: FieldText, Placeholder: "Your in-game name", Required: true, Enabled: true},
				{ID: "age", Label: "Age", Type: FieldNumber, Placeholder: "Minimum age 16+", Required: true, Enabled: true},
				{ID: "staff-experience", Label: "Previous Moderation Experience", Type: FieldTextarea, Placeholder: "List any previous servers you have moderated", Required: true, Enabled: true},
				{ID: "availability", Label: "Average Hours Per Week", Type: FieldNumber, Placeholder: "How much time can you dedicate?", Required: true, Enabled: true},
				{ID: "commands", Label: "Knowledge of Staff Commands", Type: FieldTextarea, Placeholder: "Briefly describe your knowledge of CoreProtect, Essentials, etc.", Required: true, Enabled: true},
			},
		},
		{
			ID:          BanAppealFormID,
			Name:        "Ban Appeal",
			Description: "Have you been banned? Submit an appeal here to have your case reviewed by our staff.",
			Enabled:     true,
			Status:      FormOpen,
			Schedule:    Schedule{Timezone: "UTC"},
			Fields: []AppField{
				{ID: "username", Label: "Minecraft Username", Type: FieldText, Placeholder: "Your in-game name", Required: true, Enabled: true},
				{ID: "ban-reason", Label: "Reason for Ban", Type: FieldTextarea, Placeholder: "What were you banned for?", Required: true, Enabled: true},
				{ID: "appeal-reason", Label: "Why should you be unbanned?", Type: FieldTextarea, Placeholder: "Explain why we should reconsider your ban", Required: true, Enabled: true},
				{ID: "learned", Label: "What have you learned?", Type: FieldTextarea, Placeholder: "Tell us why you won't break the rules again", Required: true, Enabled: true},
			},
		},
	}
}
