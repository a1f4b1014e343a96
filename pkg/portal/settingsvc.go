package portal

import (
	"context"

	"github.com/emeraldsmp/portal/pkg/forms"
	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/rbac"
)

// redactSecrets blanks credential material before a settings document
// leaves the service. Saves merge blank secrets back from storage.
func redactSecrets(s *models.SiteSettings) {
	s.DiscordConfig.ClientSecret = ""
	s.GoogleConfig.ClientSecret = ""
	s.SupabaseConfig.Key = ""
}

// Settings returns the full settings document with secrets redacted.
func (s *Service) Settings(ctx context.Context, actor *models.UserAccount) (*models.SiteSettings, error) {
	if err := s.authorize(ctx, actor, models.PermManageSettings); err != nil {
		return nil, err
	}
	settings, err := s.store.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := *settings
	redactSecrets(&out)
	return &out, nil
}

// RawSettings skips redaction for internal consumers (OAuth exchange,
// cloud sync). Never expose its result over the API.
func (s *Service) RawSettings(ctx context.Context) (*models.SiteSettings, error) {
	return s.store.Settings.Get(ctx)
}

// UpdateSettings overwrites the document. Blank secrets in the incoming
// document keep their stored values, so a client working from a
// redacted read never wipes credentials.
func (s *Service) UpdateSettings(ctx context.Context, actor *models.UserAccount, incoming models.SiteSettings) (*models.SiteSettings, error) {
	if err := s.authorize(ctx, actor, models.PermManageSettings); err != nil {
		return nil, err
	}
	current, err := s.store.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	if incoming.DiscordConfig.ClientSecret == "" {
		incoming.DiscordConfig.ClientSecret = current.DiscordConfig.ClientSecret
	}
	if incoming.GoogleConfig.ClientSecret == "" {
		incoming.GoogleConfig.ClientSecret = current.GoogleConfig.ClientSecret
	}
	if incoming.SupabaseConfig.Key == "" {
		incoming.SupabaseConfig.Key = current.SupabaseConfig.Key
	}
	incoming.SchemaVersion = models.SettingsSchemaVersion

	if err := s.store.Settings.Save(ctx, &incoming); err != nil {
		return nil, err
	}
	out := incoming
	redactSecrets(&out)
	return &out, nil
}

// UpdateSocialLinks replaces the social link list.
func (s *Service) UpdateSocialLinks(ctx context.Context, actor *models.UserAccount, links []models.SocialLink) error {
	if err := s.authorize(ctx, actor, models.PermManageSettings); err != nil {
		return err
	}
	return s.mutateSettings(ctx, func(st *models.SiteSettings) {
		st.SocialLinks = links
	})
}

// UpdateServerInfo replaces the server facts card.
func (s *Service) UpdateServerInfo(ctx context.Context, actor *models.UserAccount, info models.ServerInfo) error {
	if err := s.authorize(ctx, actor, models.PermManageServer); err != nil {
		return err
	}
	return s.mutateSettings(ctx, func(st *models.SiteSettings) {
		st.ServerInfo = info
	})
}

// UpdateSeasonInfo replaces the season banner content.
func (s *Service) UpdateSeasonInfo(ctx context.Context, actor *models.UserAccount, info models.SeasonInfo) error {
	if err := s.authorize(ctx, actor, models.PermManageServer); err != nil {
		return err
	}
	return s.mutateSettings(ctx, func(st *models.SiteSettings) {
		st.SeasonInfo = info
	})
}

// SaveDiscordConfig stores the Discord OAuth client registration. A
// blank incoming secret keeps the stored one.
func (s *Service) SaveDiscordConfig(ctx context.Context, actor *models.UserAccount, cfg models.OAuthClientConfig) error {
	if err := s.authorize(ctx, actor, models.PermManageSettings); err != nil {
		return err
	}
	return s.mutateSettings(ctx, func(st *models.SiteSettings) {
		if cfg.ClientSecret == "" {
			cfg.ClientSecret = st.DiscordConfig.ClientSecret
		}
		st.DiscordConfig = cfg
	})
}

func (s *Service) SaveGoogleConfig(ctx context.Context, actor *models.UserAccount, cfg models.OAuthClientConfig) error {
	if err := s.authorize(ctx, actor, models.PermManageSettings); err != nil {
		return err
	}
	return s.mutateSettings(ctx, func(st *models.SiteSettings) {
		if cfg.ClientSecret == "" {
			cfg.ClientSecret = st.GoogleConfig.ClientSecret
		}
		st.GoogleConfig = cfg
	})
}

func (s *Service) SaveSupabaseConfig(ctx context.Context, actor *models.UserAccount, cfg models.SupabaseConfig) error {
	if err := s.authorize(ctx, actor, models.PermManageSettings); err != nil {
		return err
	}
	return s.mutateSettings(ctx, func(st *models.SiteSettings) {
		if cfg.Key == "" {
			cfg.Key = st.SupabaseConfig.Key
		}
		st.SupabaseConfig = cfg
	})
}

// SiteInfo is the unauthenticated marketing payload: everything the
// public landing page needs in one read.
type SiteInfo struct {
	SocialLinks         []models.SocialLink `json:"social_links"`
	ServerInfo          models.ServerInfo   `json:"server_info"`
	SeasonInfo          models.SeasonInfo   `json:"season_info"`
	AppForms            []models.AppForm    `json:"app_forms"`
	RegistrationEnabled bool                `json:"registration_enabled"`
	LoginEnabled        bool                `json:"login_enabled"`
	MaintenanceMessage  string              `json:"maintenance_message"`
	DiscordEnabled      bool                `json:"discord_enabled"`
	GoogleEnabled       bool                `json:"google_enabled"`
}

// Site assembles the public payload. Only enabled social links are
// included, and schedules are evaluated so form statuses are current.
func (s *Service) Site(ctx context.Context) (*SiteInfo, error) {
	evaluated, err := s.Forms(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.store.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	links := make([]models.SocialLink, 0, len(settings.SocialLinks))
	for _, l := range settings.SocialLinks {
		if l.Enabled {
			links = append(links, l)
		}
	}

	return &SiteInfo{
		SocialLinks:         links,
		ServerInfo:          settings.ServerInfo,
		SeasonInfo:          settings.SeasonInfo,
		AppForms:            evaluated,
		RegistrationEnabled: settings.RegistrationEnabled,
		LoginEnabled:        settings.LoginEnabled,
		MaintenanceMessage:  settings.MaintenanceMessage,
		DiscordEnabled:      settings.DiscordConfig.IsEnabled,
		GoogleEnabled:       settings.GoogleConfig.IsEnabled,
	}, nil
}

// Roles lists the builtin roles followed by the admin-defined ones.
func (s *Service) Roles(ctx context.Context, actor *models.UserAccount) ([]models.Role, error) {
	if err := s.authorize(ctx, actor, models.PermAccessAdmin); err != nil {
		return nil, err
	}
	settings, err := s.store.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	return append(rbac.BuiltinRoles(), settings.CustomRoles...), nil
}

// SaveRole creates or updates a custom role. Builtin role ids are
// reserved.
func (s *Service) SaveRole(ctx context.Context, actor *models.UserAccount, role models.Role) error {
	if err := s.authorize(ctx, actor, models.PermManageRoles); err != nil {
		return err
	}
	if role.ID == "" {
		role.ID = forms.Slugify(role.Name)
	}
	if role.ID == "" {
		return ErrNameRequired
	}
	if rbac.IsBuiltin(role.ID) {
		return ErrBuiltinRole
	}
	role.IsCustom = true

	return s.mutateSettings(ctx, func(st *models.SiteSettings) {
		for i := range st.CustomRoles {
			if st.CustomRoles[i].ID == role.ID {
				st.CustomRoles[i] = role
				return
			}
		}
		st.CustomRoles = append(st.CustomRoles, role)
	})
}

// DeleteRole removes a custom role. Users holding it fall back to no
// extra permissions on their next request.
func (s *Service) DeleteRole(ctx context.Context, actor *models.UserAccount, id string) error {
	if err := s.authorize(ctx, actor, models.PermManageRoles); err != nil {
		return err
	}
	if rbac.IsBuiltin(id) {
		return ErrBuiltinRole
	}
	return s.mutateSettings(ctx, func(st *models.SiteSettings) {
		for i := range st.CustomRoles {
			if st.CustomRoles[i].ID == id {
				st.CustomRoles = append(st.CustomRoles[:i], st.CustomRoles[i+1:]...)
				return
			}
		}
	})
}

func (s *Service) mutateSettings(ctx context.Context, fn func(*models.SiteSettings)) error {
	settings, err := s.store.Settings.Get(ctx)
	if err != nil {
		return err
	}
	fn(settings)
	return s.store.Settings.Save(ctx, settings)
}
