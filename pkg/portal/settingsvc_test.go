package portal

import (
	"context"
	"errors"
	"testing"

	"github.com/emeraldsmp/portal/pkg/models"
)

func TestSettingsRedaction(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	admin := seedUser(t, svc, "the-admin", models.RoleAdmin)

	if err := svc.SaveDiscordConfig(ctx, admin, models.OAuthClientConfig{
		ClientID:     "client",
		ClientSecret: "super-secret",
		RedirectURI:  "https://emeraldsmp.com/callback",
		IsEnabled:    true,
	}); err != nil {
		t.Fatal(err)
	}

	settings, err := svc.Settings(ctx, admin)
	if err != nil {
		t.Fatal(err)
	}
	if settings.DiscordConfig.ClientSecret != "" {
		t.Error("reads must redact the client secret")
	}
	if settings.DiscordConfig.ClientID != "client" {
		t.Error("non-secret fields pass through")
	}

	raw, _ := svc.RawSettings(ctx)
	if raw.DiscordConfig.ClientSecret != "super-secret" {
		t.Error("the stored secret is intact")
	}
}

func TestUpdateSettingsKeepsBlankSecrets(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	admin := seedUser(t, svc, "the-admin", models.RoleAdmin)

	if err := svc.SaveSupabaseConfig(ctx, admin, models.SupabaseConfig{
		URL: "https://x.supabase.co", Key: "service-key", IsEnabled: true,
	}); err != nil {
		t.Fatal(err)
	}

	// a round-trip through the redacted read must not wipe the key
	redacted, _ := svc.Settings(ctx, admin)
	redacted.MaintenanceMessage = "back soon"
	if _, err := svc.UpdateSettings(ctx, admin, *redacted); err != nil {
		t.Fatal(err)
	}

	raw, _ := svc.RawSettings(ctx)
	if raw.SupabaseConfig.Key != "service-key" {
		t.Error("blank incoming secrets keep their stored values")
	}
	if raw.MaintenanceMessage != "back soon" {
		t.Error("the rest of the document updates")
	}

	// an explicit new secret replaces the old one
	redacted.SupabaseConfig.Key = "rotated"
	if _, err := svc.UpdateSettings(ctx, admin, *redacted); err != nil {
		t.Fatal(err)
	}
	raw, _ = svc.RawSettings(ctx)
	if raw.SupabaseConfig.Key != "rotated" {
		t.Error("explicit secrets overwrite")
	}
}

func TestSettingsRequireAdminRank(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	manager := seedUser(t, svc, "the-manager", models.RoleManager)

	if _, err := svc.Settings(ctx, manager); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("managers cannot read settings, got %v", err)
	}
	if err := svc.UpdateServerInfo(ctx, manager, models.ServerInfo{}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("managers cannot edit server info, got %v", err)
	}
}

func TestSitePayload(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	admin := seedUser(t, svc, "the-admin", models.RoleAdmin)

	links := models.DefaultSocialLinks()
	links[1].Enabled = false
	if err := svc.UpdateSocialLinks(ctx, admin, links); err != nil {
		t.Fatal(err)
	}

	info, err := svc.Site(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(info.SocialLinks) != len(links)-1 {
		t.Errorf("disabled links are filtered, got %d", len(info.SocialLinks))
	}
	if len(info.AppForms) == 0 {
		t.Error("the payload includes the form definitions")
	}
	if !info.RegistrationEnabled || !info.LoginEnabled {
		t.Error("defaults enable registration and login")
	}
}

func TestCustomRoleLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	admin := seedUser(t, svc, "the-admin", models.RoleAdmin)

	role := models.Role{
		Name:        "Event Host",
		Permissions: []models.Permission{models.PermAccessAdmin},
	}
	if err := svc.SaveRole(ctx, admin, role); err != nil {
		t.Fatal(err)
	}

	roles, err := svc.Roles(ctx, admin)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, r := range roles {
		if r.ID == "event-host" {
			found = true
			if !r.IsCustom {
				t.Error("saved roles are flagged custom")
			}
		}
	}
	if !found {
		t.Fatal("saved role must be listed after the builtins")
	}
	if len(roles) < 7 {
		t.Errorf("builtins plus the custom role, got %d", len(roles))
	}

	// builtin ids are reserved in both directions
	if err := svc.SaveRole(ctx, admin, models.Role{ID: models.RoleAdmin, Name: "Fake"}); !errors.Is(err, ErrBuiltinRole) {
		t.Errorf("expected ErrBuiltinRole on save, got %v", err)
	}

	if err := svc.SaveRole(ctx, admin, models.Role{Name: "   "}); !errors.Is(err, ErrNameRequired) {
		t.Errorf("a role without a name has no id, got %v", err)
	}
	if err := svc.DeleteRole(ctx, admin, models.RoleStaff); !errors.Is(err, ErrBuiltinRole) {
		t.Errorf("expected ErrBuiltinRole on delete, got %v", err)
	}

	if err := svc.DeleteRole(ctx, admin, "event-host"); err != nil {
		t.Fatal(err)
	}
	settings, _ := svc.RawSettings(ctx)
	if len(settings.CustomRoles) != 0 {
		t.Error("deleted custom roles are removed from the document")
	}
}

func TestSettingsDefaultsApplied(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	settings, err := svc.store.Settings.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if settings.SchemaVersion != models.SettingsSchemaVersion {
		t.Errorf("schema version = %d, want %d", settings.SchemaVersion, models.SettingsSchemaVersion)
	}
	if settings.MaxApplicationsPerUser != 3 {
		t.Errorf("default cap = %d, want 3", settings.MaxApplicationsPerUser)
	}
	if len(settings.AppForms) != 3 {
		t.Errorf("three seeded forms, got %d", len(settings.AppForms))
	}
	if len(settings.SocialLinks) == 0 || settings.ServerInfo.Gamemode == "" {
		t.Error("marketing defaults must be populated")
	}
}
