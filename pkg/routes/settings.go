package routes

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/emeraldsmp/portal/pkg/auth"
	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/portal"
)

type SettingsRoutes struct {
	Service    *portal.Service
	Middleware *auth.Middleware
	Cache      SiteInvalidator
}

func (sr SettingsRoutes) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(sr.Middleware.Authenticated)

	r.Get("/", sr.Get)
	r.Put("/", sr.Update)
	r.Put("/social-links", sr.UpdateSocialLinks)
	r.Put("/server-info", sr.UpdateServerInfo)
	r.Put("/season-info", sr.UpdateSeasonInfo)
	r.Put("/discord-config", sr.SaveDiscordConfig)
	r.Put("/google-config", sr.SaveGoogleConfig)
	r.Put("/supabase-config", sr.SaveSupabaseConfig)

	return r
}

func (sr SettingsRoutes) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := sr.Service.Settings(r.Context(), auth.User(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (sr SettingsRoutes) Update(w http.ResponseWriter, r *http.Request) {
	var incoming models.SiteSettings
	if !decode(w, r, &incoming) {
		return
	}

	settings, err := sr.Service.UpdateSettings(r.Context(), auth.User(r.Context()), incoming)
	if err != nil {
		writeError(w, err)
		return
	}
	invalidateSite(r, sr.Cache)
	writeJSON(w, http.StatusOK, settings)
}

func (sr SettingsRoutes) UpdateSocialLinks(w http.ResponseWriter, r *http.Request) {
	var links []models.SocialLink
	if !decode(w, r, &links) {
		return
	}

	if err := sr.Service.UpdateSocialLinks(r.Context(), auth.User(r.Context()), links); err != nil {
		writeError(w, err)
		return
	}
	invalidateSite(r, sr.Cache)
	w.WriteHeader(http.StatusNoContent)
}

func (sr SettingsRoutes) UpdateServerInfo(w http.ResponseWriter, r *http.Request) {
	var info models.ServerInfo
	if !decode(w, r, &info) {
		return
	}

	if err := sr.Service.UpdateServerInfo(r.Context(), auth.User(r.Context()), info); err != nil {
		writeError(w, err)
		return
	}
	invalidateSite(r, sr.Cache)
	w.WriteHeader(http.StatusNoContent)
}

func (sr SettingsRoutes) UpdateSeasonInfo(w http.ResponseWriter, r *http.Request) {
	var info models.SeasonInfo
	if !decode(w, r, &info) {
		return
	}

	if err := sr.Service.UpdateSeasonInfo(r.Context(), auth.User(r.Context()), info); err != nil {
		writeError(w, err)
		return
	}
	invalidateSite(r, sr.Cache)
	w.WriteHeader(http.StatusNoContent)
}

func (sr SettingsRoutes) SaveDiscordConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.OAuthClientConfig
	if !decode(w, r, &cfg) {
		return
	}

	if err := sr.Service.SaveDiscordConfig(r.Context(), auth.User(r.Context()), cfg); err != nil {
		writeError(w, err)
		return
	}
	invalidateSite(r, sr.Cache)
	w.WriteHeader(http.StatusNoContent)
}

func (sr SettingsRoutes) SaveGoogleConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.OAuthClientConfig
	if !decode(w, r, &cfg) {
		return
	}

	if err := sr.Service.SaveGoogleConfig(r.Context(), auth.User(r.Context()), cfg); err != nil {
		writeError(w, err)
		return
	}
	invalidateSite(r, sr.Cache)
	w.WriteHeader(http.StatusNoContent)
}

func (sr SettingsRoutes) SaveSupabaseConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.SupabaseConfig
	if !decode(w, r, &cfg) {
		return
	}

	if err := sr.Service.SaveSupabaseConfig(r.Context(), auth.User(r.Context()), cfg); err != nil {
		writeError(w, err)
		return
	}
	invalidateSite(r, sr.Cache)
	w.WriteHeader(http.StatusNoContent)
}

type RoleRoutes struct {
	Service    *portal.Service
	Middleware *auth.Middleware
}

func (rr RoleRoutes) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(rr.Middleware.Authenticated)

	r.Get("/", rr.List)
	r.Post("/", rr.Save)
	r.Put("/", rr.Save)
	r.Patch("/{id}", rr.SaveExisting)
	r.Delete("/{id}", rr.Delete)

	return r
}

func (rr RoleRoutes) List(w http.ResponseWriter, r *http.Request) {
	roles, err := rr.Service.Roles(r.Context(), auth.User(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roles)
}

func (rr RoleRoutes) Save(w http.ResponseWriter, r *http.Request) {
	var role models.Role
	if !decode(w, r, &role) {
		return
	}

	if err := rr.Service.SaveRole(r.Context(), auth.User(r.Context()), role); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveExisting is the PATCH form; the id comes from the URL.
func (rr RoleRoutes) SaveExisting(w http.ResponseWriter, r *http.Request) {
	var role models.Role
	if !decode(w, r, &role) {
		return
	}
	role.ID = chi.URLParam(r, "id")

	if err := rr.Service.SaveRole(r.Context(), auth.User(r.Context()), role); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rr RoleRoutes) Delete(w http.ResponseWriter, r *http.Request) {
	if err := rr.Service.DeleteRole(r.Context(), auth.User(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
