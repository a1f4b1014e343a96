package routes

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/emeraldsmp/portal/pkg/auth"
	"github.com/emeraldsmp/portal/pkg/logger"
	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/portal"
)

var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/api/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

type AuthRoutes struct {
	Service    *portal.Service
	Sessions   auth.SessionStore
	Middleware *auth.Middleware
}

func (ar AuthRoutes) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", ar.Register)
	r.Post("/login", ar.Login)
	r.Get("/login/{provider}", ar.AuthorizeURL)
	r.Post("/callback", ar.Callback)
	r.Post("/callback/{provider}", ar.Callback)

	r.Group(func(r chi.Router) {
		r.Use(ar.Middleware.Authenticated)
		r.Post("/logout", ar.Logout)
		r.Get("/session", ar.Session)
	})

	return r
}

type RegisterPayload struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (ar AuthRoutes) Register(w http.ResponseWriter, r *http.Request) {
	var pl RegisterPayload
	if !decode(w, r, &pl) {
		return
	}

	user, err := ar.Service.Register(r.Context(), portal.RegisterInput{
		Email:       pl.Email,
		Password:    pl.Password,
		DisplayName: pl.DisplayName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if err := ar.startSession(w, r.Context(), user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ar AuthRoutes) Login(w http.ResponseWriter, r *http.Request) {
	var pl LoginPayload
	if !decode(w, r, &pl) {
		return
	}

	user, err := ar.Service.Login(r.Context(), pl.Email, pl.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := ar.startSession(w, r.Context(), user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (ar AuthRoutes) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:   auth.SessionCookie,
		Path:   "/",
		MaxAge: -1,
	})

	sID := auth.SessionID(r.Context())
	if sID == "" {
		return
	}
	ar.Sessions.Delete(r.Context(), sID)
}

func (ar AuthRoutes) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, auth.User(r.Context()))
}

// oauthConfig assembles an exchange config from the admin-managed
// provider registration. Returns nil when the provider is disabled or
// unconfigured.
func (ar AuthRoutes) oauthConfig(ctx context.Context, provider string) (*oauth2.Config, error) {
	settings, err := ar.Service.RawSettings(ctx)
	if err != nil {
		return nil, err
	}

	switch provider {
	case "discord":
		cfg := settings.DiscordConfig
		if !cfg.IsEnabled || cfg.ClientID == "" {
			return nil, nil
		}
		return &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"identify", "email"},
			Endpoint:     discordEndpoint,
		}, nil
	case "google":
		cfg := settings.GoogleConfig
		if !cfg.IsEnabled || cfg.ClientID == "" {
			return nil, nil
		}
		return &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleEndpoint,
		}, nil
	}
	return nil, nil
}

type AuthorizeURLPayload struct {
	URL string `json:"url"`
}

// AuthorizeURL hands the client the provider consent page URL. The
// state parameter round-trips the provider name.
func (ar AuthRoutes) AuthorizeURL(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	conf, err := ar.oauthConfig(r.Context(), provider)
	if err != nil {
		writeError(w, err)
		return
	}
	if conf == nil {
		w.WriteHeader(http.StatusNotFound)
		w.Write(models.CreateError("provider is not enabled"))
		return
	}

	writeJSON(w, http.StatusOK, AuthorizeURLPayload{
		URL: conf.AuthCodeURL(url.QueryEscape(provider)),
	})
}

type CallbackPayload struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// Callback exchanges the authorization code server-side and signs the
// user in. Secrets never leave the server. The provider comes from the
// URL or from the round-tripped state parameter.
func (ar AuthRoutes) Callback(w http.ResponseWriter, r *http.Request) {
	var pl CallbackPayload
	if !decode(w, r, &pl) {
		return
	}

	provider := chi.URLParam(r, "provider")
	if provider == "" {
		provider = pl.State
	}
	if len(pl.Code) == 0 {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write(models.CreateError("missing authorization code"))
		return
	}

	conf, err := ar.oauthConfig(r.Context(), provider)
	if err != nil {
		writeError(w, err)
		return
	}
	if conf == nil {
		w.WriteHeader(http.StatusNotFound)
		w.Write(models.CreateError("provider is not enabled"))
		return
	}

	tok, err := conf.Exchange(r.Context(), pl.Code)
	if err != nil {
		logger.Warn("failed to exchange authorization code", zap.String("provider", provider), zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		w.Write(models.CreateError("authorization code exchange failed"))
		return
	}

	var user *models.UserAccount
	switch provider {
	case "discord":
		profile, err := models.GetDiscordUser(tok.AccessToken)
		if err != nil {
			writeError(w, err)
			return
		}
		user, err = ar.Service.SignInWithDiscord(r.Context(), profile)
		if err != nil {
			writeError(w, err)
			return
		}
	case "google":
		profile, err := models.GetGoogleUser(tok.AccessToken)
		if err != nil {
			writeError(w, err)
			return
		}
		user, err = ar.Service.SignInWithGoogle(r.Context(), profile)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	if err := ar.startSession(w, r.Context(), user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (ar AuthRoutes) startSession(w http.ResponseWriter, ctx context.Context, user *models.UserAccount) error {
	sID, err := ar.Sessions.Create(ctx, auth.Session{UserID: user.ID})
	if err != nil {
		logger.Error("failed to save session", zap.Error(err))
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    sID,
		Path:     "/",
		Expires:  time.Now().Add(auth.SessionTTL),
		HttpOnly: true,
	})
	return nil
}
