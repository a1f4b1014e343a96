package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/emeraldsmp/portal/pkg/auth"
	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/portal"
	"github.com/emeraldsmp/portal/pkg/syncer"
)

type SyncRoutes struct {
	Service    *portal.Service
	Syncer     *syncer.Syncer
	Middleware *auth.Middleware
}

func (sr SyncRoutes) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(sr.Middleware.Authenticated)
	r.Use(auth.RequirePermission(sr.Service, models.PermManageSettings))

	r.Post("/push", sr.Push)
	r.Post("/pull", sr.Pull)

	return r
}

// SyncResult is the operator-facing outcome of one push or pull.
type SyncResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (sr SyncRoutes) run(w http.ResponseWriter, r *http.Request, op func() error) {
	if err := op(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, syncer.ErrSyncDisabled) {
			status = http.StatusBadRequest
		} else if errors.Is(err, syncer.ErrRemoteFailed) {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, SyncResult{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, SyncResult{Success: true})
}

func (sr SyncRoutes) Push(w http.ResponseWriter, r *http.Request) {
	sr.run(w, r, func() error {
		settings, err := sr.Service.RawSettings(r.Context())
		if err != nil {
			return err
		}
		return sr.Syncer.Push(r.Context(), settings.SupabaseConfig)
	})
}

func (sr SyncRoutes) Pull(w http.ResponseWriter, r *http.Request) {
	sr.run(w, r, func() error {
		settings, err := sr.Service.RawSettings(r.Context())
		if err != nil {
			return err
		}
		return sr.Syncer.Pull(r.Context(), settings.SupabaseConfig)
	})
}
