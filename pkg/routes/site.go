package routes

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"go.uber.org/zap"

	"github.com/emeraldsmp/portal/pkg/cache"
	"github.com/emeraldsmp/portal/pkg/logger"
	"github.com/emeraldsmp/portal/pkg/portal"
)

// SiteInvalidator drops the cached public payload after a write that
// changes it. *cache.SiteCache implements it; nil disables caching.
type SiteInvalidator interface {
	Invalidate(ctx context.Context) error
}

func invalidateSite(r *http.Request, c SiteInvalidator) {
	if c == nil {
		return
	}
	if err := c.Invalidate(r.Context()); err != nil {
		logger.Warn("failed to invalidate site payload cache", zap.Error(err))
	}
}

// SiteRoutes serves the unauthenticated landing page payload. Cache is
// optional; without redis every read renders from the store.
type SiteRoutes struct {
	Service *portal.Service
	Cache   *cache.SiteCache
}

func (sr SiteRoutes) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", sr.Get)
	return r
}

func (sr SiteRoutes) Get(w http.ResponseWriter, r *http.Request) {
	if sr.Cache != nil {
		b, regen, err := sr.Cache.Get(r.Context())
		if err == nil && b != nil && !regen {
			w.Header().Add("Content-Type", "application/json")
			w.Write(b)
			return
		}
	}

	info, err := sr.Service.Site(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	b, err := json.Marshal(info)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if sr.Cache != nil {
		if err := sr.Cache.Set(r.Context(), b); err != nil {
			logger.Warn("failed to cache site payload", zap.Error(err))
		}
	}

	w.Header().Add("Content-Type", "application/json")
	w.Write(b)
}
