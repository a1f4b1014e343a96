package auth

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/emeraldsmp/portal/pkg/logger"
	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/store"
)

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	userKey      contextKey = "user"
)

// SessionID returns the session id attached by Authenticated.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// User returns the account attached by Authenticated, or nil.
func User(ctx context.Context) *models.UserAccount {
	u, _ := ctx.Value(userKey).(*models.UserAccount)
	return u
}

// Middleware resolves the session cookie into a user account and
// injects both into the request context.
type Middleware struct {
	Sessions SessionStore
	Users    store.UserRepo
}

func NewMiddleware(sessions SessionStore, users store.UserRepo) *Middleware {
	return &Middleware{Sessions: sessions, Users: users}
}

// Authenticated rejects requests without a valid session. The account
// is re-read from the store so role changes and bans take effect on the
// next request, not the next login.
func (m *Middleware) Authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookie)
		if err != nil {
			if err == http.ErrNoCookie {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			w.WriteHeader(http.StatusBadRequest)
			return
		}

		sessionID := c.Value

		session, err := m.Sessions.Get(r.Context(), sessionID)
		if err != nil {
			logger.Error("failed to get session", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		if session == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		user, err := m.Users.Get(r.Context(), session.UserID)
		if err != nil {
			// The account was deleted out from under the session
			if errors.Is(err, store.ErrNotFound) {
				m.Sessions.Delete(r.Context(), sessionID)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, sessionIDKey, sessionID)
		ctx = context.WithValue(ctx, userKey, user)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authorizer reports whether the user holds the permission.
type Authorizer interface {
	Authorize(ctx context.Context, actor *models.UserAccount, perm models.Permission) bool
}

// RequirePermission gates a route group on one permission. It must be
// mounted inside an Authenticated group.
func RequirePermission(a Authorizer, perm models.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.Authorize(r.Context(), User(r.Context()), perm) {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
