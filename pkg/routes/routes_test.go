package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"

	"github.com/emeraldsmp/portal/pkg/auth"
	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/portal"
	"github.com/emeraldsmp/portal/pkg/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *portal.Service) {
	t.Helper()

	st := store.NewMemory()
	svc := portal.New(st, portal.Config{})
	sessions := auth.NewMemoryStore()
	mw := auth.NewMiddleware(sessions, st.Users)

	r := chi.NewRouter()
	r.Mount("/api/auth", AuthRoutes{Service: svc, Sessions: sessions, Middleware: mw}.Routes())
	r.Mount("/api/users", UserRoutes{Service: svc, Middleware: mw}.Routes())
	r.Mount("/api/site", SiteRoutes{Service: svc}.Routes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Post(srv.URL+"/api/auth/register", "application/json",
		strings.NewReader(`{"email":"steve@example.com","password":"hunter22"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", res.StatusCode)
	}

	var sessionCookie *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == auth.SessionCookie {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatal("registration must start a session")
	}
	if !sessionCookie.HttpOnly {
		t.Error("the session cookie is http-only")
	}

	var user models.UserAccount
	if err := json.NewDecoder(res.Body).Decode(&user); err != nil {
		t.Fatal(err)
	}
	if user.Role != models.RoleUser {
		t.Errorf("role = %q, want user", user.Role)
	}

	// the cookie authenticates subsequent requests
	req, _ := http.NewRequest("GET", srv.URL+"/api/users/@me", nil)
	req.AddCookie(sessionCookie)
	res2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res2.Body.Close()
	if res2.StatusCode != http.StatusOK {
		t.Errorf("/@me with cookie = %d, want 200", res2.StatusCode)
	}

	var me models.UserAccount
	json.NewDecoder(res2.Body).Decode(&me)
	if me.ID != user.ID {
		t.Error("/@me returns the session's account")
	}
}

func TestLogoutExpiresCookieAndSession(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Post(srv.URL+"/api/auth/register", "application/json",
		strings.NewReader(`{"email":"steve@example.com","password":"hunter22"}`))
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()

	var sessionCookie *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == auth.SessionCookie {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("registration must start a session")
	}

	req, _ := http.NewRequest("POST", srv.URL+"/api/auth/logout", nil)
	req.AddCookie(sessionCookie)
	res2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res2.Body.Close()

	var expired *http.Cookie
	for _, c := range res2.Cookies() {
		if c.Name == auth.SessionCookie {
			expired = c
		}
	}
	if expired == nil || expired.MaxAge >= 0 {
		t.Fatal("logout must expire the session cookie")
	}
	if expired.Path != "/" {
		t.Errorf("expiring cookie path = %q, want / so it replaces the original", expired.Path)
	}

	req, _ = http.NewRequest("GET", srv.URL+"/api/users/@me", nil)
	req.AddCookie(sessionCookie)
	res3, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res3.Body.Close()
	if res3.StatusCode != http.StatusUnauthorized {
		t.Errorf("/@me after logout = %d, want 401", res3.StatusCode)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Post(srv.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"email":"nobody@example.com","password":"wrong"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.StatusCode)
	}

	var payload models.ErrorPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload.Message == "" {
		t.Error("errors carry a message payload")
	}
}

func TestUsersListRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Get(srv.URL + "/api/users/")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", res.StatusCode)
	}
}

func TestSitePayloadIsPublic(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Get(srv.URL + "/api/site/")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	var info SiteInfoPayload
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if len(info.AppForms) != 3 {
		t.Errorf("seeded forms in the payload, got %d", len(info.AppForms))
	}
	if info.ServerInfo.Gamemode == "" {
		t.Error("server info is populated from defaults")
	}
}

// SiteInfoPayload mirrors the public payload shape for decoding.
type SiteInfoPayload struct {
	AppForms   []models.AppForm  `json:"app_forms"`
	ServerInfo models.ServerInfo `json:"server_info"`
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

func TestSettingsWritesInvalidateSiteCache(t *testing.T) {
	st := store.NewMemory()
	svc := portal.New(st, portal.Config{})
	sessions := auth.NewMemoryStore()
	mw := auth.NewMiddleware(sessions, st.Users)
	inv := &countingInvalidator{}

	r := chi.NewRouter()
	r.Mount("/api/settings", SettingsRoutes{Service: svc, Middleware: mw, Cache: inv}.Routes())
	r.Mount("/api/forms", FormRoutes{Service: svc, Middleware: mw, Cache: inv}.Routes())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	owner := &models.UserAccount{ID: "owner-001", DisplayName: "owner", Role: models.RoleOwner, Status: models.UserActive}
	if err := st.Users.Create(ctx, owner); err != nil {
		t.Fatal(err)
	}
	sID, err := sessions.Create(ctx, auth.Session{UserID: owner.ID})
	if err != nil {
		t.Fatal(err)
	}

	do := func(method, path, body string) int {
		req, _ := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: sID})
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
		return res.StatusCode
	}

	if code := do("PUT", "/api/settings/server-info", `{"gamemode":"survival","version":"1.21"}`); code != http.StatusNoContent {
		t.Fatalf("server-info update = %d, want 204", code)
	}
	if inv.calls != 1 {
		t.Fatalf("settings write must invalidate the site cache, calls = %d", inv.calls)
	}

	if code := do("POST", "/api/forms/", `{"name":"Event Crew"}`); code != http.StatusCreated {
		t.Fatalf("form create = %d, want 201", code)
	}
	if inv.calls != 2 {
		t.Fatalf("form write must invalidate the site cache, calls = %d", inv.calls)
	}

	// a rejected write leaves the cache alone
	if code := do("POST", "/api/forms/", `{"name":"Event Crew"}`); code != http.StatusConflict {
		t.Fatalf("duplicate form create = %d, want 409", code)
	}
	if inv.calls != 2 {
		t.Errorf("failed writes must not invalidate, calls = %d", inv.calls)
	}
}

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{portal.ErrInvalidCredentials, http.StatusUnauthorized},
		{portal.ErrPermissionDenied, http.StatusForbidden},
		{portal.ErrUserNotFound, http.StatusNotFound},
		{portal.ErrEmailExists, http.StatusConflict},
		{portal.ErrPasswordTooShort, http.StatusBadRequest},
		{portal.ErrChatClosed, http.StatusBadRequest},
	}

	for _, c := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, c.err)
		if rec.Code != c.want {
			t.Errorf("writeError(%v) = %d, want %d", c.err, rec.Code, c.want)
		}
	}
}
