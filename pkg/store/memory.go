package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/emeraldsmp/portal/pkg/models"
)

// NewMemory returns a Store backed entirely by process memory. Tests use
// it in place of the database-backed store.
func NewMemory() *Store {
	return &Store{
		Users:        &memUserRepo{byID: make(map[string]models.UserAccount)},
		Applications: &memApplicationRepo{},
		Chats:        &memChatRepo{byApp: make(map[string]models.ApplicationChat)},
		Settings:     &memSettingsRepo{},
	}
}

type memUserRepo struct {
	mu    sync.Mutex
	order []string
	byID  map[string]models.UserAccount
}

func (r *memUserRepo) List(ctx context.Context) ([]models.UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.UserAccount, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *memUserRepo) Get(ctx context.Context, id string) (*models.UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := u
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (r *memUserRepo) find(match func(models.UserAccount) bool) (*models.UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if u := r.byID[id]; match(u) {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.UserAccount, error) {
	return r.find(func(u models.UserAccount) bool { return email != "" && u.Email == email })
}

func (r *memUserRepo) GetByDiscordID(ctx context.Context, discordID string) (*models.UserAccount, error) {
	return r.find(func(u models.UserAccount) bool { return discordID != "" && u.DiscordID == discordID })
}

func (r *memUserRepo) GetByGoogleID(ctx context.Context, googleID string) (*models.UserAccount, error) {
	return r.find(func(u models.UserAccount) bool { return googleID != "" && u.GoogleID == googleID })
}

func (r *memUserRepo) Create(ctx context.Context, u *models.UserAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[u.ID]; !exists {
		r.order = append(r.order, u.ID)
	}
	r.byID[u.ID] = *u
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, u *models.UserAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; !ok {
		return ErrNotFound
	}
	r.byID[u.ID] = *u
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type memApplicationRepo struct {
	mu      sync.Mutex
	entries []models.ApplicationEntry
}

func (r *memApplicationRepo) List(ctx context.Context) ([]models.ApplicationEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ApplicationEntry(nil), r.entries...), nil
}

func (r *memApplicationRepo) ListByUser(ctx context.Context, userID string) ([]models.ApplicationEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ApplicationEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memApplicationRepo) Get(ctx context.Context, id string) (*models.ApplicationEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			cp := e
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memApplicationRepo) Create(ctx context.Context, a *models.ApplicationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// newest first, matching List ordering
	r.entries = append([]models.ApplicationEntry{*a}, r.entries...)
	return nil
}

func (r *memApplicationRepo) Update(ctx context.Context, a *models.ApplicationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID == a.ID {
			r.entries[i] = *a
			return nil
		}
	}
	return ErrNotFound
}

func (r *memApplicationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type memChatRepo struct {
	mu    sync.Mutex
	byApp map[string]models.ApplicationChat
}

func (r *memChatRepo) Get(ctx context.Context, appID string) (*models.ApplicationChat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byApp[appID]; ok {
		cp := c
		cp.Messages = append([]models.ChatMessage(nil), c.Messages...)
		return &cp, nil
	}
	return nil, nil
}

func (r *memChatRepo) Save(ctx context.Context, c *models.ApplicationChat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	cp.Messages = append([]models.ChatMessage(nil), c.Messages...)
	r.byApp[c.AppID] = cp
	return nil
}

func (r *memChatRepo) Delete(ctx context.Context, appID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byApp, appID)
	return nil
}

type memSettingsRepo struct {
	mu  sync.Mutex
	doc []byte
}

func (r *memSettingsRepo) Get(ctx context.Context) (*models.SiteSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var s models.SiteSettings
	if r.doc != nil {
		if err := json.Unmarshal(r.doc, &s); err != nil {
			s = models.SiteSettings{}
		}
	}
	return ApplyDefaults(&s, time.Now()), nil
}

func (r *memSettingsRepo) Save(ctx context.Context, s *models.SiteSettings) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc = b
	return nil
}
