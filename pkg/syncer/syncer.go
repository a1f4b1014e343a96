// Package syncer pushes and pulls the portal's documents to a
// Supabase-backed table so two deployments can be reconciled by hand.
// Sync is always operator-initiated; nothing here runs on a timer.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/emeraldsmp/portal/pkg/logger"
	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/store"
)

var (
	ErrSyncDisabled = errors.New("cloud sync is not configured")
	ErrRemoteFailed = errors.New("remote backend request failed")
)

const syncTable = "portal_documents"

const (
	docUsers        = "users"
	docApplications = "applications"
	docChats        = "chats"
	docSettings     = "settings"
)

// Syncer serializes the whole store into keyed JSON documents and
// exchanges them with the remote table.
type Syncer struct {
	store  *store.Store
	client *http.Client
}

func New(st *store.Store) *Syncer {
	return &Syncer{
		store:  st,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type row struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Push uploads every document, overwriting the remote copies.
func (s *Syncer) Push(ctx context.Context, cfg models.SupabaseConfig) error {
	if !cfg.IsEnabled || cfg.URL == "" || cfg.Key == "" {
		return ErrSyncDisabled
	}

	rows, err := s.collect(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(rows)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/rest/v1/%s", cfg.URL, syncTable), bytes.NewReader(body))
	if err != nil {
		return err
	}
	s.setHeaders(req, cfg)
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		logger.Error("sync push rejected", zap.Int("status", res.StatusCode), zap.ByteString("body", b))
		return ErrRemoteFailed
	}

	logger.Info("pushed documents to remote backend", zap.Int("documents", len(rows)))
	return nil
}

// Pull downloads every document and overwrites local state. Last write
// wins; there is no merge.
func (s *Syncer) Pull(ctx context.Context, cfg models.SupabaseConfig) error {
	if !cfg.IsEnabled || cfg.URL == "" || cfg.Key == "" {
		return ErrSyncDisabled
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/rest/v1/%s?select=key,value", cfg.URL, syncTable), nil)
	if err != nil {
		return err
	}
	s.setHeaders(req, cfg)

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		logger.Error("sync pull rejected", zap.Int("status", res.StatusCode), zap.ByteString("body", b))
		return ErrRemoteFailed
	}

	var rows []row
	if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
		return err
	}

	for _, r := range rows {
		if err := s.apply(ctx, r); err != nil {
			return err
		}
	}

	logger.Info("pulled documents from remote backend", zap.Int("documents", len(rows)))
	return nil
}

func (s *Syncer) setHeaders(req *http.Request, cfg models.SupabaseConfig) {
	req.Header.Set("apikey", cfg.Key)
	req.Header.Set("Authorization", "Bearer "+cfg.Key)
	req.Header.Set("Content-Type", "application/json")
}

func (s *Syncer) collect(ctx context.Context) ([]row, error) {
	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	apps, err := s.store.Applications.List(ctx)
	if err != nil {
		return nil, err
	}

	chats := []models.ApplicationChat{}
	for _, a := range apps {
		c, err := s.store.Chats.Get(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		if c != nil {
			chats = append(chats, *c)
		}
	}

	settings, err := s.store.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]row, 0, 4)
	for _, doc := range []struct {
		key string
		val any
	}{
		{docUsers, users},
		{docApplications, apps},
		{docChats, chats},
		{docSettings, settings},
	} {
		b, err := json.Marshal(doc.val)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row{Key: doc.key, Value: string(b)})
	}
	return rows, nil
}

func (s *Syncer) apply(ctx context.Context, r row) error {
	switch r.Key {
	case docUsers:
		var users []models.UserAccount
		if err := json.Unmarshal([]byte(r.Value), &users); err != nil {
			return err
		}
		for i := range users {
			u := users[i]
			if _, err := s.store.Users.Get(ctx, u.ID); err == nil {
				if err := s.store.Users.Update(ctx, &u); err != nil {
					return err
				}
			} else if err := s.store.Users.Create(ctx, &u); err != nil {
				return err
			}
		}
	case docApplications:
		var apps []models.ApplicationEntry
		if err := json.Unmarshal([]byte(r.Value), &apps); err != nil {
			return err
		}
		for i := range apps {
			a := apps[i]
			if _, err := s.store.Applications.Get(ctx, a.ID); err == nil {
				if err := s.store.Applications.Update(ctx, &a); err != nil {
					return err
				}
			} else if err := s.store.Applications.Create(ctx, &a); err != nil {
				return err
			}
		}
	case docChats:
		var chats []models.ApplicationChat
		if err := json.Unmarshal([]byte(r.Value), &chats); err != nil {
			return err
		}
		for i := range chats {
			c := chats[i]
			if err := s.store.Chats.Save(ctx, &c); err != nil {
				return err
			}
		}
	case docSettings:
		var settings models.SiteSettings
		if err := json.Unmarshal([]byte(r.Value), &settings); err != nil {
			return err
		}
		if err := s.store.Settings.Save(ctx, &settings); err != nil {
			return err
		}
	}
	return nil
}
