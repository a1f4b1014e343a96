// Package auth owns session persistence and the request middleware
// that resolves a session cookie into a user account.
package auth

import (
	"bytes"
	"context"
	"encoding/gob"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emeraldsmp/portal/pkg/logger"
)

const SessionCookie = "session_id"
const SessionTTL = time.Hour * 24 * 7

// Session holds only the account id. Role and status are re-read from
// the user store on every request so a demotion or ban applies
// immediately.
type Session struct {
	UserID string
}

// SessionStore is the persistence behind the manager. Get returns
// (nil, nil) for an unknown or expired id.
type SessionStore interface {
	Create(ctx context.Context, s Session) (string, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps gob-encoded sessions in redis with a rolling TTL.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(c *redis.Client) *RedisStore {
	return &RedisStore{Client: c}
}

func (m *RedisStore) Create(ctx context.Context, s Session) (string, error) {
	sessionID := uuid.New().String()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		logger.Error("failed to encode session data", zap.String("session_id", sessionID), zap.Error(err))
		return "", err
	}

	status := m.Client.SetEX(ctx, sessionID, buf.Bytes(), SessionTTL)
	if status.Err() != nil {
		return "", status.Err()
	}
	return sessionID, nil
}

func (m *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	res := m.Client.Get(ctx, id)
	if res.Err() != nil {
		if res.Err() == redis.Nil {
			return nil, nil
		}
		return nil, res.Err()
	}

	b, err := res.Bytes()
	if err != nil {
		return nil, err
	}

	sess := decodeSession(id, b)
	if sess == nil {
		// A corrupt blob is treated as no session at all: drop the key
		// so the client is asked to sign in again.
		if delErr := m.Client.Del(ctx, id).Err(); delErr != nil {
			logger.Error("failed to discard corrupt session", zap.String("session_id", id), zap.Error(delErr))
		}
		return nil, nil
	}
	return sess, nil
}

// decodeSession returns nil when the stored bytes do not decode,
// which the caller treats the same as a missing session.
func decodeSession(id string, b []byte) *Session {
	var sess Session
	if err := gob.NewDecoder(bytes.NewBuffer(b)).Decode(&sess); err != nil {
		logger.Error("failed to decode session, discarding", zap.String("session_id", id), zap.Error(err))
		return nil
	}
	return &sess
}

func (m *RedisStore) Delete(ctx context.Context, id string) error {
	return m.Client.Del(ctx, id).Err()
}

// MemoryStore backs tests and single-node local deployments.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]Session{}}
}

func (m *MemoryStore) Create(_ context.Context, s Session) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.sessions[id] = s
	return id, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
