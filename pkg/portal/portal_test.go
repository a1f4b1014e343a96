package portal

import (
	"context"
	"testing"
	"time"

	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/store"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := New(store.NewMemory(), Config{})
	svc.now = func() time.Time { return testTime }
	return svc
}

// seedUser inserts an account directly so tests can act as any role.
func seedUser(t *testing.T, svc *Service, id, role string) *models.UserAccount {
	t.Helper()
	u := &models.UserAccount{
		ID:          id,
		DisplayName: id,
		Email:       id + "@test.local",
		AuthMethod:  models.AuthEmail,
		Role:        role,
		Status:      models.UserActive,
		CreatedAt:   testTime,
	}
	if err := svc.store.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("seeding user %s: %v", id, err)
	}
	return u
}
