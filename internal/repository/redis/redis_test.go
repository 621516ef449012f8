package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"agroMarket/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRepo(t *testing.T) (*SessionRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewSessionRepository(client, time.Hour), mr
}

func TestDeleteUserSessionsRevokesEveryLogin(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	for _, s := range []*domain.Session{
		{ID: "phone", UserID: 4, Role: domain.RoleFarmer},
		{ID: "laptop", UserID: 4, Role: domain.RoleFarmer},
		{ID: "other", UserID: 5, Role: domain.RoleCustomer},
	} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create %s: %v", s.ID, err)
		}
	}

	if err := repo.DeleteUserSessions(ctx, 4); err != nil {
		t.Fatalf("DeleteUserSessions: %v", err)
	}

	for _, id := range []string{"phone", "laptop"} {
		if _, err := repo.Get(ctx, id); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("session %s survived: %v", id, err)
		}
	}
	if _, err := repo.Get(ctx, "other"); err != nil {
		t.Fatalf("unrelated session removed: %v", err)
	}
	if mr.Exists(userSessionsKey(4)) {
		t.Fatal("session index left behind")
	}
}

func TestSaveKeepsRemainingTTL(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	s := &domain.Session{ID: "abc", UserID: 4, Role: domain.RoleCustomer}
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	mr.FastForward(40 * time.Minute)

	s.Cart = domain.Cart{Lines: []domain.CartLine{{ProductID: 7, Quantity: 2}}}
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ttl := mr.TTL(sessionKey("abc")); ttl > 20*time.Minute {
		t.Fatalf("save extended the session to %s", ttl)
	}

	got, err := repo.Get(ctx, "abc")
	if err != nil || got.Cart.Quantity(7) != 2 {
		t.Fatalf("unexpected session %+v err=%v", got, err)
	}

	mr.FastForward(time.Hour)
	if err := repo.Save(ctx, s); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after expiry, got %v", err)
	}
}

func TestCheckoutTokenClaimedOnce(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.ClaimCheckoutToken(ctx, "tok", time.Hour)
	if err != nil || !first {
		t.Fatalf("first claim: %v %v", first, err)
	}
	again, err := repo.ClaimCheckoutToken(ctx, "tok", time.Hour)
	if err != nil || again {
		t.Fatalf("replayed claim accepted: %v %v", again, err)
	}

	if err := repo.ReleaseCheckoutToken(ctx, "tok"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := repo.ClaimCheckoutToken(ctx, "tok", time.Hour); !ok {
		t.Fatal("released token could not be claimed")
	}
}
