package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/test89/property_client/internal/api"
	"github.com/test89/property_client/internal/domain/user"
	"github.com/test89/property_client/internal/services"
	"github.com/test89/property_client/pkg/logger"
	"github.com/test89/property_client/pkg/testutil"
)

func newTestManager(t *testing.T, backend *testutil.Backend, store TokenStore) *Manager {
	t.Helper()
	mgr, err := NewManager(store, logger.Discard())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	client, err := api.New(api.Config{BaseURL: backend.URL(), Tokens: mgr})
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	client.SetUnauthorizedHook(mgr.Invalidate)
	mgr.AttachAuth(services.NewAuth(client))
	return mgr
}

func credentials(email, password string) user.Credentials {
	return user.Credentials{Email: email, Password: password}
}

func TestLoginEstablishesSession(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()
	backend.SeedUser("guest@example.com", "hunter22")

	store := &MemoryStore{}
	mgr := newTestManager(t, backend, store)

	u, err := mgr.Login(context.Background(), credentials("guest@example.com", "hunter22"))
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Email != "guest@example.com" {
		t.Fatalf("Email=%q", u.Email)
	}
	if !mgr.Authenticated() {
		t.Fatal("Authenticated=false after login")
	}
	if tok, _ := store.Load(); tok == "" {
		t.Fatal("token not persisted")
	}
	if mgr.Token() == "" {
		t.Fatal("Token empty after login")
	}
}

func TestLoginRejectedLeavesNoSession(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()
	backend.SeedUser("guest@example.com", "hunter22")

	mgr := newTestManager(t, backend, &MemoryStore{})

	if _, err := mgr.Login(context.Background(), credentials("guest@example.com", "wrong")); err == nil {
		t.Fatal("expected login failure")
	}
	if mgr.Authenticated() {
		t.Fatal("Authenticated=true after rejected login")
	}
}

func TestLogoutClearsStoredToken(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()
	backend.SeedUser("guest@example.com", "hunter22")

	store := &MemoryStore{}
	mgr := newTestManager(t, backend, store)
	if _, err := mgr.Login(context.Background(), credentials("guest@example.com", "hunter22")); err != nil {
		t.Fatalf("Login: %v", err)
	}

	mgr.Logout()
	if mgr.Authenticated() {
		t.Fatal("Authenticated=true after logout")
	}
	if tok, _ := store.Load(); tok != "" {
		t.Fatalf("stored token %q want empty", tok)
	}
}

func TestRehydrateRestoresSession(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()
	seeded := backend.SeedUser("guest@example.com", "hunter22")
	token := backend.SeedToken(seeded.ID)

	store := &MemoryStore{}
	if err := store.Save(token); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mgr := newTestManager(t, backend, store)

	u, err := mgr.Rehydrate(context.Background())
	if err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}
	if u == nil || u.Email != "guest@example.com" {
		t.Fatalf("got %+v", u)
	}
	if !mgr.Authenticated() {
		t.Fatal("Authenticated=false after rehydrate")
	}
}

func TestRehydrateWithoutTokenIsNoop(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()

	mgr := newTestManager(t, backend, &MemoryStore{})
	u, err := mgr.Rehydrate(context.Background())
	if err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}
	if u != nil {
		t.Fatalf("got user %+v want nil", u)
	}
}

func TestRehydrateExpiredTokenClearsLocally(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "guest@example.com",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	backend := testutil.NewBackend()
	defer backend.Close()

	store := &MemoryStore{}
	if err := store.Save(signed); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mgr := newTestManager(t, backend, store)

	var expiredCalls atomic.Int32
	mgr.SetExpiredHandler(func() { expiredCalls.Add(1) })

	u, err := mgr.Rehydrate(context.Background())
	if err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}
	if u != nil {
		t.Fatalf("got user %+v want nil", u)
	}
	if tok, _ := store.Load(); tok != "" {
		t.Fatal("expired token still stored")
	}
	if expiredCalls.Load() != 1 {
		t.Fatalf("expired handler fired %d times want 1", expiredCalls.Load())
	}
}

func TestRehydrateRevokedTokenTearsDown(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()
	seeded := backend.SeedUser("guest@example.com", "hunter22")
	token := backend.SeedToken(seeded.ID)
	backend.RevokeTokens()

	store := &MemoryStore{}
	if err := store.Save(token); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mgr := newTestManager(t, backend, store)

	if _, err := mgr.Rehydrate(context.Background()); err == nil {
		t.Fatal("expected rehydrate failure")
	}
	if mgr.Authenticated() {
		t.Fatal("Authenticated=true after 401")
	}
	if tok, _ := store.Load(); tok != "" {
		t.Fatal("stored token survived 401")
	}
}

func TestConcurrentInvalidateFiresOnce(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()
	backend.SeedUser("guest@example.com", "hunter22")

	mgr := newTestManager(t, backend, &MemoryStore{})
	if _, err := mgr.Login(context.Background(), credentials("guest@example.com", "hunter22")); err != nil {
		t.Fatalf("Login: %v", err)
	}

	var calls atomic.Int32
	mgr.SetExpiredHandler(func() { calls.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mgr.Invalidate()
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expired handler fired %d times want 1", calls.Load())
	}
	if mgr.Authenticated() {
		t.Fatal("Authenticated=true after invalidate")
	}
}
