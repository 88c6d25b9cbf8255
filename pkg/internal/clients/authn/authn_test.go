package authn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/auditiq/auditiq-gateway/pkg/configs"
	"github.com/auditiq/auditiq-gateway/pkg/internal/storage/kv"
)

func newMemoryStore(t *testing.T) kv.KVStore {
	t.Helper()

	store, err := kv.NewMemoryKV(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewMemoryKV: %v", err)
	}

	return store
}

func testConfig(baseURL string) *configs.AuthConfig {
	return &configs.AuthConfig{
		Enabled:     true,
		BaseURL:     baseURL,
		APIKey:      "anon-key",
		VerifyPath:  "/auth/v1/user",
		TimeoutSec:  5,
		CacheTTLSec: 60,
	}
}

func TestVerifyOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer good-token" {
			t.Errorf("authorization = %q", got)
		}

		if got := r.Header.Get("apikey"); got != "anon-key" {
			t.Errorf("apikey = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u_1","email":"ada@example.com","user_metadata":{"full_name":"Ada Lovelace"}}`))
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL), nil)

	user, err := client.Verify(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if user.ID != "u_1" || user.Email != "ada@example.com" || user.FullName != "Ada Lovelace" {
		t.Errorf("user = %+v", user)
	}
}

func TestVerifyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL), nil)

	if _, err := client.Verify(context.Background(), "expired"); err != ErrUnauthorized {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestVerifyEmptyToken(t *testing.T) {
	client := New(testConfig("http://127.0.0.1:1"), nil)

	if _, err := client.Verify(context.Background(), ""); err != ErrUnauthorized {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

// 命中缓存时不应再访问身份服务.
func TestVerifyCached(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u_2","email":"bob@example.com","user_metadata":{}}`))
	}))
	defer srv.Close()

	store := newMemoryStore(t)

	client := New(testConfig(srv.URL), store)

	ctx := context.Background()

	for range 3 {
		user, err := client.Verify(ctx, "cached-token")
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}

		if user.ID != "u_2" {
			t.Errorf("user = %+v", user)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
}
