package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/auditiq/auditiq-gateway/pkg/configs"
	"github.com/auditiq/auditiq-gateway/pkg/internal/clients/authn"
)

func newAuthEngine(t *testing.T, conf configs.AuthConfig, verifier *authn.Client) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	e := gin.New()
	e.Use(AuthMiddleware(conf, verifier))
	e.GET("/api/v1/datasets", func(c *gin.Context) {
		user := GetAuthUser(c)
		if user == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user in context"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})
	e.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return e
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	conf := configs.AuthConfig{Enabled: true}
	e := newAuthEngine(t, conf, authn.New(&configs.AuthConfig{Enabled: true}, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil)
	e.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareSkipPath(t *testing.T) {
	conf := configs.AuthConfig{Enabled: true, SkipPaths: []string{"/api/v1/health"}}
	e := newAuthEngine(t, conf, authn.New(&configs.AuthConfig{Enabled: true}, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	e.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u_1","email":"ada@example.com"}`))
	}))
	defer srv.Close()

	authCfg := configs.AuthConfig{Enabled: true, BaseURL: srv.URL, VerifyPath: "/auth/v1/user", TimeoutSec: 5}
	e := newAuthEngine(t, authCfg, authn.New(&authCfg, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	e.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareRejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	authCfg := configs.AuthConfig{Enabled: true, BaseURL: srv.URL, VerifyPath: "/auth/v1/user", TimeoutSec: 5}
	e := newAuthEngine(t, authCfg, authn.New(&authCfg, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	e.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareDevQueryFallback(t *testing.T) {
	conf := configs.AuthConfig{Enabled: true, DevAllowQuery: true}
	e := newAuthEngine(t, conf, authn.New(&configs.AuthConfig{Enabled: true}, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets?user=dev@example.com", nil)
	e.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareDisabled(t *testing.T) {
	conf := configs.AuthConfig{Enabled: false}
	e := newAuthEngine(t, conf, authn.New(&conf, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil)
	e.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with dev principal", w.Code)
	}
}
