package handle_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/auditiq/auditiq-gateway/pkg/configs"
	"github.com/auditiq/auditiq-gateway/pkg/internal/router"
	"github.com/auditiq/auditiq-gateway/pkg/middleware"
)

// newProxyEngine 起一个记录请求的假计算后端，并把 /api/v1/ds/* 路由
// 指向它；认证关闭，走开发态身份.
func newProxyEngine(t *testing.T, record *http.Request) *gin.Engine {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*record = *r

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"columns":["age","income"]}`))
	}))
	t.Cleanup(backend.Close)

	configs.GetConfig().Compute.BaseURL = backend.URL

	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(middleware.AuthMiddleware(configs.AuthConfig{Enabled: false}, nil))

	group := e.Group("/api/v1")
	router.RegisterProxyRoutes(group)

	return e
}

// 网关收到 /api/v1/ds/columns，后端必须看到 /api/ds/columns，
// 查询串原样带过去.
func TestProxyForwardsFullBackendPath(t *testing.T) {
	var seen http.Request

	e := newProxyEngine(t, &seen)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ds/columns?sample=5", nil)
	e.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("gateway status = %d, want 200", w.Code)
	}

	if seen.URL.Path != "/api/ds/columns" {
		t.Errorf("backend path = %q, want /api/ds/columns", seen.URL.Path)
	}

	if seen.URL.Query().Get("sample") != "5" {
		t.Errorf("backend query = %q, query dropped", seen.URL.RawQuery)
	}

	if !strings.Contains(w.Body.String(), "columns") {
		t.Errorf("body not passed through: %s", w.Body.String())
	}
}
