package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/koweyli/vantage-console/internal/services"
	"github.com/koweyli/vantage-console/internal/store"
)

// testEnv wires real stores backed by a temp directory behind a router with
// every handler registered and no auth middleware, so tests exercise the
// handler logic directly.
type testEnv struct {
	router  *gin.Engine
	users   *store.UserStore
	perms   *store.PermissionStore
	audit   *store.AuditStore
	auth    *services.AuthService
	uploads string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	snap, err := store.NewFileSnapshotter(t.TempDir())
	assert.NoError(t, err)
	users, err := store.NewUserStore(snap)
	assert.NoError(t, err)
	perms, err := store.NewPermissionStore(snap)
	assert.NoError(t, err)
	auditStore, err := store.NewAuditStore(snap)
	assert.NoError(t, err)

	geo := services.NewGeoService("http://127.0.0.1:1", 100*time.Millisecond)
	auditService := services.NewAuditService(auditStore, geo, t.TempDir())
	alertService := services.NewAlertService(nil)
	authService := services.NewAuthService(users, perms, auditService, alertService, "test-secret", time.Hour)
	dataCenter := services.NewDataCenterService()

	uploadsDir := t.TempDir()

	router := gin.New()
	api := router.Group("/api")

	authHandler := NewAuthHandler(authService)
	api.POST("/login", authHandler.Login)
	api.POST("/register", authHandler.Register)
	NewHealthHandler().RegisterRoutes(api)
	NewUserHandler(users, perms, auditService, alertService).RegisterRoutes(api)
	NewPermissionHandler(users, perms, auditService).RegisterRoutes(api)
	NewProfileHandler(users, auditService, uploadsDir).RegisterRoutes(api)
	NewAuditHandler(auditService).RegisterRoutes(api)
	NewDataCenterHandler(dataCenter).RegisterRoutes(api)

	return &testEnv{router: router, users: users, perms: perms, audit: auditStore, auth: authService, uploads: uploadsDir}
}

func (e *testEnv) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthHandler(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "OK", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}
