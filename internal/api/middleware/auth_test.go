package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/koweyli/vantage-console/internal/services"
	"github.com/koweyli/vantage-console/internal/store"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *services.AuthService) {
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
	audit := services.NewAuditService(auditStore, geo, t.TempDir())
	auth := services.NewAuthService(users, perms, audit, nil, "test-secret", time.Hour)

	router := gin.New()
	router.Use(Auth(auth))
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":   c.GetInt(UserIDKey),
			"username": c.GetString(UsernameKey),
		})
	})
	return router, auth
}

func TestAuth_MissingToken(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "authentication required")
}

func TestAuth_GarbageToken(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid or expired token")
}

func TestAuth_BearerHeader(t *testing.T) {
	router, auth := newAuthTestRouter(t)

	token, _, err := auth.Login(context.Background(), "admin", "admin123", nil)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":1`)
	assert.Contains(t, w.Body.String(), `"username":"admin"`)
}

func TestAuth_CookieFallback(t *testing.T) {
	router, auth := newAuthTestRouter(t)

	token, _, err := auth.Login(context.Background(), "admin", "admin123", nil)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
