package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/koweyli/vantage-console/internal/models"
	"github.com/koweyli/vantage-console/internal/store"
)

func TestAuthHandler_LoginSuccess(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/login", map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["userId"])
	assert.NotEmpty(t, body["token"])

	userInfo := body["userInfo"].(map[string]any)
	assert.Equal(t, "admin", userInfo["username"])
	assert.Contains(t, userInfo["permissions"], "admin")
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/login", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])

	// The failure lands in the audit log.
	page, total := env.audit.Query(store.AuditFilter{Module: "auth"}, 1, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.AuditFailed, page[0].Status)
}

func TestAuthHandler_LoginMissingFields(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/login", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "username and password are required", decodeBody(t, w)["message"])
}

func TestAuthHandler_RegisterThenLogin(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/register", map[string]string{
		"username":        "newbie",
		"email":           "newbie@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	userInfo := body["userInfo"].(map[string]any)
	assert.Equal(t, "newbie", userInfo["username"])
	assert.NotEmpty(t, userInfo["registeredAt"])

	// The new account gets the default route assignment.
	names, has := env.perms.Get("newbie")
	assert.True(t, has)
	assert.Equal(t, []string{"Profile"}, names)

	w = env.request(t, http.MethodPost, "/api/login", map[string]string{
		"username": "newbie",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_RegisterConflict(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/register", map[string]string{
		"username":        "admin",
		"email":           "fresh@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_RegisterPasswordMismatch(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/register", map[string]string{
		"username":        "newbie",
		"email":           "newbie@example.com",
		"password":        "secret1",
		"confirmPassword": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
