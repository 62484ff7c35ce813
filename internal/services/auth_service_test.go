package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/koweyli/vantage-console/internal/models"
	"github.com/koweyli/vantage-console/internal/store"
)

func newTestAuthService(t *testing.T) (*AuthService, *store.AuditStore) {
	t.Helper()
	snap, err := store.NewFileSnapshotter(t.TempDir())
	assert.NoError(t, err)
	users, err := store.NewUserStore(snap)
	assert.NoError(t, err)
	perms, err := store.NewPermissionStore(snap)
	assert.NoError(t, err)
	auditStore, err := store.NewAuditStore(snap)
	assert.NoError(t, err)

	geo := NewGeoService("http://127.0.0.1:1", 100*time.Millisecond)
	audit := NewAuditService(auditStore, geo, t.TempDir())
	auth := NewAuthService(users, perms, audit, nil, "test-secret", time.Hour)
	return auth, auditStore
}

func TestAuthService_LoginSuccess(t *testing.T) {
	auth, auditStore := newTestAuthService(t)

	token, user, err := auth.Login(context.Background(), "admin", "admin123", nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 1, user.ID)

	claims, err := auth.ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, 1, claims.UserID())
	assert.Equal(t, "admin", claims.Username)

	page, _ := auditStore.Query(store.AuditFilter{}, 1, 1)
	assert.Equal(t, "login", page[0].Action)
	assert.Equal(t, models.AuditSuccess, page[0].Status)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	auth, auditStore := newTestAuthService(t)

	_, _, err := auth.Login(context.Background(), "admin", "nope", nil)
	assert.ErrorIs(t, err, ErrBadCredentials)

	page, _ := auditStore.Query(store.AuditFilter{}, 1, 1)
	assert.Equal(t, models.AuditFailed, page[0].Status)
	assert.Equal(t, 1, page[0].UserID, "known account keeps its id in the failure entry")
}

func TestAuthService_LoginUnknownUser(t *testing.T) {
	auth, auditStore := newTestAuthService(t)

	_, _, err := auth.Login(context.Background(), "nobody", "whatever", nil)
	assert.ErrorIs(t, err, ErrBadCredentials)

	page, _ := auditStore.Query(store.AuditFilter{}, 1, 1)
	assert.Equal(t, 0, page[0].UserID)
	assert.Equal(t, "nobody", page[0].Username)
}

func TestAuthService_RegisterAssignsDefaults(t *testing.T) {
	auth, _ := newTestAuthService(t)

	user, err := auth.Register(context.Background(), "newbie", "newbie@example.com", "secret1", "secret1", nil)
	assert.NoError(t, err)
	assert.Equal(t, "newbie", user.Username)

	// The new account can sign in immediately.
	_, _, err = auth.Login(context.Background(), "newbie", "secret1", nil)
	assert.NoError(t, err)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	auth, _ := newTestAuthService(t)

	_, err := auth.Register(context.Background(), "x", "", "secret1", "secret1", nil)
	assert.ErrorIs(t, err, store.ErrInvalid)

	_, err = auth.Register(context.Background(), "x", "x@example.com", "abc", "abc", nil)
	assert.ErrorIs(t, err, store.ErrInvalid)

	_, err = auth.Register(context.Background(), "x", "x@example.com", "secret1", "other12", nil)
	assert.ErrorIs(t, err, store.ErrInvalid)

	_, err = auth.Register(context.Background(), "admin", "fresh@example.com", "secret1", "secret1", nil)
	assert.ErrorIs(t, err, store.ErrUsernameTaken)
}

func TestAuthService_ParseTokenRejectsGarbage(t *testing.T) {
	auth, _ := newTestAuthService(t)

	_, err := auth.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestAuthService_ParseTokenRejectsForeignSignature(t *testing.T) {
	auth, _ := newTestAuthService(t)
	other := NewAuthService(nil, nil, nil, nil, "different-secret", time.Hour)

	token, err := other.issueToken(models.User{ID: 1, Username: "admin"})
	assert.NoError(t, err)

	_, err = auth.ParseToken(token)
	assert.ErrorIs(t, err, ErrBadToken)
}
