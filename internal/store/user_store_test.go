package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/koweyli/vantage-console/internal/models"
)

func newTestUserStore(t *testing.T) *UserStore {
	t.Helper()
	snap, err := NewFileSnapshotter(t.TempDir())
	assert.NoError(t, err)
	s, err := NewUserStore(snap)
	assert.NoError(t, err)
	return s
}

func TestUserStore_SeedsDefaults(t *testing.T) {
	s := newTestUserStore(t)

	assert.Equal(t, 3, s.Count())

	admin, err := s.FindByUsername("admin")
	assert.NoError(t, err)
	assert.Equal(t, 1, admin.ID)
	assert.Equal(t, "admin123", admin.Password)
	assert.True(t, admin.HasPermission("admin"))

	guest, err := s.FindByUsername("guest")
	assert.NoError(t, err)
	assert.True(t, guest.HasPermission("admin"))
	assert.True(t, guest.Profile.TwoFactorEnabled)
}

func TestUserStore_CreateAssignsNextID(t *testing.T) {
	s := newTestUserStore(t)

	u, err := s.Create(CreateUser{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	assert.NoError(t, err)
	assert.Equal(t, 4, u.ID)
	assert.Equal(t, models.StatusActive, u.Status)
	assert.NotNil(t, u.Permissions)
	assert.Empty(t, u.Permissions)
	assert.NotEmpty(t, u.RegisteredAt)
}

func TestUserStore_CreateConflicts(t *testing.T) {
	s := newTestUserStore(t)

	_, err := s.Create(CreateUser{Username: "admin", Email: "new@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = s.Create(CreateUser{Username: "fresh", Email: "admin@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = s.Create(CreateUser{Username: "fresh", Email: "not-an-email", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestUserStore_UpdateRenamesMapKey(t *testing.T) {
	s := newTestUserStore(t)

	name := "renamed"
	u, err := s.Update(2, UserUpdate{Username: &name})
	assert.NoError(t, err)
	assert.Equal(t, "renamed", u.Username)

	_, err = s.FindByUsername("user")
	assert.ErrorIs(t, err, ErrUserNotFound)

	found, err := s.FindByUsername("renamed")
	assert.NoError(t, err)
	assert.Equal(t, 2, found.ID)
}

func TestUserStore_UpdateRejectsTakenUsername(t *testing.T) {
	s := newTestUserStore(t)

	name := "admin"
	_, err := s.Update(2, UserUpdate{Username: &name})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserStore_DeleteProtectsBootstrapAdmin(t *testing.T) {
	s := newTestUserStore(t)

	_, _, err := s.Delete(BootstrapAdminID)
	assert.ErrorIs(t, err, ErrProtectedUser)
	assert.Equal(t, 3, s.Count())
}

func TestUserStore_DeleteReturnsRemainingCount(t *testing.T) {
	s := newTestUserStore(t)

	deleted, remaining, err := s.Delete(3)
	assert.NoError(t, err)
	assert.Equal(t, "guest", deleted.Username)
	assert.Equal(t, 2, remaining)

	_, _, err = s.Delete(3)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserStore_ChangePassword(t *testing.T) {
	s := newTestUserStore(t)

	_, err := s.ChangePassword(2, "wrong", "newpass1")
	assert.ErrorIs(t, err, ErrWrongPassword)

	stamp, err := s.ChangePassword(2, "user123", "newpass1")
	assert.NoError(t, err)
	assert.NotEmpty(t, stamp)

	u, err := s.FindByID(2)
	assert.NoError(t, err)
	assert.Equal(t, "newpass1", u.Password)
	assert.Equal(t, stamp, u.Profile.LastPasswordChange)
}

func TestUserStore_SetAvatarReturnsPrevious(t *testing.T) {
	s := newTestUserStore(t)

	prev, err := s.SetAvatar(2, "/uploads/avatars/a.png")
	assert.NoError(t, err)
	assert.Empty(t, prev)

	prev, err = s.SetAvatar(2, "/uploads/avatars/b.png")
	assert.NoError(t, err)
	assert.Equal(t, "/uploads/avatars/a.png", prev)
}

func TestUserStore_ListOmitsPasswords(t *testing.T) {
	s := newTestUserStore(t)

	list := s.List()
	assert.Len(t, list, 3)
	assert.Equal(t, 1, list[0].ID)
	assert.Equal(t, 2, list[1].ID)
	assert.Equal(t, 3, list[2].ID)
}

func TestUserStore_PersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	snap, err := NewFileSnapshotter(dir)
	assert.NoError(t, err)

	s, err := NewUserStore(snap)
	assert.NoError(t, err)
	created, err := s.Create(CreateUser{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	assert.NoError(t, err)

	reloaded, err := NewUserStore(snap)
	assert.NoError(t, err)
	assert.Equal(t, 4, reloaded.Count())

	again, err := reloaded.Create(CreateUser{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	assert.NoError(t, err)
	assert.Equal(t, created.ID+1, again.ID, "id counter is recomputed from loaded records")
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("secret1", "secret1"))
	assert.ErrorIs(t, ValidatePassword("abc", "abc"), ErrInvalid)
	assert.ErrorIs(t, ValidatePassword("secret1", "other12"), ErrInvalid)
}

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired(map[string]string{"a": "x"}))

	err := ValidateRequired(map[string]string{"username": "", "email": " "})
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "email, username")
}
