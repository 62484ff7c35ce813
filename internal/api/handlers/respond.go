package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koweyli/vantage-console/internal/api/middleware"
	"github.com/koweyli/vantage-console/internal/services"
	"github.com/koweyli/vantage-console/internal/store"
)

// fail writes the error envelope the frontend expects.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// failErr maps a store/service error onto the HTTP error taxonomy and writes
// it with the error's own message.
func failErr(c *gin.Context, err error) {
	fail(c, errStatus(err), err.Error())
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrUserNotFound), errors.Is(err, store.ErrLogNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrUsernameTaken), errors.Is(err, store.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, store.ErrProtectedUser):
		return http.StatusForbidden
	case errors.Is(err, store.ErrWrongPassword), errors.Is(err, services.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrInvalid), errors.Is(err, store.ErrInvalidEmail):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// provenance captures the caller's network identity for audit entries.
func provenance(c *gin.Context) *services.Provenance {
	return &services.Provenance{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

// actor returns the authenticated caller's identity, or the system identity
// when the auth middleware did not run.
func actor(c *gin.Context) (int, string) {
	id, _ := c.Get(middleware.UserIDKey)
	name, _ := c.Get(middleware.UsernameKey)
	userID, ok := id.(int)
	if !ok {
		return 0, "system"
	}
	username, _ := name.(string)
	return userID, username
}
