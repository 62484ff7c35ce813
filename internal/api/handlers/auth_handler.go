package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koweyli/vantage-console/internal/services"
)

// AuthHandler exposes credential login and self-service registration.
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "username and password are required")
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password, provenance(c))
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			fail(c, http.StatusUnauthorized, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"userId":  user.ID,
		"token":   token,
		"userInfo": gin.H{
			"id":          user.ID,
			"username":    user.Username,
			"permissions": user.Public().Permissions,
		},
	})
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.ConfirmPassword, provenance(c))
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "registration successful, sign in with the new account",
		"userInfo": gin.H{
			"id":           user.ID,
			"username":     user.Username,
			"email":        user.Email,
			"registeredAt": user.RegisteredAt,
		},
	})
}
