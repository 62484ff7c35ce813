package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/koweyli/vantage-console/internal/logger"
	"github.com/koweyli/vantage-console/internal/models"
	"github.com/koweyli/vantage-console/internal/services"
	"github.com/koweyli/vantage-console/internal/store"
)

// maxAvatarBytes caps avatar uploads at 2MB.
const maxAvatarBytes = 2 << 20

// ProfileHandler serves per-user profile reads and updates, password changes
// and avatar management.
type ProfileHandler struct {
	users      *store.UserStore
	audit      *services.AuditService
	uploadsDir string
}

func NewProfileHandler(users *store.UserStore, audit *services.AuditService, uploadsDir string) *ProfileHandler {
	return &ProfileHandler{users: users, audit: audit, uploadsDir: uploadsDir}
}

func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profile/:userId", h.Get)
	r.PUT("/profile/:userId", h.Update)
	r.PUT("/profile/:userId/password", h.ChangePassword)
	r.POST("/profile/:userId/avatar", h.UploadAvatar)
	r.PUT("/profile/:userId/avatar", h.SetAvatarURL)
}

func (h *ProfileHandler) Get(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	user, err := h.users.FindByID(id)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user.View(),
	})
}

type profileUpdateRequest struct {
	Email            *string `json:"email"`
	FullName         *string `json:"fullName"`
	Phone            *string `json:"phone"`
	Bio              *string `json:"bio"`
	TwoFactorEnabled *bool   `json:"twoFactorEnabled"`
}

func (h *ProfileHandler) Update(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.UpdateProfile(id, store.ProfileUpdate{
		Email:            req.Email,
		FullName:         req.FullName,
		Phone:            req.Phone,
		Bio:              req.Bio,
		TwoFactorEnabled: req.TwoFactorEnabled,
	})
	if err != nil {
		failErr(c, err)
		return
	}

	h.audit.Record(c.Request.Context(), user.ID, user.Username, "update", "profile",
		"updated profile information", models.AuditSuccess, provenance(c))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "profile updated",
		"data":    user.View(),
	})
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var req passwordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := store.ValidateRequired(map[string]string{
		"currentPassword": req.CurrentPassword,
		"newPassword":     req.NewPassword,
	}); err != nil {
		failErr(c, err)
		return
	}
	if err := store.ValidatePassword(req.NewPassword, req.NewPassword); err != nil {
		failErr(c, err)
		return
	}

	changed, err := h.users.ChangePassword(id, req.CurrentPassword, req.NewPassword)
	if err != nil {
		failErr(c, err)
		return
	}

	user, _ := h.users.FindByID(id)
	h.audit.Record(c.Request.Context(), id, user.Username, "update", "profile",
		"changed account password", models.AuditSuccess, provenance(c))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "password changed",
		"data": gin.H{
			"lastPasswordChange": changed,
		},
	})
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	user, err := h.users.FindByID(id)
	if err != nil {
		failErr(c, err)
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		fail(c, http.StatusBadRequest, "avatar file is required")
		return
	}
	if file.Size > maxAvatarBytes {
		fail(c, http.StatusBadRequest, "avatar file exceeds the 2MB limit")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		fail(c, http.StatusBadRequest, "avatar must be an image file")
		return
	}

	ext := filepath.Ext(file.Filename)
	name := fmt.Sprintf("avatar_%d_%d%s", id, time.Now().UnixMilli(), ext)
	dir := filepath.Join(h.uploadsDir, "avatars")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.WithError(err).Error("creating avatar directory")
		fail(c, http.StatusInternalServerError, "failed to store avatar")
		return
	}
	if err := c.SaveUploadedFile(file, filepath.Join(dir, name)); err != nil {
		logger.WithError(err).Error("saving avatar upload")
		fail(c, http.StatusInternalServerError, "failed to store avatar")
		return
	}

	url := "/uploads/avatars/" + name
	previous, err := h.users.SetAvatar(id, url)
	if err != nil {
		failErr(c, err)
		return
	}
	h.removePrevious(previous)

	h.audit.Record(c.Request.Context(), id, user.Username, "update", "profile",
		"uploaded a new avatar", models.AuditSuccess, provenance(c))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "avatar uploaded",
		"data": gin.H{
			"avatarUrl": url,
		},
	})
}

type avatarURLRequest struct {
	AvatarURL string `json:"avatarUrl"`
}

func (h *ProfileHandler) SetAvatarURL(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var req avatarURLRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AvatarURL == "" {
		fail(c, http.StatusBadRequest, "avatarUrl is required")
		return
	}

	// Unlike the upload variant, setting a URL only overwrites the stored
	// reference; a previously uploaded local file stays on disk.
	if _, err := h.users.SetAvatar(id, req.AvatarURL); err != nil {
		failErr(c, err)
		return
	}

	user, _ := h.users.FindByID(id)
	h.audit.Record(c.Request.Context(), id, user.Username, "update", "profile",
		"updated avatar URL", models.AuditSuccess, provenance(c))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "avatar updated",
		"data": gin.H{
			"avatarUrl": req.AvatarURL,
		},
	})
}

// removePrevious deletes a superseded locally stored avatar. External URLs
// are left alone.
func (h *ProfileHandler) removePrevious(previous string) {
	if !strings.HasPrefix(previous, "/uploads/") {
		return
	}
	local := filepath.Join(h.uploadsDir, strings.TrimPrefix(previous, "/uploads/"))
	if err := os.Remove(local); err != nil && !os.IsNotExist(err) {
		logger.WithError(err).Warn("removing previous avatar")
	}
}

func userIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}
