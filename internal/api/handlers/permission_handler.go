package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/koweyli/vantage-console/internal/models"
	"github.com/koweyli/vantage-console/internal/permissions"
	"github.com/koweyli/vantage-console/internal/services"
	"github.com/koweyli/vantage-console/internal/store"
)

// PermissionHandler serves the route catalog, per-user route assignments and
// the resolved route tree consumed by the frontend router.
type PermissionHandler struct {
	users *store.UserStore
	perms *store.PermissionStore
	audit *services.AuditService
}

func NewPermissionHandler(users *store.UserStore, perms *store.PermissionStore, audit *services.AuditService) *PermissionHandler {
	return &PermissionHandler{users: users, perms: perms, audit: audit}
}

func (h *PermissionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/permissions", h.Catalog)
	r.GET("/user/:userId/route-permissions", h.GetAssignments)
	r.PUT("/user/:userId/route-permissions", h.SetAssignments)
	r.GET("/user/:userId/routes", h.Routes)
}

func (h *PermissionHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"availableRoutes":    h.perms.Catalog(),
			"defaultPermissions": h.perms.Defaults(),
		},
	})
}

func (h *PermissionHandler) GetAssignments(c *gin.Context) {
	user, ok := h.findUser(c)
	if !ok {
		return
	}
	assigned, has := h.perms.Get(user.Username)
	if !has {
		assigned = h.perms.Defaults()
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"userId":      user.ID,
			"username":    user.Username,
			"permissions": assigned,
			"routes":      h.perms.Describe(assigned),
		},
	})
}

type setAssignmentsRequest struct {
	Permissions []string `json:"permissions"`
}

func (h *PermissionHandler) SetAssignments(c *gin.Context) {
	user, ok := h.findUser(c)
	if !ok {
		return
	}
	var req setAssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Permissions == nil {
		fail(c, http.StatusBadRequest, "permissions array is required")
		return
	}

	old, err := h.perms.Set(user.Username, req.Permissions)
	if err != nil {
		failErr(c, err)
		return
	}

	actorID, actorName := actor(c)
	h.audit.Record(c.Request.Context(), actorID, actorName, "update", "permission",
		fmt.Sprintf("updated route permissions for %q", user.Username), models.AuditSuccess, provenance(c))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "route permissions updated",
		"data": gin.H{
			"userId":         user.ID,
			"username":       user.Username,
			"oldPermissions": old,
			"newPermissions": req.Permissions,
		},
	})
}

// Routes resolves the concrete route tree for a user. Users without an
// explicit assignment inherit the admin or regular profile by capability,
// then fall back to the catalog defaults.
func (h *PermissionHandler) Routes(c *gin.Context) {
	user, ok := h.findUser(c)
	if !ok {
		return
	}

	assigned, has := h.perms.Get(user.Username)
	if !has {
		if user.HasPermission("admin") {
			assigned, has = h.perms.Get("admin")
		} else {
			assigned, has = h.perms.Get("user")
		}
	}
	if !has {
		assigned = h.perms.Defaults()
	}

	routes := permissions.Resolve(assigned, h.perms.Catalog(), user.Permissions)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"userId":   user.ID,
			"username": user.Username,
			"routes":   routes,
		},
	})
}

func (h *PermissionHandler) findUser(c *gin.Context) (models.User, bool) {
	id, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid user id")
		return models.User{}, false
	}
	user, err := h.users.FindByID(id)
	if err != nil {
		failErr(c, err)
		return models.User{}, false
	}
	return user, true
}
