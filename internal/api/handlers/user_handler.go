package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/koweyli/vantage-console/internal/models"
	"github.com/koweyli/vantage-console/internal/services"
	"github.com/koweyli/vantage-console/internal/store"
)

// UserHandler exposes admin user management. Every mutation cascades into the
// route-permission assignment and leaves an audit trail.
type UserHandler struct {
	users  *store.UserStore
	perms  *store.PermissionStore
	audit  *services.AuditService
	alerts *services.AlertService
}

func NewUserHandler(users *store.UserStore, perms *store.PermissionStore, audit *services.AuditService, alerts *services.AlertService) *UserHandler {
	return &UserHandler{users: users, perms: perms, audit: audit, alerts: alerts}
}

func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/users", h.List)
	r.POST("/users", h.Create)
	r.PUT("/users/:userId", h.Update)
	r.DELETE("/users/:userId", h.Delete)
}

func (h *UserHandler) List(c *gin.Context) {
	users := h.users.List()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
		"total":   len(users),
		"message": "user list retrieved",
	})
}

type createUserRequest struct {
	Username         string   `json:"username"`
	Email            string   `json:"email"`
	Password         string   `json:"password"`
	Permissions      []string `json:"permissions"`
	Status           string   `json:"status"`
	RoutePermissions []string `json:"routePermissions"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := store.ValidateRequired(map[string]string{
		"username": req.Username,
		"email":    req.Email,
		"password": req.Password,
	}); err != nil {
		failErr(c, err)
		return
	}

	user, err := h.users.Create(store.CreateUser{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Permissions: req.Permissions,
		Status:      req.Status,
	})
	if err != nil {
		failErr(c, err)
		return
	}

	if len(req.RoutePermissions) > 0 {
		if _, err := h.perms.Set(user.Username, req.RoutePermissions); err != nil {
			// The account exists; report the bad selection and fall back
			// to the defaults so the user is not left without routes.
			h.perms.AssignDefaults(user.Username)
			failErr(c, err)
			return
		}
	} else {
		h.perms.AssignDefaults(user.Username)
	}

	actorID, actorName := actor(c)
	h.audit.Record(c.Request.Context(), actorID, actorName, "create", "user",
		fmt.Sprintf("created user %q", user.Username), models.AuditSuccess, provenance(c))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "user created",
		"data":    user.Public(),
	})
}

type updateUserRequest struct {
	Username    *string   `json:"username"`
	Email       *string   `json:"email"`
	Permissions *[]string `json:"permissions"`
	Status      *string   `json:"status"`
}

func (h *UserHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid user id")
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	before, err := h.users.FindByID(id)
	if err != nil {
		failErr(c, err)
		return
	}

	user, err := h.users.Update(id, store.UserUpdate{
		Username:    req.Username,
		Email:       req.Email,
		Permissions: req.Permissions,
		Status:      req.Status,
	})
	if err != nil {
		failErr(c, err)
		return
	}

	if user.Username != before.Username {
		h.perms.Rename(before.Username, user.Username)
	}

	actorID, actorName := actor(c)
	h.audit.Record(c.Request.Context(), actorID, actorName, "update", "user",
		fmt.Sprintf("updated user %q", user.Username), models.AuditSuccess, provenance(c))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "user updated",
		"data":    user.Public(),
	})
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid user id")
		return
	}

	deleted, remaining, err := h.users.Delete(id)
	if err != nil {
		failErr(c, err)
		return
	}
	h.perms.Remove(deleted.Username)

	actorID, actorName := actor(c)
	h.audit.Record(c.Request.Context(), actorID, actorName, "delete", "user",
		fmt.Sprintf("deleted user %q", deleted.Username), models.AuditSuccess, provenance(c))
	h.alerts.Notify(fmt.Sprintf("User %q (id %d) was deleted by %s", deleted.Username, deleted.ID, actorName))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "user deleted",
		"deletedUser": gin.H{
			"id":       deleted.ID,
			"username": deleted.Username,
			"email":    deleted.Email,
		},
		"remainingCount": remaining,
	})
}
