package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/koweyli/vantage-console/internal/models"
	"github.com/koweyli/vantage-console/internal/services"
	"github.com/koweyli/vantage-console/internal/store"
)

// AuditHandler exposes the audit log query, stats, deletion and export
// endpoints.
type AuditHandler struct {
	audit *services.AuditService
}

func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func (h *AuditHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit-logs", h.List)
	r.POST("/audit-logs", h.Create)
	r.GET("/audit-logs/stats", h.Stats)
	r.GET("/audit-logs/stats/:userId", h.StatsForUser)
	r.DELETE("/audit-logs/:logId", h.Delete)
	r.DELETE("/audit-logs", h.DeleteMany)
	r.POST("/audit-logs/export", h.Export)
}

func (h *AuditHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter, ok := auditFilterFromQuery(c)
	if !ok {
		return
	}

	entries, total := h.audit.Query(filter, page, limit)
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"logs":        entries,
			"total":       total,
			"currentPage": page,
			"totalPages":  totalPages,
		},
	})
}

type createAuditRequest struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
	Action   string `json:"action"`
	Module   string `json:"module"`
	Details  string `json:"details"`
	Status   string `json:"status"`
}

func (h *AuditHandler) Create(c *gin.Context) {
	var req createAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Action == "" || req.Module == "" || req.Details == "" {
		fail(c, http.StatusBadRequest, "action, module and details are required")
		return
	}
	if req.UserID == 0 {
		req.UserID = 1
	}
	if req.Username == "" {
		req.Username = "system"
	}
	if req.Status == "" {
		req.Status = models.AuditSuccess
	}

	entry := h.audit.Record(c.Request.Context(), req.UserID, req.Username,
		req.Action, req.Module, req.Details, req.Status, provenance(c))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "audit log recorded",
		"data":    entry,
	})
}

func (h *AuditHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.audit.Stats(nil),
	})
}

func (h *AuditHandler) StatsForUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.audit.Stats(&id),
	})
}

func (h *AuditHandler) Delete(c *gin.Context) {
	entry, err := h.audit.Delete(c.Param("logId"))
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "audit log deleted",
		"data":    entry,
	})
}

type deleteManyRequest struct {
	LogIDs []string `json:"logIds"`
}

func (h *AuditHandler) DeleteMany(c *gin.Context) {
	var req deleteManyRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.LogIDs) == 0 {
		fail(c, http.StatusBadRequest, "logIds array is required")
		return
	}
	deleted := h.audit.DeleteMany(req.LogIDs)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "audit logs deleted",
		"data": gin.H{
			"deletedCount": deleted,
		},
	})
}

type exportRequest struct {
	Format    string `json:"format"`
	UserID    *int   `json:"userId"`
	Module    string `json:"module"`
	Action    string `json:"action"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (h *AuditHandler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Format == "" {
		req.Format = "xlsx"
	}

	filter := store.AuditFilter{
		UserID: req.UserID,
		Module: req.Module,
		Action: req.Action,
	}
	var ok bool
	if filter.Start, ok = parseAuditDate(c, req.StartDate, false); !ok {
		return
	}
	if filter.End, ok = parseAuditDate(c, req.EndDate, true); !ok {
		return
	}

	result, err := h.audit.Export(filter, req.Format)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "export ready",
		"data":    result,
	})
}

func auditFilterFromQuery(c *gin.Context) (store.AuditFilter, bool) {
	filter := store.AuditFilter{
		Module: c.Query("module"),
		Action: c.Query("action"),
	}
	if raw := c.Query("userId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid userId filter")
			return store.AuditFilter{}, false
		}
		filter.UserID = &id
	}
	var ok bool
	if filter.Start, ok = parseAuditDate(c, c.Query("startDate"), false); !ok {
		return store.AuditFilter{}, false
	}
	if filter.End, ok = parseAuditDate(c, c.Query("endDate"), true); !ok {
		return store.AuditFilter{}, false
	}
	return filter, true
}

// parseAuditDate accepts RFC3339 timestamps or bare dates. A bare end date is
// widened to the end of that day so the bound stays inclusive.
func parseAuditDate(c *gin.Context, raw string, end bool) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid date filter: "+raw)
		return nil, false
	}
	if end {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}
