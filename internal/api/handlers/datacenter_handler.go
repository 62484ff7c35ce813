package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/koweyli/vantage-console/internal/services"
)

// DataCenterHandler serves the mock data center endpoints used by the
// frontend dashboards.
type DataCenterHandler struct {
	dc *services.DataCenterService
}

func NewDataCenterHandler(dc *services.DataCenterService) *DataCenterHandler {
	return &DataCenterHandler{dc: dc}
}

func (h *DataCenterHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/Data", h.Data)
	r.POST("/dataPanel", h.DataPanel)
	r.GET("/activity", h.Activity)
}

func (h *DataCenterHandler) Data(c *gin.Context) {
	var q services.DataQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	result := h.dc.Query(q)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

type dataPanelRequest struct {
	Num int `json:"num"`
}

func (h *DataCenterHandler) DataPanel(c *gin.Context) {
	var req dataPanelRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Num <= 0 {
		req.Num = 15
	}
	devices := h.dc.Devices(req.Num)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    devices,
		"total":   len(devices),
	})
}

func (h *DataCenterHandler) Activity(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("value", "5"))
	if err != nil || count <= 0 {
		count = 5
	}
	activities := h.dc.Activities(count)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    activities,
	})
}
