package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaspertech/crowdguard-console/models"
	"github.com/kaspertech/crowdguard-console/services"
)

// AlertHandler serves the persisted alert records; live alerts reach the
// console over the stream endpoint instead.
type AlertHandler struct {
	upstream *services.UpstreamService
}

func NewAlertHandler(upstream *services.UpstreamService) *AlertHandler {
	return &AlertHandler{upstream: upstream}
}

func (h *AlertHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	filters := services.AlertFilters{
		EntranceID: c.Query("entranceId"),
		IsDeleted:  c.Query("isDeleted"),
		IsResolved: c.Query("isResolved"),
	}

	alerts, metadata, err := h.upstream.ListAlerts(c.Request.Context(), requestToken(c), page, limit, filters)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": alerts, "metadata": metadata})
}

func (h *AlertHandler) Get(c *gin.Context) {
	alert, err := h.upstream.GetAlert(c.Request.Context(), requestToken(c), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, alert)
}

func (h *AlertHandler) Create(c *gin.Context) {
	var alert models.Alert
	if err := c.ShouldBindJSON(&alert); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.upstream.CreateAlert(c.Request.Context(), requestToken(c), alert)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *AlertHandler) Update(c *gin.Context) {
	var alert models.Alert
	if err := c.ShouldBindJSON(&alert); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.upstream.UpdateAlert(c.Request.Context(), requestToken(c), c.Param("id"), alert)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *AlertHandler) Delete(c *gin.Context) {
	if err := h.upstream.DeleteAlert(c.Request.Context(), requestToken(c), c.Param("id")); err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Alert deleted successfully"})
}

func (h *AlertHandler) Restore(c *gin.Context) {
	restored, err := h.upstream.RestoreAlert(c.Request.Context(), requestToken(c), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, restored)
}
