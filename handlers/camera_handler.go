package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaspertech/crowdguard-console/models"
	"github.com/kaspertech/crowdguard-console/services"
)

type CameraHandler struct {
	upstream *services.UpstreamService
}

func NewCameraHandler(upstream *services.UpstreamService) *CameraHandler {
	return &CameraHandler{upstream: upstream}
}

func (h *CameraHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	filters := services.CameraFilters{
		Location:   c.Query("location"),
		EntranceID: c.Query("entranceId"),
		IsActive:   c.Query("isActive"),
	}

	cameras, metadata, err := h.upstream.ListCameras(c.Request.Context(), requestToken(c), page, limit, filters)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cameras, "metadata": metadata})
}

func (h *CameraHandler) Get(c *gin.Context) {
	camera, err := h.upstream.GetCamera(c.Request.Context(), requestToken(c), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, camera)
}

func (h *CameraHandler) Create(c *gin.Context) {
	var camera models.Camera
	if err := c.ShouldBindJSON(&camera); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.upstream.CreateCamera(c.Request.Context(), requestToken(c), camera)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *CameraHandler) Update(c *gin.Context) {
	var camera models.Camera
	if err := c.ShouldBindJSON(&camera); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.upstream.UpdateCamera(c.Request.Context(), requestToken(c), c.Param("id"), camera)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *CameraHandler) Delete(c *gin.Context) {
	if err := h.upstream.DeleteCamera(c.Request.Context(), requestToken(c), c.Param("id")); err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Camera deleted successfully"})
}

func (h *CameraHandler) Restore(c *gin.Context) {
	restored, err := h.upstream.RestoreCamera(c.Request.Context(), requestToken(c), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, restored)
}

func (h *CameraHandler) Start(c *gin.Context) {
	id := c.Param("id")
	if err := h.upstream.StartCamera(c.Request.Context(), requestToken(c), id); err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Camera started", "camera_id": id})
}

func (h *CameraHandler) Stop(c *gin.Context) {
	id := c.Param("id")
	if err := h.upstream.StopCamera(c.Request.Context(), requestToken(c), id); err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Camera stopped", "camera_id": id})
}

// GetFeed returns the templated live and heatmap feed URLs. The embedded
// player consumes them directly; no video passes through the gateway.
func (h *CameraHandler) GetFeed(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, gin.H{
		"camera_id":   id,
		"feed_url":    h.upstream.FeedURL(id),
		"heatmap_url": h.upstream.HeatmapURL(id),
	})
}
