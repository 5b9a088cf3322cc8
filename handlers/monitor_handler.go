package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaspertech/crowdguard-console/services"
)

type MonitorHandler struct {
	monitor  *services.MonitorService
	upstream *services.UpstreamService
	channel  *services.ChannelService
}

func NewMonitorHandler(monitor *services.MonitorService, upstream *services.UpstreamService, channel *services.ChannelService) *MonitorHandler {
	return &MonitorHandler{monitor: monitor, upstream: upstream, channel: channel}
}

type ObserveRequest struct {
	Threshold *int `json:"threshold"`
}

// Observe starts the monitoring pipeline for a camera. Without an explicit
// threshold in the body the camera's configured one is fetched from
// upstream, and the session joins the camera's entrance alert scope.
func (h *MonitorHandler) Observe(c *gin.Context) {
	cameraID := c.Param("id")

	var req ObserveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	threshold := 0
	if req.Threshold != nil {
		threshold = *req.Threshold
	} else {
		camera, err := h.upstream.GetCamera(c.Request.Context(), requestToken(c), cameraID)
		if err != nil {
			respondUpstreamError(c, err)
			return
		}
		threshold = camera.Threshold
		h.channel.JoinEntrance(camera.EntranceID)
	}

	h.monitor.Observe(cameraID, threshold)

	c.JSON(http.StatusOK, gin.H{
		"message":   "Monitoring started",
		"camera_id": cameraID,
		"threshold": threshold,
	})
}

func (h *MonitorHandler) Unobserve(c *gin.Context) {
	cameraID := c.Param("id")
	h.monitor.Unobserve(cameraID)

	c.JSON(http.StatusOK, gin.H{
		"message":   "Monitoring stopped",
		"camera_id": cameraID,
	})
}

// Snapshot returns the camera's display series, trend and projection for
// the dashboard charts.
func (h *MonitorHandler) Snapshot(c *gin.Context) {
	cameraID := c.Param("id")

	snapshot, ok := h.monitor.Snapshot(cameraID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Camera is not being monitored"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
