package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaspertech/crowdguard-console/services"
)

// DetectionHandler exposes the persisted count history for charting older
// ranges than the live display series keeps.
type DetectionHandler struct {
	upstream *services.UpstreamService
}

func NewDetectionHandler(upstream *services.UpstreamService) *DetectionHandler {
	return &DetectionHandler{upstream: upstream}
}

func (h *DetectionHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	filters := services.DetectionFilters{
		CameraID:   c.Query("cameraId"),
		EntranceID: c.Query("entranceId"),
		IsDeleted:  c.Query("isDeleted"),
	}

	detections, metadata, err := h.upstream.ListDetections(c.Request.Context(), requestToken(c), page, limit, filters)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detections, "metadata": metadata})
}

func (h *DetectionHandler) Get(c *gin.Context) {
	detection, err := h.upstream.GetDetection(c.Request.Context(), requestToken(c), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, detection)
}
