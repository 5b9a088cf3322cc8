package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaspertech/crowdguard-console/models"
	"github.com/kaspertech/crowdguard-console/services"
)

type EntranceHandler struct {
	upstream *services.UpstreamService
}

func NewEntranceHandler(upstream *services.UpstreamService) *EntranceHandler {
	return &EntranceHandler{upstream: upstream}
}

func (h *EntranceHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	filters := services.EntranceFilters{
		IsDeleted: c.Query("isDeleted"),
	}

	entrances, metadata, err := h.upstream.ListEntrances(c.Request.Context(), requestToken(c), page, limit, filters)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entrances, "metadata": metadata})
}

func (h *EntranceHandler) Get(c *gin.Context) {
	entrance, err := h.upstream.GetEntrance(c.Request.Context(), requestToken(c), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, entrance)
}

func (h *EntranceHandler) Create(c *gin.Context) {
	var entrance models.Entrance
	if err := c.ShouldBindJSON(&entrance); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.upstream.CreateEntrance(c.Request.Context(), requestToken(c), entrance)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *EntranceHandler) Update(c *gin.Context) {
	var entrance models.Entrance
	if err := c.ShouldBindJSON(&entrance); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.upstream.UpdateEntrance(c.Request.Context(), requestToken(c), c.Param("id"), entrance)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *EntranceHandler) Delete(c *gin.Context) {
	if err := h.upstream.DeleteEntrance(c.Request.Context(), requestToken(c), c.Param("id")); err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Entrance deleted successfully"})
}

func (h *EntranceHandler) Restore(c *gin.Context) {
	restored, err := h.upstream.RestoreEntrance(c.Request.Context(), requestToken(c), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, restored)
}
