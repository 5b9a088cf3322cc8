package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaspertech/crowdguard-console/middleware"
	"github.com/kaspertech/crowdguard-console/services"
)

type AuthHandler struct {
	upstream *services.UpstreamService
}

func NewAuthHandler(upstream *services.UpstreamService) *AuthHandler {
	return &AuthHandler{upstream: upstream}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Login forwards credentials to the upstream auth collaborator and hands
// the issued token back to the console. The gateway never stores it.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.upstream.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}

func (h *AuthHandler) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id": c.GetString(middleware.ContextUserID),
		"email":   c.GetString(middleware.ContextEmail),
		"role":    c.GetString(middleware.ContextRole),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	// Stateless sessions: logout is the console discarding its token.
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
