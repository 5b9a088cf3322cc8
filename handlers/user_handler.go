package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaspertech/crowdguard-console/models"
	"github.com/kaspertech/crowdguard-console/services"
)

type UserHandler struct {
	upstream *services.UpstreamService
}

func NewUserHandler(upstream *services.UpstreamService) *UserHandler {
	return &UserHandler{upstream: upstream}
}

func (h *UserHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	filters := services.UserFilters{
		Name:    c.Query("name"),
		Email:   c.Query("email"),
		PhoneNo: c.Query("phoneNo"),
	}

	users, metadata, err := h.upstream.ListUsers(c.Request.Context(), requestToken(c), page, limit, filters)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": users, "metadata": metadata})
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.upstream.GetUser(c.Request.Context(), requestToken(c), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	PhoneNo  string `json:"phoneNo"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

// Create registers an operator through the upstream auth collaborator; the
// password only transits, it is never stored or hashed here.
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.upstream.CreateUser(c.Request.Context(), requestToken(c), req)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *UserHandler) Update(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.upstream.UpdateUser(c.Request.Context(), requestToken(c), c.Param("id"), user)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.upstream.DeleteUser(c.Request.Context(), requestToken(c), c.Param("id")); err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *UserHandler) Restore(c *gin.Context) {
	restored, err := h.upstream.RestoreUser(c.Request.Context(), requestToken(c), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, restored)
}
