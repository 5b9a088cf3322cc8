package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kaspertech/crowdguard-console/middleware"
	"github.com/kaspertech/crowdguard-console/services"
)

// respondUpstreamError surfaces a backend failure as a transient error
// with the upstream's own status where available. A 401 from upstream
// means the token is no longer good; the console treats that as session
// teardown.
func respondUpstreamError(c *gin.Context, err error) {
	if upstreamErr, ok := err.(*services.UpstreamError); ok {
		message := upstreamErr.Message
		if message == "" {
			message = "Upstream request failed"
		}
		c.JSON(upstreamErr.Status, gin.H{"error": message})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream unavailable"})
}

func requestToken(c *gin.Context) string {
	return c.GetString(middleware.ContextToken)
}

func queryInt(c *gin.Context, key string, defaultValue int) int {
	if value := c.Query(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
