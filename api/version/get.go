package version

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Get handles version requests
// @Summary Service info
// @Description Returns service name and version
// @Tags version
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "GraceCast API",
			"version":     "1.0.0",
			"description": "Podcast generation API for church content",
			"status":      "running",
		})
	}
}
