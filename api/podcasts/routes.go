package podcasts

import (
	"github.com/gin-gonic/gin"
	"github.com/gracecast/gracecast-api/api/types"
)

// RegisterRoutes registers podcast routes on an authenticated group.
// generateMiddleware throttles the expensive generation endpoint
// separately from reads.
func RegisterRoutes(group *gin.RouterGroup, deps *types.Dependencies, generateMiddleware gin.HandlerFunc) {
	group.POST("", generateMiddleware, Generate(deps))
	group.GET("", ListEpisodes(deps))
	group.GET("/:uuid", GetEpisode(deps))
}
