package version

import (
	"github.com/gin-gonic/gin"
	"github.com/gracecast/gracecast-api/api/types"
)

// RegisterRoutes registers version routes
func RegisterRoutes(engine *gin.Engine, _ *types.Dependencies) {
	engine.GET("/", Get())
}
