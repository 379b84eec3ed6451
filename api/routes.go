package api

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gracecast/gracecast-api/api/health"
	"github.com/gracecast/gracecast-api/api/jobs"
	"github.com/gracecast/gracecast-api/api/podcasts"
	"github.com/gracecast/gracecast-api/api/types"
	"github.com/gracecast/gracecast-api/api/version"
	_ "github.com/gracecast/gracecast-api/docs/swagger"
)

// RouteOptions carries the cross-cutting configuration RegisterRoutes needs.
type RouteOptions struct {
	Auth         AuthHandler
	UploadsDir   string
	PublicBase   string
	RateLimiters *sync.Map
	CleanupStop  chan struct{}
	CleanupOnce  *sync.Once
}

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, opts RouteOptions) error {
	if deps == nil {
		deps = &types.Dependencies{}
	}

	// Public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Swagger documentation
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(301, "/docs/index.html")
	})
	docsGroup := engine.Group("/docs")
	docsGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Generated audio artifacts
	if opts.UploadsDir != "" && opts.PublicBase != "" {
		engine.Static(opts.PublicBase, opts.UploadsDir)
	}

	engine.NoRoute(NotFoundHandler())

	if opts.Auth == nil {
		return fmt.Errorf("auth handler is required")
	}
	if deps.JobService == nil || deps.EpisodeService == nil {
		return fmt.Errorf("job and episode services are required")
	}

	// API v1 routes, all authenticated
	v1 := engine.Group("/api/v1")
	v1.Use(opts.Auth.AuthMiddleware())

	v1.GET("/me", opts.Auth.Me)

	// Reads get general rate limiting (10 req/s, burst of 20); generation
	// is heavily throttled since each job costs minutes of model and TTS
	// calls (1 req/s, burst of 2).
	readMiddleware := PerClientRateLimit(opts.RateLimiters, opts.CleanupStop, opts.CleanupOnce, 10, 20)
	generateMiddleware := PerClientRateLimit(opts.RateLimiters, opts.CleanupStop, opts.CleanupOnce, 1, 2)

	podcastGroup := v1.Group("/podcasts")
	podcastGroup.Use(readMiddleware)
	podcasts.RegisterRoutes(podcastGroup, deps, generateMiddleware)

	jobGroup := v1.Group("/jobs")
	jobGroup.Use(readMiddleware)
	jobs.RegisterRoutes(jobGroup, deps)

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(404, gin.H{
			"status":  "error",
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
