// Package podcasts exposes the podcast generation endpoints.
package podcasts

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gracecast/gracecast-api/api/types"
	"github.com/gracecast/gracecast-api/internal/models"
	"github.com/gracecast/gracecast-api/internal/services/jobs"
	apperrors "github.com/gracecast/gracecast-api/pkg/errors"
)

// HostRequest is one host descriptor in a generation request
type HostRequest struct {
	Name        string `json:"name"`
	Voice       string `json:"voice"`
	Personality string `json:"personality"`
	Style       string `json:"style"`
}

// GenerateRequest is the body of POST /api/v1/podcasts
type GenerateRequest struct {
	Topic         string        `json:"topic" binding:"required"`
	Description   string        `json:"description"`
	Minutes       int           `json:"minutes"`
	Hosts         []HostRequest `json:"hosts"`
	HostCount     int           `json:"hostCount"`
	AllowExplicit bool          `json:"allowExplicit"`
	BackgroundBed bool          `json:"backgroundBed"`
}

// Generate enqueues a podcast generation job
// @Summary Generate a podcast episode
// @Description Queues generation of a multi-host podcast episode on the given topic
// @Tags podcasts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body GenerateRequest true "Generation request"
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} types.ErrorResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/podcasts [post]
func Generate(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var req GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid request body"))
			return
		}
		if req.Minutes < 0 || req.Minutes > 30 {
			types.RespondError(c, apperrors.ValidationError("minutes", "must be between 1 and 30"))
			return
		}

		hosts := make([]interface{}, 0, len(req.Hosts))
		for _, h := range req.Hosts {
			hosts = append(hosts, map[string]interface{}{
				"name":        h.Name,
				"voice":       h.Voice,
				"personality": h.Personality,
				"style":       h.Style,
			})
		}

		payload := models.JobPayload{
			"user_id":        userID,
			"topic":          req.Topic,
			"description":    req.Description,
			"minutes":        req.Minutes,
			"host_count":     req.HostCount,
			"allow_explicit": req.AllowExplicit,
			"background_bed": req.BackgroundBed,
			"hosts":          hosts,
		}

		job, err := deps.JobService.EnqueueJob(c.Request.Context(),
			models.JobTypeEpisodeGeneration, payload, jobs.WithCreatedBy(userID))
		if err != nil {
			types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to queue generation"))
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"status":   "queued",
			"jobId":    job.ID,
			"queuedAt": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// GetEpisode returns one generated episode
// @Summary Get an episode
// @Tags podcasts
// @Security BearerAuth
// @Produce json
// @Param uuid path string true "Episode UUID"
// @Success 200 {object} types.EpisodeResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/podcasts/{uuid} [get]
func GetEpisode(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		episode, err := deps.EpisodeService.GetEpisode(c.Request.Context(), c.Param("uuid"))
		if err != nil {
			types.RespondError(c, err)
			return
		}
		if episode.UserID != userID {
			types.RespondError(c, apperrors.NotFound("episode", c.Param("uuid")))
			return
		}
		c.JSON(http.StatusOK, toResponse(episode, true))
	}
}

// ListEpisodes returns the caller's episodes, newest first
// @Summary List episodes
// @Tags podcasts
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/podcasts [get]
func ListEpisodes(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		limit := intQuery(c, "limit", 20)
		offset := intQuery(c, "offset", 0)

		episodes, total, err := deps.EpisodeService.ListEpisodes(c.Request.Context(), userID, limit, offset)
		if err != nil {
			types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to list episodes"))
			return
		}

		items := make([]types.EpisodeResponse, len(episodes))
		for i, ep := range episodes {
			items[i] = toResponse(ep, false)
		}
		c.JSON(http.StatusOK, gin.H{
			"episodes": items,
			"total":    total,
			"limit":    limit,
			"offset":   offset,
		})
	}
}

func toResponse(ep *models.Episode, includeTranscript bool) types.EpisodeResponse {
	resp := types.EpisodeResponse{
		UUID:        ep.UUID,
		Title:       ep.Title,
		Description: ep.Description,
		Topic:       ep.Topic,
		AudioURL:    ep.AudioURL,
		Duration:    ep.Duration,
		Status:      ep.Status,
		Engine:      ep.Engine,
		SceneCount:  ep.SceneCount,
		Warning:     ep.Warning,
		CreatedAt:   ep.CreatedAt.UTC().Format(time.RFC3339),
	}
	if includeTranscript {
		resp.Transcript = ep.Transcript
	}
	for _, h := range ep.Hosts {
		resp.Hosts = append(resp.Hosts, types.HostSummary{
			Name:        h.Name,
			Voice:       h.Voice,
			Personality: h.Personality,
		})
	}
	return resp
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
