// Package jobs exposes read-only job status endpoints.
package jobs

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gracecast/gracecast-api/api/types"
	apperrors "github.com/gracecast/gracecast-api/pkg/errors"
)

// GetJob returns the status of a background job
// @Summary Get job status
// @Description Returns status and progress for a queued generation job
// @Tags jobs
// @Security BearerAuth
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} types.JobResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/jobs/{id} [get]
func GetJob(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			types.RespondError(c, apperrors.ValidationError("id", "must be a numeric job id"))
			return
		}

		job, err := deps.JobService.GetJob(c.Request.Context(), uint(id))
		if err != nil {
			types.RespondError(c, apperrors.NotFound("job", id))
			return
		}

		userID := c.GetString("user_id")
		if job.CreatedBy != "" && job.CreatedBy != userID {
			types.RespondError(c, apperrors.NotFound("job", id))
			return
		}

		c.JSON(http.StatusOK, types.JobResponse{
			ID:       job.ID,
			Type:     string(job.Type),
			Status:   string(job.Status),
			Progress: job.Progress,
			Error:    job.Error,
			Result:   job.Result,
		})
	}
}

// RegisterRoutes registers job routes on an authenticated group
func RegisterRoutes(group *gin.RouterGroup, deps *types.Dependencies) {
	group.GET("/:id", GetJob(deps))
}
