package types

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/gracecast/gracecast-api/pkg/errors"
)

// ErrorResponse is the standard error payload
type ErrorResponse struct {
	Status  string      `json:"status"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// RespondError writes a structured error response, mapping application
// error codes to HTTP status codes.
func RespondError(c *gin.Context, err error) {
	resp := ErrorResponse{
		Status:  "error",
		Code:    string(apperrors.GetCode(err)),
		Message: err.Error(),
	}
	c.JSON(apperrors.GetHTTPCode(err), resp)
}

// EpisodeResponse is the public shape of a generated episode
type EpisodeResponse struct {
	UUID        string        `json:"uuid"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Topic       string        `json:"topic,omitempty"`
	AudioURL    *string       `json:"audioUrl"`
	Transcript  string        `json:"transcript,omitempty"`
	Duration    float64       `json:"duration"`
	Status      string        `json:"status"`
	Engine      string        `json:"engine,omitempty"`
	SceneCount  int           `json:"sceneCount,omitempty"`
	Warning     string        `json:"warning,omitempty"`
	Hosts       []HostSummary `json:"hosts,omitempty"`
	CreatedAt   string        `json:"createdAt"`
}

// HostSummary is one host identity on an episode
type HostSummary struct {
	Name        string `json:"name"`
	Voice       string `json:"voice"`
	Personality string `json:"personality,omitempty"`
}

// JobResponse is the public shape of a background job
type JobResponse struct {
	ID       uint                   `json:"id"`
	Type     string                 `json:"type"`
	Status   string                 `json:"status"`
	Progress int                    `json:"progress"`
	Error    string                 `json:"error,omitempty"`
	Result   map[string]interface{} `json:"result,omitempty"`
}
