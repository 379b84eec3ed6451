package episodes

import (
	"context"

	"github.com/gracecast/gracecast-api/internal/models"
)

// ArtifactInput is the data needed to persist a finished generation run.
// AudioURL is nil for degraded text-only artifacts.
type ArtifactInput struct {
	Title       string
	Description string
	Topic       string
	AudioURL    *string
	Transcript  string
	Duration    float64 // seconds
	Status      string
	Engine      string
	SceneCount  int
	Warning     string
	Hosts       models.HostList
}

// Service defines the business logic interface for episode artifacts.
// This is the only persistence contract the generation pipeline depends on.
type Service interface {
	CreatePodcastArtifact(ctx context.Context, userID string, input ArtifactInput) (*models.Episode, error)
	GetEpisode(ctx context.Context, uuid string) (*models.Episode, error)
	ListEpisodes(ctx context.Context, userID string, limit, offset int) ([]*models.Episode, int64, error)
}
