package episodes

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gracecast/gracecast-api/internal/models"
	apperrors "github.com/gracecast/gracecast-api/pkg/errors"
)

type service struct {
	repo Repository
}

// NewService creates a new episode service
func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) CreatePodcastArtifact(ctx context.Context, userID string, input ArtifactInput) (*models.Episode, error) {
	if userID == "" {
		return nil, apperrors.MissingFieldError("userId")
	}
	if input.Title == "" {
		return nil, apperrors.MissingFieldError("title")
	}
	if input.Transcript == "" {
		return nil, apperrors.MissingFieldError("transcript")
	}
	if input.Duration <= 0 {
		return nil, apperrors.ValidationError("duration", fmt.Sprintf("must be positive, got %f", input.Duration))
	}

	status := input.Status
	if status == "" {
		status = models.EpisodeStatusReady
	}

	episode := &models.Episode{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Topic:       input.Topic,
		AudioURL:    input.AudioURL,
		Transcript:  input.Transcript,
		Duration:    input.Duration,
		Status:      status,
		Engine:      input.Engine,
		SceneCount:  input.SceneCount,
		Warning:     input.Warning,
		Hosts:       input.Hosts,
	}

	if err := s.repo.CreateEpisode(ctx, episode); err != nil {
		return nil, apperrors.PersistenceError("podcast artifact", err)
	}

	log.Printf("[DEBUG] Created episode %s for user %s (status: %s, duration: %.1fs)",
		episode.UUID, userID, episode.Status, episode.Duration)

	return episode, nil
}

func (s *service) GetEpisode(ctx context.Context, uuid string) (*models.Episode, error) {
	episode, err := s.repo.GetEpisodeByUUID(ctx, uuid)
	if err != nil {
		if errors.Is(err, ErrEpisodeNotFound) {
			return nil, apperrors.NotFound("episode", uuid)
		}
		return nil, fmt.Errorf("getting episode: %w", err)
	}
	return episode, nil
}

func (s *service) ListEpisodes(ctx context.Context, userID string, limit, offset int) ([]*models.Episode, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	episodes, total, err := s.repo.ListEpisodesByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing episodes: %w", err)
	}
	return episodes, total, nil
}
