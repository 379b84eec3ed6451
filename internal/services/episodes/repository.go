package episodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/gracecast/gracecast-api/internal/models"
	"gorm.io/gorm"
)

// Repository errors
var (
	ErrEpisodeNotFound = errors.New("episode not found")
)

// Repository defines the interface for episode persistence
type Repository interface {
	CreateEpisode(ctx context.Context, episode *models.Episode) error
	GetEpisodeByUUID(ctx context.Context, uuid string) (*models.Episode, error)
	ListEpisodesByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Episode, int64, error)
}

// repository implements Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new episode repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

// CreateEpisode creates a new episode record
func (r *repository) CreateEpisode(ctx context.Context, episode *models.Episode) error {
	if err := r.db.WithContext(ctx).Create(episode).Error; err != nil {
		return fmt.Errorf("creating episode: %w", err)
	}
	return nil
}

// GetEpisodeByUUID retrieves an episode by its UUID
func (r *repository) GetEpisodeByUUID(ctx context.Context, uuid string) (*models.Episode, error) {
	var episode models.Episode
	err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&episode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEpisodeNotFound
		}
		return nil, fmt.Errorf("getting episode: %w", err)
	}
	return &episode, nil
}

// ListEpisodesByUser retrieves a page of episodes for a user, newest first
func (r *repository) ListEpisodesByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Episode, int64, error) {
	var episodes []*models.Episode
	var total int64

	base := r.db.WithContext(ctx).Model(&models.Episode{}).Where("user_id = ?", userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting episodes: %w", err)
	}

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&episodes).Error; err != nil {
		return nil, 0, fmt.Errorf("listing episodes: %w", err)
	}

	return episodes, total, nil
}
