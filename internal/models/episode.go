package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Episode status constants
const (
	EpisodeStatusReady            = "ready"             // Audio generated and saved
	EpisodeStatusAudioUnavailable = "audio_unavailable" // Script generated, all synthesis attempts failed
)

// Episode represents a generated podcast episode artifact.
// AudioURL is nil when every synthesis attempt failed; that is a valid
// degraded terminal state, not an error.
type Episode struct {
	gorm.Model
	UUID        string  `json:"uuid" gorm:"uniqueIndex;not null"`
	UserID      string  `json:"user_id" gorm:"not null;index"`
	Title       string  `json:"title" gorm:"not null"`
	Description string  `json:"description"`
	Topic       string  `json:"topic"`
	AudioURL    *string `json:"audio_url" gorm:"size:500"`
	Transcript  string  `json:"transcript" gorm:"type:text"`
	Duration    float64 `json:"duration" gorm:"not null"` // Seconds, always a positive estimate
	Status      string  `json:"status" gorm:"not null;size:30;index"`

	// Generation metadata
	Engine     string   `json:"engine" gorm:"size:30"`
	SceneCount int      `json:"scene_count"`
	Warning    string   `json:"warning,omitempty" gorm:"size:500"`
	Hosts      HostList `json:"hosts" gorm:"type:json"`
}

// HostList stores the resolved voice profiles for an episode as JSON
type HostList []EpisodeHost

// EpisodeHost is the persisted snapshot of one resolved voice profile
type EpisodeHost struct {
	Name        string `json:"name"`
	Voice       string `json:"voice"`
	Personality string `json:"personality,omitempty"`
}

// Value implements driver.Valuer interface for HostList
func (h HostList) Value() (driver.Value, error) {
	if h == nil {
		return nil, nil
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner interface for HostList
func (h *HostList) Scan(value interface{}) error {
	if value == nil {
		*h = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, h)
}

// BeforeCreate generates a UUID before creating a new episode
func (e *Episode) BeforeCreate(tx *gorm.DB) error {
	if e.UUID == "" {
		e.UUID = uuid.New().String()
	}
	if e.Status == "" {
		e.Status = EpisodeStatusReady
	}
	return nil
}

// HasAudio returns true if the episode has a playable audio file
func (e *Episode) HasAudio() bool {
	return e.AudioURL != nil && *e.AudioURL != ""
}

// TableName returns the table name for the Episode model
func (Episode) TableName() string {
	return "episodes"
}
