// Package script generates structured multi-speaker conversation plans
// with a language model and validates them before synthesis.
package script

import (
	"fmt"

	"github.com/gracecast/gracecast-api/internal/services/voices"
)

// Scene is one timestamped line of the conversation. T is the intended
// placement on the episode timeline in seconds; scenes are still processed
// in array order regardless of T.
type Scene struct {
	T       float64  `json:"t"`
	Speaker string   `json:"speaker"`
	Emotion string   `json:"emotion,omitempty"`
	Text    string   `json:"text"`
	FX      []string `json:"fx,omitempty"`
}

// ChapterMarker labels a point on the episode timeline.
type ChapterMarker struct {
	T     float64 `json:"t"`
	Title string  `json:"title"`
}

// Plan is the validated output of the script director.
type Plan struct {
	Title          string          `json:"title"`
	Synopsis       string          `json:"synopsis,omitempty"`
	ChapterMarkers []ChapterMarker `json:"chapterMarkers,omitempty"`
	Voices         []string        `json:"voices,omitempty"`
	Scenes         []Scene         `json:"scenes"`
}

// Options tunes how the director prompts the model.
type Options struct {
	EmotionTags        bool
	AdvancedDialogue   bool
	Transitions        bool
	TheologicalRigor   bool
	BackgroundCues     bool
	StructuredTimeline bool
}

// Request describes one script generation.
type Request struct {
	Topic    string
	Minutes  int
	Profiles []voices.VoiceProfile
	Options  Options
}

// Transcript renders the plan as a plain "Speaker: text" transcript.
func (p *Plan) Transcript() string {
	out := ""
	for _, s := range p.Scenes {
		out += fmt.Sprintf("%s: %s\n", s.Speaker, s.Text)
	}
	return out
}

// ValidatePlan enforces the schema the rest of the pipeline relies on.
// Malformed model output is a hard failure of this stage, never patched up.
func ValidatePlan(p *Plan) error {
	if p == nil {
		return fmt.Errorf("plan is nil")
	}
	if p.Title == "" {
		return fmt.Errorf("plan missing title")
	}
	if len(p.Scenes) == 0 {
		return fmt.Errorf("plan has no scenes")
	}
	for i, s := range p.Scenes {
		if s.Speaker == "" {
			return fmt.Errorf("scene %d missing speaker", i)
		}
		if s.Text == "" {
			return fmt.Errorf("scene %d missing text", i)
		}
		if s.T < 0 {
			return fmt.Errorf("scene %d has negative timestamp %f", i, s.T)
		}
	}
	return nil
}
