// Package generation runs the full podcast pipeline: script direction,
// speaker resolution, the safety gate, synthesis, assembly, and artifact
// finalization, falling through engine tiers on failure.
package generation

import "github.com/gracecast/gracecast-api/internal/services/script"

// Engine describes one generation tier. Tiers differ in script richness
// and assembly fidelity, not in pipeline shape.
type Engine struct {
	Name                  string
	UsesTimeline          bool
	UsesEmotionModel      bool
	SupportsBackgroundBed bool
	Master                bool
	ScriptOptions         script.Options
}

// DefaultEngines returns the fallback chain, richest first.
func DefaultEngines() []Engine {
	return []Engine{
		{
			Name:                  "studio",
			UsesTimeline:          true,
			UsesEmotionModel:      true,
			SupportsBackgroundBed: true,
			Master:                true,
			ScriptOptions: script.Options{
				EmotionTags:        true,
				AdvancedDialogue:   true,
				Transitions:        true,
				TheologicalRigor:   true,
				BackgroundCues:     true,
				StructuredTimeline: true,
			},
		},
		{
			Name:         "director",
			UsesTimeline: true,
			Master:       true,
			ScriptOptions: script.Options{
				EmotionTags:        true,
				Transitions:        true,
				TheologicalRigor:   true,
				StructuredTimeline: true,
			},
		},
		{
			Name: "simple",
			ScriptOptions: script.Options{
				TheologicalRigor: true,
			},
		},
		{
			Name:          "minimal",
			ScriptOptions: script.Options{},
		},
	}
}
