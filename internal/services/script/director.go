package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	apperrors "github.com/gracecast/gracecast-api/pkg/errors"
)

// ChatClient is the language model contract the director depends on.
type ChatClient interface {
	Complete(ctx context.Context, system, user string, jsonMode bool) (string, error)
}

// Director turns a topic and a set of voice profiles into a validated Plan.
type Director struct {
	client          ChatClient
	wordsPerMinute  int
	scenesPerMinute int
}

// NewDirector creates a script director. Zero rate values get sensible
// defaults (130 words/min, 3 scenes/min).
func NewDirector(client ChatClient, wordsPerMinute, scenesPerMinute int) *Director {
	if wordsPerMinute <= 0 {
		wordsPerMinute = 130
	}
	if scenesPerMinute <= 0 {
		scenesPerMinute = 3
	}
	return &Director{
		client:          client,
		wordsPerMinute:  wordsPerMinute,
		scenesPerMinute: scenesPerMinute,
	}
}

// TargetScenes is the scene budget for a structured-timeline script,
// floored at 8 so short episodes still read as conversations.
func (d *Director) TargetScenes(minutes int) int {
	n := minutes * d.scenesPerMinute
	if n < 8 {
		n = 8
	}
	return n
}

// TargetWords is the word budget for a plain-script variant.
func (d *Director) TargetWords(minutes int) int {
	return minutes * d.wordsPerMinute
}

// Generate calls the model and validates the result. Any model error,
// parse failure, or schema violation surfaces as a script generation
// error for the orchestrator to catch.
func (d *Director) Generate(ctx context.Context, engine string, req Request) (*Plan, error) {
	if req.Topic == "" {
		return nil, apperrors.ScriptGenerationError(engine, fmt.Errorf("empty topic"))
	}
	if req.Minutes <= 0 {
		req.Minutes = 2
	}

	system := systemPrompt(req, d.TargetScenes(req.Minutes), d.TargetWords(req.Minutes))
	user := userPrompt(req)

	raw, err := d.client.Complete(ctx, system, user, true)
	if err != nil {
		return nil, apperrors.ScriptGenerationError(engine, err)
	}

	plan, err := parsePlan(raw)
	if err != nil {
		return nil, apperrors.ScriptGenerationError(engine, err)
	}
	if err := ValidatePlan(plan); err != nil {
		return nil, apperrors.ScriptGenerationError(engine, err)
	}

	logSpeakerBalance(engine, plan)
	return plan, nil
}

// parsePlan decodes model output into a Plan, tolerating the markdown
// code fences models wrap JSON in despite instructions.
func parsePlan(raw string) (*Plan, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	// Some models prepend prose before the object
	if start := strings.Index(cleaned, "{"); start > 0 {
		cleaned = cleaned[start:]
	}

	var plan Plan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, fmt.Errorf("model output is not valid JSON: %w", err)
	}
	return &plan, nil
}

// logSpeakerBalance reports per-speaker scene counts so lopsided scripts
// show up in the logs.
func logSpeakerBalance(engine string, plan *Plan) {
	counts := make(map[string]int)
	for _, s := range plan.Scenes {
		counts[s.Speaker]++
	}
	log.Printf("[DEBUG] Script balance for engine %s (%d scenes): %v", engine, len(plan.Scenes), counts)
}
