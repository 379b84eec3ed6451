package synthesis

import "strings"

// Delivery parameterizes how a line is spoken.
type Delivery struct {
	Speed       float64
	Emphasis    float64
	PauseBefore float64
	PauseAfter  float64
}

// deliveryByEmotion maps classifier output (or script emotion tags) to
// fixed delivery parameters.
var deliveryByEmotion = map[string]Delivery{
	"excited":     {Speed: 1.12, Emphasis: 1.2, PauseBefore: 0.2, PauseAfter: 0.4},
	"thoughtful":  {Speed: 0.92, Emphasis: 0.9, PauseBefore: 0.5, PauseAfter: 0.7},
	"questioning": {Speed: 0.96, Emphasis: 1.0, PauseBefore: 0.3, PauseAfter: 0.6},
	"agreeing":    {Speed: 1.02, Emphasis: 1.0, PauseBefore: 0.1, PauseAfter: 0.3},
	"surprised":   {Speed: 1.08, Emphasis: 1.15, PauseBefore: 0.2, PauseAfter: 0.5},
	"passionate":  {Speed: 1.06, Emphasis: 1.25, PauseBefore: 0.3, PauseAfter: 0.5},
	"concerned":   {Speed: 0.94, Emphasis: 0.95, PauseBefore: 0.4, PauseAfter: 0.6},
	"amused":      {Speed: 1.04, Emphasis: 1.05, PauseBefore: 0.2, PauseAfter: 0.4},
}

var defaultDelivery = Delivery{Speed: 1.0, Emphasis: 1.0, PauseBefore: 0.3, PauseAfter: 0.5}

// DeliveryForEmotion returns the delivery table entry for a label, or the
// neutral default for unknown labels.
func DeliveryForEmotion(label string) Delivery {
	if d, ok := deliveryByEmotion[strings.ToLower(strings.TrimSpace(label))]; ok {
		return d
	}
	return defaultDelivery
}

// emphaticKeywords nudge delivery slightly faster.
var emphaticKeywords = []string{"exactly", "absolutely"}

// SpeedFor derives a speaking speed from punctuation and keywords when no
// emotion label is available. Checks run in priority order so an
// exclamation wins over a trailing ellipsis.
func SpeedFor(text string) float64 {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(text, "!"):
		return 1.1
	case strings.Contains(text, "...") || strings.Contains(text, "…"):
		return 0.9
	case strings.Contains(text, "?"):
		return 0.95
	}

	for _, kw := range emphaticKeywords {
		if strings.Contains(lower, kw) {
			return 1.05
		}
	}
	return 1.0
}
