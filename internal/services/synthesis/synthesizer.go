package synthesis

import (
	"context"
	"log"

	"github.com/gracecast/gracecast-api/internal/services/emotion"
)

// SpeechClient is the text-to-speech contract. Implemented by the OpenAI
// client in the tts package.
type SpeechClient interface {
	Speak(ctx context.Context, text, voice string, speed float64) ([]byte, error)
}

// Synthesizer produces audio for individual script lines.
type Synthesizer struct {
	speech     SpeechClient
	classifier emotion.Classifier // optional
}

// NewSynthesizer creates a line synthesizer. classifier may be nil, in
// which case delivery falls back to punctuation heuristics.
func NewSynthesizer(speech SpeechClient, classifier emotion.Classifier) *Synthesizer {
	return &Synthesizer{
		speech:     speech,
		classifier: classifier,
	}
}

// DeliveryFor picks delivery parameters for a line. An explicit emotion
// tag from the script wins; otherwise the classifier is consulted when
// available; otherwise punctuation heuristics decide the speed.
func (s *Synthesizer) DeliveryFor(ctx context.Context, text, emotionTag string) Delivery {
	if emotionTag != "" {
		return DeliveryForEmotion(emotionTag)
	}
	if s.classifier != nil {
		predictions, err := s.classifier.Classify(ctx, text)
		if err == nil {
			if top, ok := emotion.Top(predictions); ok {
				return DeliveryForEmotion(mapClassifierLabel(top.Label))
			}
		} else {
			log.Printf("[DEBUG] Emotion classification failed, using heuristics: %v", err)
		}
	}
	d := defaultDelivery
	d.Speed = SpeedFor(text)
	return d
}

// Line cleans and synthesizes one script line. skipped is true when the
// cleaned text is too short to speak; err is a per-line synthesis failure
// the caller may treat as skippable or as grounds for engine fallback.
func (s *Synthesizer) Line(ctx context.Context, text, voice string, delivery Delivery) (data []byte, skipped bool, err error) {
	cleaned := CleanText(text)
	if !Speakable(cleaned) {
		return nil, true, nil
	}

	data, err = s.speech.Speak(ctx, cleaned, voice, delivery.Speed)
	if err != nil {
		return nil, false, err
	}
	return data, false, nil
}

// mapClassifierLabel translates common classifier vocabularies onto the
// delivery table's emotion categories.
func mapClassifierLabel(label string) string {
	switch label {
	case "joy", "happiness", "excitement":
		return "excited"
	case "sadness", "grief":
		return "concerned"
	case "fear", "nervousness":
		return "concerned"
	case "anger", "annoyance":
		return "passionate"
	case "surprise", "realization":
		return "surprised"
	case "curiosity", "confusion":
		return "questioning"
	case "approval", "admiration", "gratitude":
		return "agreeing"
	case "amusement":
		return "amused"
	case "neutral", "calm":
		return "thoughtful"
	default:
		return label
	}
}
