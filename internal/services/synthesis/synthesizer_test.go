package synthesis

import (
	"context"
	"errors"
	"testing"

	"github.com/gracecast/gracecast-api/internal/services/emotion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Welcome to the show.", "Welcome to the show."},
		{"stage direction", "Welcome [laughs warmly] everyone!", "Welcome everyone!"},
		{"filler words", "So um this is uh really important, pause for effect", "So this is really important, for effect"},
		{"whitespace collapse", "Too   many\n\nspaces", "Too many spaces"},
		{"filler inside word kept", "The umbrella pauses nothing", "The umbrella pauses nothing"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanText(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, CleanText(got), "cleaning must be idempotent")
		})
	}
}

func TestSpeakable(t *testing.T) {
	assert.True(t, Speakable("Hi!"))
	assert.False(t, Speakable("Hi"))
	assert.False(t, Speakable(""))
}

func TestSpeedFor(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"That's amazing!", 1.1},
		{"Well... I'm not sure", 0.9},
		{"What do you think?", 0.95},
		{"That is exactly right", 1.05},
		{"I absolutely agree", 1.05},
		{"A plain statement.", 1.0},
		{"Really?! No way", 1.1}, // exclamation wins
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SpeedFor(tt.text), "text %q", tt.text)
	}
}

func TestDeliveryForEmotion(t *testing.T) {
	excited := DeliveryForEmotion("excited")
	assert.Greater(t, excited.Speed, 1.0)

	thoughtful := DeliveryForEmotion("Thoughtful")
	assert.Less(t, thoughtful.Speed, 1.0)

	unknown := DeliveryForEmotion("melancholic")
	assert.Equal(t, defaultDelivery, unknown)
}

type fakeSpeech struct {
	lastText  string
	lastVoice string
	lastSpeed float64
	calls     int
	err       error
}

func (f *fakeSpeech) Speak(_ context.Context, text, voice string, speed float64) ([]byte, error) {
	f.calls++
	f.lastText = text
	f.lastVoice = voice
	f.lastSpeed = speed
	if f.err != nil {
		return nil, f.err
	}
	return []byte("audio:" + text), nil
}

type fakeClassifier struct {
	predictions []emotion.Prediction
	err         error
}

func (f *fakeClassifier) Classify(_ context.Context, _ string) ([]emotion.Prediction, error) {
	return f.predictions, f.err
}

func TestLineSynthesizesCleanedText(t *testing.T) {
	speech := &fakeSpeech{}
	syn := NewSynthesizer(speech, nil)

	data, skipped, err := syn.Line(context.Background(), "Hello [smiling] um everyone!", "alloy", Delivery{Speed: 1.1})
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, []byte("audio:Hello everyone!"), data)
	assert.Equal(t, "Hello everyone!", speech.lastText)
	assert.Equal(t, "alloy", speech.lastVoice)
	assert.Equal(t, 1.1, speech.lastSpeed)
}

func TestLineSkipsShortText(t *testing.T) {
	speech := &fakeSpeech{}
	syn := NewSynthesizer(speech, nil)

	data, skipped, err := syn.Line(context.Background(), "[laughs] um", "alloy", Delivery{Speed: 1.0})
	require.NoError(t, err)
	assert.True(t, skipped)
	assert.Nil(t, data)
	assert.Zero(t, speech.calls)
}

func TestLineSynthesisError(t *testing.T) {
	speech := &fakeSpeech{err: errors.New("quota exceeded")}
	syn := NewSynthesizer(speech, nil)

	_, skipped, err := syn.Line(context.Background(), "A real sentence.", "alloy", Delivery{Speed: 1.0})
	require.Error(t, err)
	assert.False(t, skipped)
}

func TestDeliveryForPrefersExplicitTag(t *testing.T) {
	syn := NewSynthesizer(&fakeSpeech{}, &fakeClassifier{
		predictions: []emotion.Prediction{{Label: "sadness", Score: 0.9}},
	})

	d := syn.DeliveryFor(context.Background(), "some text", "excited")
	assert.Equal(t, DeliveryForEmotion("excited"), d)
}

func TestDeliveryForUsesClassifier(t *testing.T) {
	syn := NewSynthesizer(&fakeSpeech{}, &fakeClassifier{
		predictions: []emotion.Prediction{{Label: "joy", Score: 0.9}},
	})

	d := syn.DeliveryFor(context.Background(), "What a day", "")
	assert.Equal(t, DeliveryForEmotion("excited"), d)
}

func TestDeliveryForClassifierFailureFallsBack(t *testing.T) {
	syn := NewSynthesizer(&fakeSpeech{}, &fakeClassifier{err: errors.New("down")})

	d := syn.DeliveryFor(context.Background(), "That's amazing!", "")
	assert.Equal(t, 1.1, d.Speed)
}

func TestDeliveryForHeuristicsWithoutClassifier(t *testing.T) {
	syn := NewSynthesizer(&fakeSpeech{}, nil)

	d := syn.DeliveryFor(context.Background(), "Is that so?", "")
	assert.Equal(t, 0.95, d.Speed)
}
