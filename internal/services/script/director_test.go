package script

import (
	"context"
	"errors"
	"testing"

	"github.com/gracecast/gracecast-api/internal/services/voices"
	apperrors "github.com/gracecast/gracecast-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	lastSystem string
	lastUser   string
	response   string
	err        error
}

func (f *fakeChat) Complete(_ context.Context, system, user string, _ bool) (string, error) {
	f.lastSystem = system
	f.lastUser = user
	return f.response, f.err
}

func testRequest() Request {
	return Request{
		Topic:    "Finding rest in a busy season",
		Minutes:  2,
		Profiles: voices.BuildProfiles(nil, 2),
		Options:  Options{EmotionTags: true, StructuredTimeline: true},
	}
}

const validPlanJSON = `{
	"title": "Finding Rest",
	"synopsis": "Two hosts talk about rest.",
	"scenes": [
		{"t": 0, "speaker": "Alex", "emotion": "excited", "text": "Welcome back to the show!"},
		{"t": 6, "speaker": "Sarah", "emotion": "thoughtful", "text": "Today we talk about rest."}
	]
}`

func TestGenerateValidPlan(t *testing.T) {
	chat := &fakeChat{response: validPlanJSON}
	director := NewDirector(chat, 0, 0)

	plan, err := director.Generate(context.Background(), "director", testRequest())
	require.NoError(t, err)
	assert.Equal(t, "Finding Rest", plan.Title)
	require.Len(t, plan.Scenes, 2)
	assert.Equal(t, "Alex", plan.Scenes[0].Speaker)

	assert.Contains(t, chat.lastSystem, "Alex")
	assert.Contains(t, chat.lastUser, "Finding rest in a busy season")
}

func TestGenerateStripsMarkdownFences(t *testing.T) {
	chat := &fakeChat{response: "```json\n" + validPlanJSON + "\n```"}
	director := NewDirector(chat, 0, 0)

	plan, err := director.Generate(context.Background(), "director", testRequest())
	require.NoError(t, err)
	assert.Len(t, plan.Scenes, 2)
}

func TestGenerateToleratesLeadingProse(t *testing.T) {
	chat := &fakeChat{response: "Here is the script:\n" + validPlanJSON}
	director := NewDirector(chat, 0, 0)

	plan, err := director.Generate(context.Background(), "director", testRequest())
	require.NoError(t, err)
	assert.Equal(t, "Finding Rest", plan.Title)
}

func TestGenerateModelError(t *testing.T) {
	chat := &fakeChat{err: errors.New("connection refused")}
	director := NewDirector(chat, 0, 0)

	_, err := director.Generate(context.Background(), "studio", testRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeScriptGeneration, apperrors.GetCode(err))
}

func TestGenerateMalformedJSON(t *testing.T) {
	chat := &fakeChat{response: `{"title": "broken", "scenes": [`}
	director := NewDirector(chat, 0, 0)

	_, err := director.Generate(context.Background(), "studio", testRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeScriptGeneration, apperrors.GetCode(err))
}

func TestGenerateSchemaViolations(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no scenes", `{"title": "x", "scenes": []}`},
		{"missing title", `{"scenes": [{"t": 0, "speaker": "A", "text": "hi"}]}`},
		{"scene missing speaker", `{"title": "x", "scenes": [{"t": 0, "text": "hi"}]}`},
		{"scene missing text", `{"title": "x", "scenes": [{"t": 0, "speaker": "A"}]}`},
		{"negative timestamp", `{"title": "x", "scenes": [{"t": -1, "speaker": "A", "text": "hi"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			director := NewDirector(&fakeChat{response: tt.response}, 0, 0)
			_, err := director.Generate(context.Background(), "studio", testRequest())
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeScriptGeneration, apperrors.GetCode(err))
		})
	}
}

func TestGenerateEmptyTopic(t *testing.T) {
	director := NewDirector(&fakeChat{response: validPlanJSON}, 0, 0)

	req := testRequest()
	req.Topic = ""
	_, err := director.Generate(context.Background(), "studio", req)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeScriptGeneration, apperrors.GetCode(err))
}

func TestTargetBudgets(t *testing.T) {
	director := NewDirector(&fakeChat{}, 130, 3)

	assert.Equal(t, 8, director.TargetScenes(1), "short episodes floor at 8 scenes")
	assert.Equal(t, 8, director.TargetScenes(2))
	assert.Equal(t, 15, director.TargetScenes(5))
	assert.Equal(t, 260, director.TargetWords(2))
}

func TestTranscript(t *testing.T) {
	plan := &Plan{
		Title: "x",
		Scenes: []Scene{
			{Speaker: "Alex", Text: "Hello."},
			{Speaker: "Sarah", Text: "Hi there."},
		},
	}
	assert.Equal(t, "Alex: Hello.\nSarah: Hi there.\n", plan.Transcript())
}
