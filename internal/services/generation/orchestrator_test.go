package generation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gracecast/gracecast-api/internal/models"
	"github.com/gracecast/gracecast-api/internal/services/assembly"
	"github.com/gracecast/gracecast-api/internal/services/episodes"
	"github.com/gracecast/gracecast-api/internal/services/moderation"
	"github.com/gracecast/gracecast-api/internal/services/script"
	"github.com/gracecast/gracecast-api/internal/services/synthesis"
	apperrors "github.com/gracecast/gracecast-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeDirector struct {
	plans    map[string]*script.Plan
	errs     map[string]error
	attempts []string
}

func (f *fakeDirector) Generate(_ context.Context, engine string, _ script.Request) (*script.Plan, error) {
	f.attempts = append(f.attempts, engine)
	if err, ok := f.errs[engine]; ok {
		return nil, err
	}
	if plan, ok := f.plans[engine]; ok {
		return plan, nil
	}
	return nil, apperrors.ScriptGenerationError(engine, errors.New("no plan configured"))
}

type fakeSynth struct {
	failAll   bool
	failTexts map[string]bool
	calls     int
}

func (f *fakeSynth) DeliveryFor(_ context.Context, text, emotionTag string) synthesis.Delivery {
	if emotionTag != "" {
		return synthesis.DeliveryForEmotion(emotionTag)
	}
	return synthesis.Delivery{Speed: synthesis.SpeedFor(text)}
}

func (f *fakeSynth) Line(_ context.Context, text, _ string, _ synthesis.Delivery) ([]byte, bool, error) {
	f.calls++
	cleaned := synthesis.CleanText(text)
	if !synthesis.Speakable(cleaned) {
		return nil, true, nil
	}
	if f.failAll || f.failTexts[text] {
		return nil, false, errors.New("tts unavailable")
	}
	return []byte("audio"), false, nil
}

type fakeAssembler struct {
	lastOpts     assembly.Options
	lastSegments []assembly.Segment
	err          error
	duration     float64
}

func (f *fakeAssembler) Assemble(_ context.Context, workDir string, segments []assembly.Segment, opts assembly.Options) (string, float64, error) {
	f.lastOpts = opts
	f.lastSegments = segments
	if f.err != nil {
		return "", 0, f.err
	}
	out := filepath.Join(workDir, "final.mp3")
	if err := os.WriteFile(out, []byte("final-audio"), 0o644); err != nil {
		return "", 0, err
	}
	return out, f.duration, nil
}

type failingEpisodes struct{}

func (f *failingEpisodes) CreatePodcastArtifact(_ context.Context, _ string, _ episodes.ArtifactInput) (*models.Episode, error) {
	return nil, apperrors.PersistenceError("podcast artifact", errors.New("disk full"))
}

func (f *failingEpisodes) GetEpisode(_ context.Context, _ string) (*models.Episode, error) {
	return nil, apperrors.NotFound("episode", "")
}

func (f *failingEpisodes) ListEpisodes(_ context.Context, _ string, _, _ int) ([]*models.Episode, int64, error) {
	return nil, 0, nil
}

func realEpisodes(t *testing.T) episodes.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Episode{}))
	return episodes.NewService(episodes.NewRepository(db))
}

func validPlan() *script.Plan {
	return &script.Plan{
		Title: "Walking Through Grief",
		Scenes: []script.Scene{
			{T: 0, Speaker: "Alex", Emotion: "thoughtful", Text: "Welcome back to the show, everyone."},
			{T: 7, Speaker: "Sarah", Text: "Today we talk about grief and hope."},
			{T: 14, Speaker: "Alex", Text: "Let's start with a story."},
		},
	}
}

func testOrchestrator(t *testing.T, director ScriptDirector, synth LineSynthesizer, asm AudioAssembler, eps episodes.Service, engines []Engine) *Orchestrator {
	t.Helper()
	return NewOrchestrator(Deps{
		Director:   director,
		Moderator:  moderation.NewService(0.3),
		SynthBasic: synth,
		Assembler:  asm,
		Episodes:   eps,
	}, engines, Config{
		WorkDir:        t.TempDir(),
		UploadsDir:     t.TempDir(),
		PublicBase:     "/files",
		WordsPerMinute: 130,
	})
}

func baseRequest() Request {
	return Request{
		UserID:  "user-1",
		Topic:   "Walking through grief",
		Minutes: 2,
	}
}

func TestGenerateHappyPath(t *testing.T) {
	director := &fakeDirector{plans: map[string]*script.Plan{"studio": validPlan()}}
	asm := &fakeAssembler{duration: 125.0}
	orch := testOrchestrator(t, director, &fakeSynth{}, asm, realEpisodes(t), nil)

	var stages []string
	req := baseRequest()
	req.OnProgress = func(_ int, stage string) { stages = append(stages, stage) }

	episode, err := orch.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.EpisodeStatusReady, episode.Status)
	assert.Equal(t, "Walking Through Grief", episode.Title)
	assert.Equal(t, "studio", episode.Engine)
	assert.Equal(t, 3, episode.SceneCount)
	assert.Equal(t, 125.0, episode.Duration)
	require.NotNil(t, episode.AudioURL)
	assert.Contains(t, *episode.AudioURL, "/files/episode_")
	assert.NotEmpty(t, episode.Transcript)
	assert.NotEmpty(t, stages)
	assert.Equal(t, "done", stages[len(stages)-1])

	// Segments keep script order
	require.Len(t, asm.lastSegments, 3)
	assert.Equal(t, 0.0, asm.lastSegments[0].Offset)
	assert.Equal(t, 14.0, asm.lastSegments[2].Offset)
}

func TestGenerateFallsThroughEngines(t *testing.T) {
	director := &fakeDirector{
		plans: map[string]*script.Plan{"simple": validPlan()},
		errs: map[string]error{
			"studio":   apperrors.ScriptGenerationError("studio", errors.New("bad json")),
			"director": apperrors.ScriptGenerationError("director", errors.New("empty scenes")),
		},
	}
	orch := testOrchestrator(t, director, &fakeSynth{}, &fakeAssembler{duration: 60}, realEpisodes(t), nil)

	episode, err := orch.Generate(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "simple", episode.Engine)
	assert.Equal(t, []string{"studio", "director", "simple"}, director.attempts)
}

func TestGenerateContentFlaggedAbortsWithoutFallback(t *testing.T) {
	flagged := &script.Plan{
		Title: "Bad episode",
		Scenes: []script.Scene{
			{Speaker: "Alex", Text: "hate hate kill destroy attack"},
		},
	}
	director := &fakeDirector{plans: map[string]*script.Plan{
		"studio": flagged, "director": validPlan(),
	}}
	synth := &fakeSynth{}
	orch := testOrchestrator(t, director, synth, &fakeAssembler{duration: 60}, realEpisodes(t), nil)

	_, err := orch.Generate(context.Background(), baseRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeContentFlagged, apperrors.GetCode(err))

	// The gate aborts the whole run: no further engines, no synthesis
	assert.Equal(t, []string{"studio"}, director.attempts)
	assert.Zero(t, synth.calls)
}

func TestGenerateExplicitOverrideSkipsGate(t *testing.T) {
	flagged := &script.Plan{
		Title: "Frank conversation",
		Scenes: []script.Scene{
			{Speaker: "Alex", Text: "hate hate kill destroy attack"},
		},
	}
	director := &fakeDirector{plans: map[string]*script.Plan{"studio": flagged}}
	orch := testOrchestrator(t, director, &fakeSynth{}, &fakeAssembler{duration: 60}, realEpisodes(t), nil)

	req := baseRequest()
	req.AllowExplicit = true
	episode, err := orch.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.EpisodeStatusReady, episode.Status)
}

func TestGenerateAllScriptsFailSavesPlaceholder(t *testing.T) {
	director := &fakeDirector{} // every engine errors
	orch := testOrchestrator(t, director, &fakeSynth{}, &fakeAssembler{}, realEpisodes(t), nil)

	episode, err := orch.Generate(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, models.EpisodeStatusAudioUnavailable, episode.Status)
	assert.Nil(t, episode.AudioURL)
	assert.Equal(t, placeholderGreeting, episode.Transcript)
	assert.Greater(t, episode.Duration, 0.0)
	assert.NotEmpty(t, episode.Warning)
	assert.Len(t, director.attempts, 4)
}

func TestGenerateSynthesisDeadEverywhereSavesTextOnly(t *testing.T) {
	director := &fakeDirector{plans: map[string]*script.Plan{
		"studio": validPlan(), "director": validPlan(), "simple": validPlan(), "minimal": validPlan(),
	}}
	orch := testOrchestrator(t, director, &fakeSynth{failAll: true}, &fakeAssembler{}, realEpisodes(t), nil)

	episode, err := orch.Generate(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, models.EpisodeStatusAudioUnavailable, episode.Status)
	assert.Nil(t, episode.AudioURL)
	assert.Contains(t, episode.Transcript, "Welcome back to the show")
	assert.Greater(t, episode.Duration, 0.0)
	assert.Equal(t, 3, episode.SceneCount)
}

func TestGenerateSkipsFailedLinesButKeepsEpisode(t *testing.T) {
	director := &fakeDirector{plans: map[string]*script.Plan{"studio": validPlan()}}
	synth := &fakeSynth{failTexts: map[string]bool{"Today we talk about grief and hope.": true}}
	asm := &fakeAssembler{duration: 90}
	orch := testOrchestrator(t, director, synth, asm, realEpisodes(t), nil)

	episode, err := orch.Generate(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, models.EpisodeStatusReady, episode.Status)
	assert.Len(t, asm.lastSegments, 2)
}

func TestGenerateAssemblyFailureFallsThrough(t *testing.T) {
	director := &fakeDirector{plans: map[string]*script.Plan{
		"studio": validPlan(), "director": validPlan(), "simple": validPlan(), "minimal": validPlan(),
	}}
	orch := testOrchestrator(t, director, &fakeSynth{},
		&fakeAssembler{err: apperrors.AssemblyError("sequencing", errors.New("boom"))}, realEpisodes(t), nil)

	episode, err := orch.Generate(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, models.EpisodeStatusAudioUnavailable, episode.Status)
	assert.Len(t, director.attempts, 4)
}

func TestGeneratePersistenceFailurePropagates(t *testing.T) {
	director := &fakeDirector{plans: map[string]*script.Plan{"studio": validPlan()}}
	orch := testOrchestrator(t, director, &fakeSynth{}, &fakeAssembler{duration: 60}, &failingEpisodes{}, nil)

	_, err := orch.Generate(context.Background(), baseRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodePersistence, apperrors.GetCode(err))
}

func TestGenerateZeroDurationEstimatedFromWords(t *testing.T) {
	director := &fakeDirector{plans: map[string]*script.Plan{"studio": validPlan()}}
	orch := testOrchestrator(t, director, &fakeSynth{}, &fakeAssembler{duration: 0}, realEpisodes(t), nil)

	episode, err := orch.Generate(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Greater(t, episode.Duration, 0.0)
}

func TestGenerateBedOnlyForSupportingEngines(t *testing.T) {
	director := &fakeDirector{plans: map[string]*script.Plan{"studio": validPlan()}}
	asm := &fakeAssembler{duration: 60}
	orch := NewOrchestrator(Deps{
		Director:   director,
		Moderator:  moderation.NewService(0.3),
		SynthBasic: &fakeSynth{},
		Assembler:  asm,
		Episodes:   realEpisodes(t),
	}, nil, Config{
		WorkDir:    t.TempDir(),
		UploadsDir: t.TempDir(),
		PublicBase: "/files",
		BedPath:    "bed.mp3",
		BedVolume:  0.1,
	})

	req := baseRequest()
	req.BackgroundBed = true
	_, err := orch.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "bed.mp3", asm.lastOpts.BedPath)
	assert.True(t, asm.lastOpts.UseTimeline)
	assert.True(t, asm.lastOpts.Master)

	// The simple engine never gets a bed even when requested
	director2 := &fakeDirector{plans: map[string]*script.Plan{"simple": validPlan()}}
	asm2 := &fakeAssembler{duration: 60}
	orch2 := NewOrchestrator(Deps{
		Director:   director2,
		Moderator:  moderation.NewService(0.3),
		SynthBasic: &fakeSynth{},
		Assembler:  asm2,
		Episodes:   realEpisodes(t),
	}, nil, Config{
		WorkDir:    t.TempDir(),
		UploadsDir: t.TempDir(),
		PublicBase: "/files",
		BedPath:    "bed.mp3",
	})

	_, err = orch2.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, asm2.lastOpts.BedPath)
	assert.False(t, asm2.lastOpts.UseTimeline)
}

func TestGenerateRedactsPIIBeforeSynthesis(t *testing.T) {
	plan := &script.Plan{
		Title: "Community stories",
		Scenes: []script.Scene{
			{Speaker: "Alex", Text: "Email me at alex@example.com for prayer requests."},
		},
	}
	director := &fakeDirector{plans: map[string]*script.Plan{"studio": plan}}
	orch := testOrchestrator(t, director, &fakeSynth{}, &fakeAssembler{duration: 30}, realEpisodes(t), nil)

	episode, err := orch.Generate(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.NotContains(t, episode.Transcript, "alex@example.com")
	assert.Contains(t, episode.Transcript, "[REDACTED-EMAIL]")
}

func TestGenerateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	director := &fakeDirector{plans: map[string]*script.Plan{"studio": validPlan()}}
	orch := testOrchestrator(t, director, &fakeSynth{}, &fakeAssembler{duration: 60}, realEpisodes(t), nil)

	_, err := orch.Generate(ctx, baseRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultEnginesOrder(t *testing.T) {
	engines := DefaultEngines()
	require.Len(t, engines, 4)
	assert.Equal(t, "studio", engines[0].Name)
	assert.Equal(t, "director", engines[1].Name)
	assert.Equal(t, "simple", engines[2].Name)
	assert.Equal(t, "minimal", engines[3].Name)
	assert.True(t, engines[0].UsesEmotionModel)
	assert.True(t, engines[0].SupportsBackgroundBed)
	assert.False(t, engines[2].UsesTimeline)
}
