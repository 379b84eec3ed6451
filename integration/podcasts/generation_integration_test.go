package podcasts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	jobsapi "github.com/gracecast/gracecast-api/api/jobs"
	podcastsapi "github.com/gracecast/gracecast-api/api/podcasts"
	"github.com/gracecast/gracecast-api/api/types"
	"github.com/gracecast/gracecast-api/internal/models"
	"github.com/gracecast/gracecast-api/internal/services/assembly"
	"github.com/gracecast/gracecast-api/internal/services/episodes"
	"github.com/gracecast/gracecast-api/internal/services/generation"
	"github.com/gracecast/gracecast-api/internal/services/jobs"
	"github.com/gracecast/gracecast-api/internal/services/moderation"
	"github.com/gracecast/gracecast-api/internal/services/script"
	"github.com/gracecast/gracecast-api/internal/services/synthesis"
	"github.com/gracecast/gracecast-api/internal/services/workers"
)

// fakeDirector returns a fixed two-host plan for any engine.
type fakeDirector struct{}

func (d *fakeDirector) Generate(ctx context.Context, engine string, req script.Request) (*script.Plan, error) {
	return &script.Plan{
		Title:    "Walking Through " + req.Topic,
		Synopsis: "A short conversation about " + req.Topic,
		Scenes: []script.Scene{
			{T: 0, Speaker: req.Profiles[0].Name, Emotion: "excited", Text: "Welcome back to the show, today we talk about " + req.Topic + "."},
			{T: 6, Speaker: req.Profiles[1].Name, Emotion: "thoughtful", Text: "There is so much depth here, let's start at the beginning."},
			{T: 12, Speaker: req.Profiles[0].Name, Emotion: "agreeing", Text: "Absolutely, and thanks everyone for listening."},
		},
	}, nil
}

// fakeSynth returns silence-sized fake audio for every line.
type fakeSynth struct{}

func (s *fakeSynth) DeliveryFor(ctx context.Context, text, emotionTag string) synthesis.Delivery {
	return synthesis.DeliveryForEmotion(emotionTag)
}

func (s *fakeSynth) Line(ctx context.Context, text, voice string, delivery synthesis.Delivery) ([]byte, bool, error) {
	cleaned := synthesis.CleanText(text)
	if !synthesis.Speakable(cleaned) {
		return nil, true, nil
	}
	return []byte("audio:" + cleaned), false, nil
}

// fakeAssembler concatenates segment bytes into a final file.
type fakeAssembler struct{}

func (a *fakeAssembler) Assemble(ctx context.Context, workDir string, segments []assembly.Segment, opts assembly.Options) (string, float64, error) {
	final := filepath.Join(workDir, "final.mp3")
	var buf bytes.Buffer
	for _, seg := range segments {
		data, err := os.ReadFile(seg.Path)
		if err != nil {
			return "", 0, err
		}
		buf.Write(data)
	}
	if err := os.WriteFile(final, buf.Bytes(), 0644); err != nil {
		return "", 0, err
	}
	return final, float64(len(segments)) * 5.0, nil
}

type testStack struct {
	router     *gin.Engine
	jobService jobs.Service
	pool       *workers.WorkerPool
}

func setupStack(t *testing.T, userID string) *testStack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Episode{}, &models.Job{}))

	episodeService := episodes.NewService(episodes.NewRepository(db))
	jobService := jobs.NewService(jobs.NewRepository(db))

	workDir := t.TempDir()
	uploadsDir := t.TempDir()

	orchestrator := generation.NewOrchestrator(generation.Deps{
		Director:     &fakeDirector{},
		Moderator:    moderation.NewService(0.3),
		SynthEmotive: &fakeSynth{},
		SynthBasic:   &fakeSynth{},
		Assembler:    &fakeAssembler{},
		Episodes:     episodeService,
	}, nil, generation.Config{
		WorkDir:    workDir,
		UploadsDir: uploadsDir,
		PublicBase: "/files",
	})

	pool := workers.NewWorkerPool(jobService, 1, 10*time.Millisecond)
	pool.RegisterProcessor(workers.NewGenerationProcessor(orchestrator, jobService))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, pool.Start(ctx))
	t.Cleanup(func() {
		pool.Stop()
		cancel()
	})

	deps := &types.Dependencies{
		EpisodeService: episodeService,
		JobService:     jobService,
		WorkerPool:     pool,
	}

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	noop := func(c *gin.Context) { c.Next() }
	podcastsapi.RegisterRoutes(v1.Group("/podcasts"), deps, noop)
	jobsapi.RegisterRoutes(v1.Group("/jobs"), deps)

	return &testStack{router: router, jobService: jobService, pool: pool}
}

func (s *testStack) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testStack) waitForJob(t *testing.T, id uint) *models.Job {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, err := s.jobService.GetJob(context.Background(), id)
		require.NoError(t, err)
		if job.IsTerminal() {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal state in time")
	return nil
}

func TestGenerationFlowEndToEnd(t *testing.T) {
	stack := setupStack(t, "member-1")

	w := stack.do(http.MethodPost, "/api/v1/podcasts", gin.H{
		"topic":   "The Beatitudes",
		"minutes": 2,
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	var queued struct {
		Status string `json:"status"`
		JobID  uint   `json:"jobId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &queued))
	assert.Equal(t, "queued", queued.Status)
	require.NotZero(t, queued.JobID)

	job := stack.waitForJob(t, queued.JobID)
	require.Equal(t, models.JobStatusCompleted, job.Status)
	require.NotNil(t, job.Result)

	episodeUUID, _ := job.Result["episode_uuid"].(string)
	require.NotEmpty(t, episodeUUID)

	// Job status is visible over the API
	w = stack.do(http.MethodGet, fmt.Sprintf("/api/v1/jobs/%d", queued.JobID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var jobResp types.JobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jobResp))
	assert.Equal(t, "completed", jobResp.Status)

	// The finished episode is readable with audio and transcript
	w = stack.do(http.MethodGet, "/api/v1/podcasts/"+episodeUUID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ep types.EpisodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ep))
	assert.Equal(t, models.EpisodeStatusReady, ep.Status)
	assert.Equal(t, "Walking Through The Beatitudes", ep.Title)
	assert.NotNil(t, ep.AudioURL)
	assert.Contains(t, ep.Transcript, "Welcome back to the show")
	assert.Greater(t, ep.Duration, 0.0)
	assert.Len(t, ep.Hosts, 2)

	// And it shows up in the listing
	w = stack.do(http.MethodGet, "/api/v1/podcasts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Episodes []types.EpisodeResponse `json:"episodes"`
		Total    int64                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Total)
}

func TestGenerationFlowRejectedTranscript(t *testing.T) {
	stack := setupStack(t, "member-2")

	// The fake director echoes the topic into the opening line, so a
	// toxic topic drives the keyword density over the threshold.
	w := stack.do(http.MethodPost, "/api/v1/podcasts", gin.H{
		"topic": strings.TrimSpace(strings.Repeat("hate ", 30)),
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	var queued struct {
		JobID uint `json:"jobId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &queued))

	job := stack.waitForJob(t, queued.JobID)
	assert.Equal(t, models.JobStatusPermanentlyFailed, job.Status)
	assert.Equal(t, "CONTENT_FLAGGED", job.ErrorCode)
	assert.Equal(t, "rejected", job.ErrorType)
}
