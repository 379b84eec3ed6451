package generation

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gracecast/gracecast-api/internal/models"
	"github.com/gracecast/gracecast-api/internal/services/assembly"
	"github.com/gracecast/gracecast-api/internal/services/episodes"
	"github.com/gracecast/gracecast-api/internal/services/moderation"
	"github.com/gracecast/gracecast-api/internal/services/script"
	"github.com/gracecast/gracecast-api/internal/services/synthesis"
	"github.com/gracecast/gracecast-api/internal/services/voices"
	apperrors "github.com/gracecast/gracecast-api/pkg/errors"
)

// placeholderGreeting is the transcript of last resort when every engine
// fails to produce a script.
const placeholderGreeting = "Welcome to your podcast. We hit a snag preparing this episode, please try generating it again."

// ScriptDirector produces a validated conversation plan for one engine.
type ScriptDirector interface {
	Generate(ctx context.Context, engine string, req script.Request) (*script.Plan, error)
}

// LineSynthesizer turns one script line into audio.
type LineSynthesizer interface {
	DeliveryFor(ctx context.Context, text, emotionTag string) synthesis.Delivery
	Line(ctx context.Context, text, voice string, delivery synthesis.Delivery) ([]byte, bool, error)
}

// AudioAssembler sequences segment files into one episode file.
type AudioAssembler interface {
	Assemble(ctx context.Context, workDir string, segments []assembly.Segment, opts assembly.Options) (string, float64, error)
}

// Config holds orchestrator settings.
type Config struct {
	WorkDir        string
	UploadsDir     string
	PublicBase     string
	PauseSeconds   float64
	BedPath        string
	BedVolume      float64
	WordsPerMinute int
	KeepWorkDirs   bool
}

// Deps are the pipeline collaborators.
type Deps struct {
	Director     ScriptDirector
	Moderator    moderation.Service
	SynthEmotive LineSynthesizer // classifier-backed, used by engines with an emotion model
	SynthBasic   LineSynthesizer // heuristics only
	Assembler    AudioAssembler
	Episodes     episodes.Service
}

// Request describes one podcast generation run.
type Request struct {
	UserID        string
	Topic         string
	Description   string
	Minutes       int
	Hosts         []voices.HostDescriptor
	HostCount     int
	AllowExplicit bool
	BackgroundBed bool
	OnProgress    func(percent int, stage string)
}

// Orchestrator runs the generation pipeline across the engine fallback
// chain and finalizes the artifact.
type Orchestrator struct {
	deps    Deps
	engines []Engine
	config  Config
}

// NewOrchestrator creates an orchestrator. Empty engines gets the default
// chain.
func NewOrchestrator(deps Deps, engines []Engine, config Config) *Orchestrator {
	if len(engines) == 0 {
		engines = DefaultEngines()
	}
	if config.PauseSeconds <= 0 {
		config.PauseSeconds = 0.6
	}
	if config.WordsPerMinute <= 0 {
		config.WordsPerMinute = 130
	}
	return &Orchestrator{
		deps:    deps,
		engines: engines,
		config:  config,
	}
}

// Generate runs the pipeline for one request. Script failures fall through
// the engine chain; exhausted audio paths degrade to a text-only artifact;
// a flagged transcript or a persistence failure returns an error.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*models.Episode, error) {
	if req.Minutes <= 0 {
		req.Minutes = 2
	}
	profiles := voices.BuildProfiles(req.Hosts, req.HostCount)

	workDir, err := o.makeWorkDir()
	if err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}
	if !o.config.KeepWorkDirs {
		defer os.RemoveAll(workDir)
	}

	var lastPlan *script.Plan
	var lastTranscript string

	for i, engine := range o.engines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o.progress(req, 5+i*5, fmt.Sprintf("engine %s: writing script", engine.Name))

		plan, err := o.deps.Director.Generate(ctx, engine.Name, script.Request{
			Topic:    req.Topic,
			Minutes:  req.Minutes,
			Profiles: profiles,
			Options:  engine.ScriptOptions,
		})
		if err != nil {
			log.Printf("[ERROR] Engine %s script generation failed, trying next: %v", engine.Name, err)
			continue
		}
		lastPlan = plan

		transcript := plan.Transcript()
		modResult := o.deps.Moderator.Moderate(transcript, req.AllowExplicit)
		if modResult.Flagged {
			score := 0.0
			if modResult.ToxicityScore != nil {
				score = *modResult.ToxicityScore
			}
			return nil, apperrors.ContentFlaggedError(score, modResult.Labels)
		}
		redact := len(modResult.Redactions) > 0
		lastTranscript = modResult.RedactedText

		o.progress(req, 25, fmt.Sprintf("engine %s: synthesizing %d scenes", engine.Name, len(plan.Scenes)))

		segments, err := o.synthesizeScenes(ctx, workDir, engine, plan, profiles, redact)
		if err != nil {
			return nil, err
		}
		if len(segments) == 0 {
			log.Printf("[ERROR] Engine %s produced no audio segments, trying next", engine.Name)
			continue
		}

		o.progress(req, 70, fmt.Sprintf("engine %s: assembling audio", engine.Name))

		opts := assembly.Options{
			PauseSeconds: o.config.PauseSeconds,
			UseTimeline:  engine.UsesTimeline,
			Master:       engine.Master,
		}
		if req.BackgroundBed && engine.SupportsBackgroundBed && o.config.BedPath != "" {
			opts.BedPath = o.config.BedPath
			opts.BedVolume = o.config.BedVolume
		}

		outputFile, duration, err := o.deps.Assembler.Assemble(ctx, workDir, segments, opts)
		if err != nil {
			log.Printf("[ERROR] Engine %s assembly failed, trying next: %v", engine.Name, err)
			continue
		}

		audioURL, err := o.publish(outputFile)
		if err != nil {
			log.Printf("[ERROR] Engine %s failed to publish audio, trying next: %v", engine.Name, err)
			continue
		}

		if duration <= 0 {
			duration = o.estimateDuration(lastTranscript)
		}

		o.progress(req, 90, "saving episode")
		return o.finalize(ctx, req, episodes.ArtifactInput{
			Title:       plan.Title,
			Description: o.describe(req, plan),
			AudioURL:    &audioURL,
			Transcript:  lastTranscript,
			Duration:    duration,
			Status:      models.EpisodeStatusReady,
			Engine:      engine.Name,
			SceneCount:  len(plan.Scenes),
			Hosts:       hostList(profiles),
		}, profiles)
	}

	// All engines exhausted. A surviving script degrades to a text-only
	// artifact; no script at all degrades to the placeholder greeting.
	if lastPlan != nil {
		log.Printf("[ERROR] All engines failed to produce audio, saving text-only episode")
		o.progress(req, 90, "saving text-only episode")
		return o.finalize(ctx, req, episodes.ArtifactInput{
			Title:       lastPlan.Title,
			Description: o.describe(req, lastPlan),
			Transcript:  lastTranscript,
			Duration:    o.estimateDuration(lastTranscript),
			Status:      models.EpisodeStatusAudioUnavailable,
			Engine:      "none",
			SceneCount:  len(lastPlan.Scenes),
			Warning:     "audio generation failed on every engine; transcript only",
			Hosts:       hostList(profiles),
		}, profiles)
	}

	log.Printf("[ERROR] All engines failed to produce a script, saving placeholder episode")
	o.progress(req, 90, "saving placeholder episode")
	return o.finalize(ctx, req, episodes.ArtifactInput{
		Title:      req.Topic,
		Transcript: placeholderGreeting,
		Duration:   o.estimateDuration(placeholderGreeting),
		Status:     models.EpisodeStatusAudioUnavailable,
		Engine:     "none",
		Warning:    "script generation failed on every engine",
		Hosts:      hostList(profiles),
	}, profiles)
}

// synthesizeScenes produces one audio file per speakable scene, in script
// order. Individual line failures are skipped; only a fully silent engine
// run is reported back as empty.
func (o *Orchestrator) synthesizeScenes(ctx context.Context, workDir string, engine Engine, plan *script.Plan, profiles []voices.VoiceProfile, redact bool) ([]assembly.Segment, error) {
	synth := o.deps.SynthBasic
	if engine.UsesEmotionModel && o.deps.SynthEmotive != nil {
		synth = o.deps.SynthEmotive
	}

	var segments []assembly.Segment
	failures := 0
	for i, scene := range plan.Scenes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		profile := voices.Resolve(scene.Speaker, profiles)
		if profile == nil {
			continue
		}

		text := scene.Text
		if redact {
			text = o.deps.Moderator.Moderate(text, false).RedactedText
		}

		emotionTag := ""
		if engine.ScriptOptions.EmotionTags {
			emotionTag = scene.Emotion
		}
		delivery := synth.DeliveryFor(ctx, text, emotionTag)

		data, skipped, err := synth.Line(ctx, text, profile.Voice, delivery)
		if err != nil {
			failures++
			log.Printf("[ERROR] Synthesis failed for scene %d (%s), skipping line: %v", i, scene.Speaker, err)
			continue
		}
		if skipped {
			continue
		}

		path := filepath.Join(workDir, fmt.Sprintf("seg_%03d_%s.mp3", i, profile.Voice))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("writing segment %d: %w", i, err)
		}
		segments = append(segments, assembly.Segment{Path: path, Offset: scene.T})
	}

	if failures > 0 {
		log.Printf("[DEBUG] Engine %s: %d of %d lines failed synthesis", engine.Name, failures, len(plan.Scenes))
	}
	return segments, nil
}

// finalize persists the artifact. Persistence failures propagate; a
// generated-but-unsaved episode is not a usable result.
func (o *Orchestrator) finalize(ctx context.Context, req Request, input episodes.ArtifactInput, profiles []voices.VoiceProfile) (*models.Episode, error) {
	if input.Title == "" {
		input.Title = req.Topic
	}
	if input.Topic == "" {
		input.Topic = req.Topic
	}
	episode, err := o.deps.Episodes.CreatePodcastArtifact(ctx, req.UserID, input)
	if err != nil {
		return nil, err
	}
	o.progress(req, 100, "done")
	log.Printf("[DEBUG] Episode %s finalized (engine: %s, status: %s, hosts: %d)",
		episode.UUID, input.Engine, episode.Status, len(profiles))
	return episode, nil
}

// publish moves the assembled file into the durable uploads directory and
// returns its public URL.
func (o *Orchestrator) publish(outputFile string) (string, error) {
	if err := os.MkdirAll(o.config.UploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating uploads directory: %w", err)
	}

	name := fmt.Sprintf("episode_%s.mp3", uuid.New().String())
	dest := filepath.Join(o.config.UploadsDir, name)

	data, err := os.ReadFile(outputFile)
	if err != nil {
		return "", fmt.Errorf("reading assembled audio: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("writing published audio: %w", err)
	}

	base := strings.TrimSuffix(o.config.PublicBase, "/")
	return base + "/" + name, nil
}

// estimateDuration derives a positive duration from word count when no
// audio exists to probe.
func (o *Orchestrator) estimateDuration(transcript string) float64 {
	words := len(strings.Fields(transcript))
	seconds := float64(words) / float64(o.config.WordsPerMinute) * 60
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

// makeWorkDir creates a per-job temp directory so concurrent generations
// never collide.
func (o *Orchestrator) makeWorkDir() (string, error) {
	dir := filepath.Join(o.config.WorkDir, fmt.Sprintf("job_%d_%s", time.Now().Unix(), uuid.New().String()[:8]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func (o *Orchestrator) progress(req Request, percent int, stage string) {
	if req.OnProgress != nil {
		req.OnProgress(percent, stage)
	}
}

func (o *Orchestrator) describe(req Request, plan *script.Plan) string {
	if plan.Synopsis != "" {
		return plan.Synopsis
	}
	return req.Description
}

func hostList(profiles []voices.VoiceProfile) models.HostList {
	hosts := make(models.HostList, len(profiles))
	for i, p := range profiles {
		hosts[i] = models.EpisodeHost{
			Name:        p.Name,
			Voice:       p.Voice,
			Personality: p.Personality,
		}
	}
	return hosts
}
