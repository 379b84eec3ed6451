package workers

import (
	"context"
	"fmt"
	"log"

	"github.com/gracecast/gracecast-api/internal/models"
	"github.com/gracecast/gracecast-api/internal/services/generation"
	"github.com/gracecast/gracecast-api/internal/services/jobs"
	"github.com/gracecast/gracecast-api/internal/services/voices"
	apperrors "github.com/gracecast/gracecast-api/pkg/errors"
)

// Generator runs the podcast generation pipeline for one request.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (*models.Episode, error)
}

// GenerationProcessor processes episode generation jobs
type GenerationProcessor struct {
	generator  Generator
	jobService jobs.Service
}

// NewGenerationProcessor creates a new generation processor
func NewGenerationProcessor(generator Generator, jobService jobs.Service) *GenerationProcessor {
	return &GenerationProcessor{
		generator:  generator,
		jobService: jobService,
	}
}

// CanProcess returns true if this processor handles the given job type
func (p *GenerationProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeEpisodeGeneration
}

// ProcessJob runs one episode generation job end to end. Content
// rejections come back as rejected errors so the worker never retries
// them; everything else is a generation error eligible for retry.
func (p *GenerationProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	req, err := requestFromPayload(job)
	if err != nil {
		return models.NewSystemError("INVALID_PAYLOAD", "invalid generation job payload", err.Error(), err)
	}

	req.OnProgress = func(percent int, stage string) {
		if percent >= 100 {
			// CompleteJob sets the final progress
			return
		}
		if err := p.jobService.UpdateProgress(ctx, job.ID, percent); err != nil {
			log.Printf("[DEBUG] Failed to update progress for job %d: %v", job.ID, err)
		} else {
			log.Printf("[DEBUG] Job %d: %d%% (%s)", job.ID, percent, stage)
		}
	}

	episode, err := p.generator.Generate(ctx, req)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCodeContentFlagged) {
			return models.NewRejectedError(
				string(apperrors.ErrCodeContentFlagged),
				"generated content was flagged by the safety gate",
				err.Error(), err)
		}
		return models.NewGenerationError(
			string(apperrors.GetCode(err)),
			"episode generation failed",
			err.Error(), err)
	}

	result := models.JobResult{
		"episode_uuid": episode.UUID,
		"status":       episode.Status,
		"engine":       episode.Engine,
		"duration":     episode.Duration,
	}
	if episode.AudioURL != nil {
		result["audio_url"] = *episode.AudioURL
	}

	if err := p.jobService.CompleteJob(ctx, job.ID, result); err != nil {
		return models.NewSystemError("COMPLETE_FAILED", "failed to record job completion", err.Error(), err)
	}
	return nil
}

// requestFromPayload validates and extracts the generation request.
func requestFromPayload(job *models.Job) (generation.Request, error) {
	var req generation.Request

	userID, ok := job.GetPayloadString("user_id")
	if !ok || userID == "" {
		return req, fmt.Errorf("missing user_id")
	}
	topic, ok := job.GetPayloadString("topic")
	if !ok || topic == "" {
		return req, fmt.Errorf("missing topic")
	}

	req.UserID = userID
	req.Topic = topic
	req.Description, _ = job.GetPayloadString("description")
	req.Minutes, _ = job.GetPayloadInt("minutes")
	req.HostCount, _ = job.GetPayloadInt("host_count")
	req.AllowExplicit, _ = job.GetPayloadBool("allow_explicit")
	req.BackgroundBed, _ = job.GetPayloadBool("background_bed")
	req.Hosts = hostsFromPayload(job)

	return req, nil
}

// hostsFromPayload decodes the hosts array. JSON round-tripping through
// the payload column turns it into []interface{} of maps.
func hostsFromPayload(job *models.Job) []voices.HostDescriptor {
	raw, ok := job.GetPayloadValue("hosts")
	if !ok {
		return nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	var hosts []voices.HostDescriptor
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		host := voices.HostDescriptor{}
		if v, ok := m["name"].(string); ok {
			host.Name = v
		}
		if v, ok := m["voice"].(string); ok {
			host.Voice = v
		}
		if v, ok := m["personality"].(string); ok {
			host.Personality = v
		}
		if v, ok := m["style"].(string); ok {
			host.Style = v
		}
		hosts = append(hosts, host)
	}
	return hosts
}
