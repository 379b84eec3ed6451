// Package assembly sequences synthesized audio segments into one episode
// file: inserted silences or timeline mixing, optional mastering, and an
// optional background music bed.
package assembly

import (
	"context"
	"fmt"
	"log"
	"math"
	"path/filepath"

	apperrors "github.com/gracecast/gracecast-api/pkg/errors"
	"github.com/gracecast/gracecast-api/pkg/ffmpeg"
)

// AudioTool is the subset of the ffmpeg wrapper the assembler needs.
type AudioTool interface {
	Silence(ctx context.Context, path string, seconds float64) error
	Concat(ctx context.Context, files []string, outputFile string) error
	MixTimeline(ctx context.Context, inputs []ffmpeg.TimelineInput, outputFile string) error
	Master(ctx context.Context, inputFile, outputFile string) error
	MixBed(ctx context.Context, speechFile, bedFile string, volume float64, outputFile string) error
	Duration(ctx context.Context, path string) (float64, error)
}

// Segment is one synthesized audio file awaiting assembly. Offset is the
// script timestamp used only in timeline mode; Duration may be zero when
// unknown.
type Segment struct {
	Path     string
	Offset   float64
	Duration float64
}

// Options selects the assembly strategy for one episode.
type Options struct {
	PauseSeconds float64
	UseTimeline  bool
	Master       bool
	BedPath      string
	BedVolume    float64
}

// Assembler builds episode audio from segments.
type Assembler struct {
	tool AudioTool
}

// NewAssembler creates an assembler over the given audio tool.
func NewAssembler(tool AudioTool) *Assembler {
	return &Assembler{tool: tool}
}

// ClampBedVolume forces the bed volume into the 1%-20% range. Garbage
// values (NaN, infinities, zero) get safe substitutes instead of erroring.
func ClampBedVolume(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0.10
	case v < 0.01:
		return 0.01
	case v > 0.20:
		return 0.20
	default:
		return v
	}
}

// Assemble produces a single audio file from the segments, in order, and
// returns its path and duration in seconds. Segments are never reordered;
// offsets only matter in timeline mode. Bed mixing and duration probing
// failures degrade rather than abort.
func (a *Assembler) Assemble(ctx context.Context, workDir string, segments []Segment, opts Options) (string, float64, error) {
	if len(segments) == 0 {
		return "", 0, apperrors.AssemblyError("sequencing", fmt.Errorf("no segments to assemble"))
	}
	if opts.PauseSeconds <= 0 {
		opts.PauseSeconds = 0.6
	}

	speechFile := filepath.Join(workDir, "speech.mp3")
	var err error
	if opts.UseTimeline {
		err = a.assembleTimeline(ctx, segments, speechFile)
	} else {
		err = a.assembleConcat(ctx, workDir, segments, opts.PauseSeconds, speechFile)
	}
	if err != nil {
		return "", 0, apperrors.AssemblyError("sequencing", err)
	}

	output := speechFile
	if opts.Master {
		mastered := filepath.Join(workDir, "mastered.mp3")
		if err := a.tool.Master(ctx, output, mastered); err != nil {
			return "", 0, apperrors.AssemblyError("mastering", err)
		}
		output = mastered
	}

	if opts.BedPath != "" {
		mixed := filepath.Join(workDir, "with_bed.mp3")
		volume := ClampBedVolume(opts.BedVolume)
		if err := a.tool.MixBed(ctx, output, opts.BedPath, volume, mixed); err != nil {
			log.Printf("[ERROR] Background bed mixing failed, keeping speech-only audio: %v", err)
		} else {
			output = mixed
		}
	}

	duration := a.measure(ctx, output, segments, opts.PauseSeconds)
	return output, duration, nil
}

func (a *Assembler) assembleConcat(ctx context.Context, workDir string, segments []Segment, pauseSeconds float64, outputFile string) error {
	silenceFile := filepath.Join(workDir, "silence.mp3")
	if err := a.tool.Silence(ctx, silenceFile, pauseSeconds); err != nil {
		return fmt.Errorf("generating pause silence: %w", err)
	}

	files := make([]string, 0, len(segments)*2-1)
	for i, seg := range segments {
		if i > 0 {
			files = append(files, silenceFile)
		}
		files = append(files, seg.Path)
	}
	return a.tool.Concat(ctx, files, outputFile)
}

func (a *Assembler) assembleTimeline(ctx context.Context, segments []Segment, outputFile string) error {
	inputs := make([]ffmpeg.TimelineInput, len(segments))
	for i, seg := range segments {
		offset := seg.Offset
		if offset < 0 {
			offset = 0
		}
		inputs[i] = ffmpeg.TimelineInput{Path: seg.Path, Offset: offset}
	}
	return a.tool.MixTimeline(ctx, inputs, outputFile)
}

// measure probes the output duration, falling back to summed segment
// durations plus pauses when probing fails.
func (a *Assembler) measure(ctx context.Context, output string, segments []Segment, pauseSeconds float64) float64 {
	if d, err := a.tool.Duration(ctx, output); err == nil && d > 0 {
		return d
	} else if err != nil {
		log.Printf("[DEBUG] Duration probe failed for %s, estimating from segments: %v", output, err)
	}

	total := 0.0
	for _, seg := range segments {
		total += seg.Duration
	}
	total += pauseSeconds * float64(len(segments)-1)
	return total
}
