package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FFmpeg wraps ffmpeg and ffprobe functionality
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

// New creates a new FFmpeg instance
func New(ffmpegPath, ffprobePath string, timeout time.Duration) *FFmpeg {
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
	}
}

// ValidateBinaries checks if ffmpeg and ffprobe are available
func (f *FFmpeg) ValidateBinaries() error {
	if _, err := exec.LookPath(f.ffmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, f.ffmpegPath)
	}
	if _, err := exec.LookPath(f.ffprobePath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFprobeNotFound, f.ffprobePath)
	}
	return nil
}

// Silence writes a silent audio file of the given length to path.
// Used as inter-turn padding between dialogue segments.
func (f *FFmpeg) Silence(ctx context.Context, path string, seconds float64) error {
	if seconds <= 0 {
		return fmt.Errorf("silence duration must be positive, got %f", seconds)
	}
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "lavfi",
		"-i", "anullsrc=r=44100:cl=stereo",
		"-t", strconv.FormatFloat(seconds, 'f', 3, 64),
		"-q:a", "9",
		"-y", path,
	}
	return f.run(ctx, "silence_generation", path, args)
}

// Concat concatenates audio files in order into a single output file
// using the concat demuxer with stream copy.
func (f *FFmpeg) Concat(ctx context.Context, files []string, outputFile string) error {
	if len(files) == 0 {
		return fmt.Errorf("no input files to concatenate")
	}

	listPath := filepath.Join(filepath.Dir(outputFile), fmt.Sprintf("concat_%d.txt", time.Now().UnixNano()))
	var list strings.Builder
	for _, file := range files {
		list.WriteString(fmt.Sprintf("file '%s'\n", file))
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	defer os.Remove(listPath)

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-y", outputFile,
	}
	return f.run(ctx, "concat", outputFile, args)
}

// TimelineInput is one audio file placed at an explicit offset on the mix timeline.
type TimelineInput struct {
	Path   string
	Offset float64 // seconds from the start of the mix
}

// MixTimeline places each input at its offset and mixes all tracks into one file.
// Inputs are delayed with adelay and summed with amix; relative placement is
// preserved even when offsets jump around.
func (f *FFmpeg) MixTimeline(ctx context.Context, inputs []TimelineInput, outputFile string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no inputs to mix")
	}

	args := []string{"-hide_banner", "-loglevel", "error"}
	for _, in := range inputs {
		args = append(args, "-i", in.Path)
	}

	var filter strings.Builder
	for i, in := range inputs {
		delayMs := int(in.Offset * 1000)
		if delayMs < 0 {
			delayMs = 0
		}
		fmt.Fprintf(&filter, "[%d:a]adelay=%d:all=1[d%d];", i, delayMs, i)
	}
	for i := range inputs {
		fmt.Fprintf(&filter, "[d%d]", i)
	}
	fmt.Fprintf(&filter, "amix=inputs=%d:normalize=0:dropout_transition=0[out]", len(inputs))

	args = append(args,
		"-filter_complex", filter.String(),
		"-map", "[out]",
		"-q:a", "4",
		"-y", outputFile,
	)
	return f.run(ctx, "timeline_mix", outputFile, args)
}

// Master applies the mastering chain: loudness normalization to a target LUFS,
// gentle dynamic compression, and de-essing of the sibilant band.
func (f *FFmpeg) Master(ctx context.Context, inputFile, outputFile string) error {
	filter := strings.Join([]string{
		"loudnorm=I=-16:TP=-1.5:LRA=11",
		"acompressor=threshold=-18dB:ratio=2.5:attack=20:release=250",
		"deesser=i=0.4",
	}, ",")

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", inputFile,
		"-af", filter,
		"-q:a", "4",
		"-y", outputFile,
	}
	return f.run(ctx, "mastering", outputFile, args)
}

// MixBed mixes a looping background music bed under the speech track.
// The speech channel is band-passed, normalized, and compressed; the bed is
// attenuated to the given volume. Output is trimmed to the speech duration.
// Volume is expected to be pre-clamped by the caller.
func (f *FFmpeg) MixBed(ctx context.Context, speechFile, bedFile string, volume float64, outputFile string) error {
	if _, err := os.Stat(bedFile); err != nil {
		return fmt.Errorf("%w: %s", ErrBedUnavailable, bedFile)
	}

	filter := fmt.Sprintf(
		"[0:a]highpass=f=80,lowpass=f=12000,loudnorm=I=-16:TP=-1.5:LRA=11,acompressor=threshold=-18dB:ratio=2.5[speech];"+
			"[1:a]volume=%s[bed];"+
			"[speech][bed]amix=inputs=2:duration=first:dropout_transition=2[out]",
		strconv.FormatFloat(volume, 'f', 3, 64))

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", speechFile,
		"-stream_loop", "-1",
		"-i", bedFile,
		"-filter_complex", filter,
		"-map", "[out]",
		"-q:a", "4",
		"-y", outputFile,
	}
	return f.run(ctx, "bed_mix", outputFile, args)
}

// run executes ffmpeg with the given args under the configured timeout
func (f *FFmpeg) run(ctx context.Context, operation, file string, args []string) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return NewProcessingError(operation, file, ErrProcessingTimeout, stderr.String())
		}
		return NewProcessingError(operation, file, err, stderr.String())
	}
	return nil
}
