package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gracecast/gracecast-api/api"
	authapi "github.com/gracecast/gracecast-api/api/auth"
	"github.com/gracecast/gracecast-api/api/types"
	"github.com/gracecast/gracecast-api/internal/database"
	"github.com/gracecast/gracecast-api/internal/models"
	"github.com/gracecast/gracecast-api/internal/services/assembly"
	"github.com/gracecast/gracecast-api/internal/services/auth"
	"github.com/gracecast/gracecast-api/internal/services/cleanup"
	"github.com/gracecast/gracecast-api/internal/services/emotion"
	"github.com/gracecast/gracecast-api/internal/services/episodes"
	"github.com/gracecast/gracecast-api/internal/services/generation"
	"github.com/gracecast/gracecast-api/internal/services/jobs"
	"github.com/gracecast/gracecast-api/internal/services/llm"
	"github.com/gracecast/gracecast-api/internal/services/moderation"
	"github.com/gracecast/gracecast-api/internal/services/script"
	"github.com/gracecast/gracecast-api/internal/services/synthesis"
	"github.com/gracecast/gracecast-api/internal/services/tts"
	"github.com/gracecast/gracecast-api/internal/services/workers"
	"github.com/gracecast/gracecast-api/pkg/config"
	"github.com/gracecast/gracecast-api/pkg/download"
	"github.com/gracecast/gracecast-api/pkg/ffmpeg"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the GraceCast API server with the configured settings.

The server accepts podcast generation requests, queues them as background
jobs, and serves finished episode audio and transcripts.

Example:
  gracecast-api serve
  gracecast-api serve --port 9090
  gracecast-api serve --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if serverHost == "" {
		serverHost = cfg.Server.Host
	}
	if serverPort == 0 {
		serverPort = cfg.Server.Port
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.Episode{}, &models.Job{}); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	if err := os.MkdirAll(cfg.Storage.WorkDir, 0755); err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}
	if err := os.MkdirAll(cfg.Storage.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	deps, orchestrator := buildPipeline(cfg, db)

	authHandler, err := buildAuthHandler(cfg)
	if err != nil {
		return err
	}

	// Reclaim disk from abandoned runs and prune terminal jobs. A work
	// directory twice the job timeout old cannot belong to a live job.
	janitor := cleanup.NewService(cfg.Storage.WorkDir, 2*cfg.Processing.JobTimeout,
		time.Hour, cfg.Processing.JobRetentionDays, deps.JobService)

	// Background workers pick up queued generation jobs
	pool := workers.NewWorkerPool(deps.JobService, cfg.Processing.Workers, cfg.Processing.PollInterval)
	pool.RegisterProcessor(workers.NewGenerationProcessor(orchestrator, deps.JobService))
	deps.WorkerPool = pool

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	if err := pool.Start(workerCtx); err != nil {
		return fmt.Errorf("starting worker pool: %w", err)
	}
	janitor.Start(workerCtx)
	defer janitor.Stop()

	server := api.NewServer(fmt.Sprintf("%s:%d", serverHost, serverPort))
	server.SetDatabase(db)
	server.SetDependencies(deps)
	server.SetAuthHandler(authHandler)
	server.SetFileServing(cfg.Storage.UploadsDir, cfg.Storage.PublicBase)
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	fmt.Printf("GraceCast API listening on %s:%d\n", serverHost, serverPort)

	select {
	case <-stop:
		fmt.Println("\nShutting down server...")
	case err := <-serverErr:
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		fmt.Println("Shutting down server...")
	}

	pool.Stop()
	cancelWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server forced to shutdown: %v\n", err)
		return err
	}

	fmt.Println("Server gracefully stopped")
	return nil
}

// buildPipeline wires the generation pipeline from configuration.
func buildPipeline(cfg *config.Config, db *database.DB) (*types.Dependencies, *generation.Orchestrator) {
	episodeService := episodes.NewService(episodes.NewRepository(db.DB))
	jobService := jobs.NewService(jobs.NewRepository(db.DB))

	chatClient := llm.NewClient(llm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.ChatModel,
		Timeout: cfg.OpenAI.ChatTimeout,
	}, nil)
	speechClient := tts.NewClient(tts.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.TTSModel,
		Timeout: cfg.OpenAI.TTSTimeout,
	}, nil)

	var classifier emotion.Classifier
	if cfg.Emotion.Enabled && cfg.Emotion.Endpoint != "" {
		classifier = emotion.NewHTTPClassifier(emotion.Config{
			Endpoint: cfg.Emotion.Endpoint,
			APIKey:   cfg.Emotion.APIKey,
			Timeout:  cfg.Emotion.Timeout,
		}, nil)
	}

	director := script.NewDirector(chatClient, cfg.Pipeline.WordsPerMinute, cfg.Pipeline.ScenesPerMinute)
	moderator := moderation.NewServiceWithKeywords(cfg.Moderation.ToxicityThreshold, cfg.Moderation.ExtraKeywords)

	audioTool := ffmpeg.New(cfg.Processing.FFmpegPath, cfg.Processing.FFprobePath, cfg.Processing.FFmpegTimeout)
	if err := audioTool.ValidateBinaries(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v - audio assembly will fail until ffmpeg is installed\n", err)
	}
	assembler := assembly.NewAssembler(audioTool)

	bedPath := resolveBedPath(cfg)

	orchestrator := generation.NewOrchestrator(generation.Deps{
		Director:     director,
		Moderator:    moderator,
		SynthEmotive: synthesis.NewSynthesizer(speechClient, classifier),
		SynthBasic:   synthesis.NewSynthesizer(speechClient, nil),
		Assembler:    assembler,
		Episodes:     episodeService,
	}, nil, generation.Config{
		WorkDir:        cfg.Storage.WorkDir,
		UploadsDir:     cfg.Storage.UploadsDir,
		PublicBase:     cfg.Storage.PublicBase,
		PauseSeconds:   cfg.Pipeline.PauseSeconds,
		BedPath:        bedPath,
		BedVolume:      cfg.Pipeline.BedVolume,
		WordsPerMinute: cfg.Pipeline.WordsPerMinute,
	})

	deps := &types.Dependencies{
		DB:             db,
		EpisodeService: episodeService,
		JobService:     jobService,
	}
	return deps, orchestrator
}

// resolveBedPath turns a remote bed URL into a locally cached file.
// Episodes degrade to speech-only when the bed cannot be fetched, so a
// failure here only logs.
func resolveBedPath(cfg *config.Config) string {
	bedPath := cfg.Pipeline.BedPath
	if bedPath == "" || !download.IsRemote(bedPath) {
		return bedPath
	}

	fetcher := download.NewFetcher(download.DefaultOptions(filepath.Join(cfg.Storage.WorkDir, "assets")))
	local, err := fetcher.Fetch(context.Background(), bedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not fetch background bed %s: %v\n", bedPath, err)
		return ""
	}
	return local
}

// buildAuthHandler configures JWT validation. A missing secret is only
// tolerated when dev auth bypass is explicitly enabled.
func buildAuthHandler(cfg *config.Config) (*authapi.Handler, error) {
	secret := cfg.Auth.JWTSecret
	devSkip := cfg.Auth.DevToken == "SKIP_AUTH" && cfg.Environment != "production"
	if secret == "" {
		if !devSkip {
			return nil, fmt.Errorf("auth.jwt_secret is required (or set auth.dev_token to SKIP_AUTH outside production)")
		}
		secret = "dev-only-insecure-secret"
		fmt.Println("Warning: running with auth bypass enabled - do not expose this server")
	}

	authService, err := auth.NewService(secret)
	if err != nil {
		return nil, fmt.Errorf("creating auth service: %w", err)
	}

	handler := authapi.NewHandler(authService)
	if cfg.Auth.DevToken != "" && cfg.Environment != "production" {
		handler.SetDevAuth(true, cfg.Auth.DevToken)
	}
	return handler, nil
}
