package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gracecast/gracecast-api/internal/database"
	"github.com/gracecast/gracecast-api/internal/models"
	"github.com/gracecast/gracecast-api/internal/services/generation"
	"github.com/gracecast/gracecast-api/pkg/config"
)

var (
	generateTopic       string
	generateDescription string
	generateMinutes     int
	generateHostCount   int
	generateBed         bool
	generateExplicit    bool
	generateUser        string
)

// generateCmd runs a single generation end to end without the server.
// Useful for local pipeline testing and for scripted batch production.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one podcast episode from the command line",
	Long: `Run the full generation pipeline once and print the finished episode.

The episode is persisted to the configured database and its audio file
is written to the uploads directory, exactly as a queued job would.

Example:
  gracecast-api generate --topic "The parable of the prodigal son"
  gracecast-api generate --topic "Psalm 23" --minutes 5 --hosts 3`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generateTopic, "topic", "", "episode topic (required)")
	generateCmd.Flags().StringVar(&generateDescription, "description", "", "optional episode framing")
	generateCmd.Flags().IntVar(&generateMinutes, "minutes", 2, "target episode length in minutes")
	generateCmd.Flags().IntVar(&generateHostCount, "hosts", 2, "number of hosts")
	generateCmd.Flags().BoolVar(&generateBed, "bed", false, "mix a background music bed when the engine supports it")
	generateCmd.Flags().BoolVar(&generateExplicit, "allow-explicit", false, "skip the content safety gate")
	generateCmd.Flags().StringVar(&generateUser, "user", "cli-user", "user id to attribute the episode to")
	_ = generateCmd.MarkFlagRequired("topic")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
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

	_, orchestrator := buildPipeline(cfg, db)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := cmd.OutOrStdout()
	episode, err := orchestrator.Generate(ctx, generation.Request{
		UserID:        generateUser,
		Topic:         generateTopic,
		Description:   generateDescription,
		Minutes:       generateMinutes,
		HostCount:     generateHostCount,
		AllowExplicit: generateExplicit,
		BackgroundBed: generateBed,
		OnProgress: func(percent int, stage string) {
			fmt.Fprintf(out, "[%3d%%] %s\n", percent, stage)
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Episode:  %s\n", episode.UUID)
	fmt.Fprintf(out, "Title:    %s\n", episode.Title)
	fmt.Fprintf(out, "Status:   %s\n", episode.Status)
	fmt.Fprintf(out, "Engine:   %s\n", episode.Engine)
	fmt.Fprintf(out, "Duration: %.1fs\n", episode.Duration)
	if episode.AudioURL != nil {
		fmt.Fprintf(out, "Audio:    %s\n", *episode.AudioURL)
	}
	if episode.Warning != "" {
		fmt.Fprintf(out, "Warning:  %s\n", episode.Warning)
	}
	return nil
}
