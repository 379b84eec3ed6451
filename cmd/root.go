package cmd

import (
	"fmt"
	"os"

	"github.com/gracecast/gracecast-api/pkg/config"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gracecast-api",
	Short: "GraceCast podcast generation API server",
	Long: `GraceCast API - AI podcast generation for church content

This API turns a topic into a finished multi-host podcast episode:
script drafting with a language model, a content safety gate, per-line
speech synthesis, and audio assembly with ffmpeg.

Features:
  • Multi-host script generation with distinct voice personas
  • Toxicity screening and PII redaction before synthesis
  • Engine fallback chain from full production to minimal output
  • Background job queue with per-job progress reporting`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd returns the root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig loads the configuration for commands that need it. Version
// and help output must work without a config file present.
func initConfig() {
	cmd, _, _ := rootCmd.Find(os.Args[1:])
	if cmd != nil && (cmd.Name() == "version" || cmd.Name() == "help") {
		return
	}

	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}
