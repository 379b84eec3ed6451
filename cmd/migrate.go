package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gracecast/gracecast-api/internal/database"
	"github.com/gracecast/gracecast-api/internal/models"
	"github.com/gracecast/gracecast-api/pkg/config"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Manage the database schema for the GraceCast API.

Migrations use GORM auto-migration against the configured SQLite
database. Running them is idempotent.

Available subcommands:
  up      - Apply the schema for all registered models
  status  - Show which tables exist`,
}

// migrateUpCmd applies the schema
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply the database schema",
	Long: `Apply the database schema for all registered models.

This creates missing tables and adds missing columns and indexes.
Existing data is preserved.`,
	RunE: runMigrateUp,
}

// migrateStatusCmd shows migration status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long:  `Display which model tables currently exist in the database.`,
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

// migrationModels are all models the schema is derived from.
func migrationModels() []any {
	return []any{
		&models.Episode{},
		&models.Job{},
	}
}

func openDatabase() (*database.DB, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	return db, nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.AutoMigrate(migrationModels()...); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Database Migration Status")

	migrator := db.DB.Migrator()
	for _, model := range migrationModels() {
		status := "missing"
		if migrator.HasTable(model) {
			status = "present"
		}
		fmt.Fprintf(out, "  %-40T %s\n", model, status)
	}

	return nil
}
