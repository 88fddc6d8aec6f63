package command

// root.go defines the root command for yamdbctl, the operator CLI that works
// directly against the database configured in the environment.

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"yamdb/internal/config"
	"yamdb/internal/database"
	"yamdb/internal/logging"
)

var databaseURL string // overrides DATABASE_URL when set

var rootCmd = &cobra.Command{
	Use:   "yamdbctl",
	Short: "yamdbctl - YaMDb administration tool",
	Long: `yamdbctl runs maintenance tasks against the YaMDb database:
- apply schema migrations
- bulk import the CSV dataset
- create superuser accounts

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "database URL (defaults to DATABASE_URL)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(createSuperuserCmd)
}

// connect loads configuration and opens the database; the caller closes it.
func connect() (*gorm.DB, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	db, err := database.Connect(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return db, logger, nil
}
