// Package main provides the entry point for the Career Guidance HTTP API server
// and its offline tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/career-guidance/internal/config"
	"github.com/jonathan/career-guidance/internal/logging"
)

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "career_agent",
		Short: "Career Guidance HTTP API Server",
		Long: "Career Guidance recommends careers from a user's skills and interests, " +
			"reports skill gaps against a chosen career and suggests learning resources via REST API.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (defaults to CONFIG_PATH or ./config.yaml)")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		logging.Init(logging.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Caller: cfg.Log.Caller,
		})
		return cfg, nil
	}

	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newSeedCmd(load),
		newCatalogCmd(),
		newRecommendCmd(),
		newSkillGapCmd(),
	)
	return root
}

// configLoader resolves the configuration and initializes logging
type configLoader func() (*config.Config, error)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
