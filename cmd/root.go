package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/acolella/linkshort/internal/config"
	"github.com/acolella/linkshort/internal/logger"
)

// Cfg holds the loaded configuration, available to every subcommand.
var Cfg *config.Config

// RootCmd is the base command. Subcommands (run-server, create, stats,
// count, migrate) register themselves through their own init functions,
// which keeps import cycles out of the cmd tree.
var RootCmd = &cobra.Command{
	Use:   "linkshort",
	Short: "A slug-based link shortener with click analytics",
	Long: `linkshort maps short slugs to destination URLs, counts views and
aggregates per-click metadata (browser, OS, country, referrer) into
queryable summaries.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig runs before any command and loads logging + configuration.
func initConfig() {
	logger.Initialize()

	var err error
	Cfg, err = config.LoadConfig()
	if err != nil {
		log.Warn().Err(err).Msg("Problem loading configuration, using defaults")
	}
}
