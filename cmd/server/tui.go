package main

import (
	"os"

	"github.com/spf13/cobra"

	"salaryboard/internal/engine"
	"salaryboard/internal/exitcode"
	"salaryboard/internal/models"
	"salaryboard/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Explore the dashboard interactively in the terminal",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	log, err := loadConfig(cmd)
	if err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.ConfigError)
	}

	store, err := engine.Load(cfg.DataPath, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to load data")
		os.Exit(exitcode.LoadError)
	}
	return tui.Run(store, models.DefaultSelection())
}
