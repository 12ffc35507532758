package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"salaryboard/internal/config"
	"salaryboard/internal/logging"
)

var (
	cfg        = config.Default()
	configPath string
)

var rootCmd = &cobra.Command{
	Use:          "salaryboard",
	Short:        "Major League Baseball salary percentile dashboard",
	Long:         "Loads a table of historical salaries and serves percentile charts and top-salary tables per position and year range.",
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&cfg.DataPath, "data", cfg.DataPath, "Path to the salary table (.csv or .parquet)")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text, json or auto")
}

// loadConfig merges the config file under any flags set on the command line.
func loadConfig(cmd *cobra.Command) (zerolog.Logger, error) {
	if configPath != "" {
		flags := cfg
		if err := cfg.LoadFromFile(configPath); err != nil {
			return logging.Setup(cfg.LogFormat), err
		}
		fs := cmd.Flags()
		if fs.Changed("data") {
			cfg.DataPath = flags.DataPath
		}
		if fs.Changed("log-format") {
			cfg.LogFormat = flags.LogFormat
		}
		if fs.Changed("addr") {
			cfg.Addr = flags.Addr
		}
		if fs.Changed("rate-limit") {
			cfg.RateLimit = flags.RateLimit
		}
	}
	if err := cfg.Validate(); err != nil {
		return logging.Setup("text"), err
	}
	return logging.Setup(cfg.LogFormat), nil
}
