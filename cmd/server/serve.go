package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"salaryboard/internal/api"
	"salaryboard/internal/engine"
	"salaryboard/internal/exitcode"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	serveCmd.Flags().Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Requests per second per client (0 disables)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := loadConfig(cmd)
	if err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.ConfigError)
	}

	// The API is live immediately and answers 503 until the data is in.
	h := api.NewHandler(nil, cfg.Chart, log)
	e := api.NewServer(h, cfg, log)

	go func() {
		log.Info().Str("path", cfg.DataPath).Msg("loading data in background")
		t0 := time.Now()

		store, err := engine.Load(cfg.DataPath, log)
		if err != nil {
			log.Error().Err(err).Msg("failed to load data")
			os.Exit(exitcode.LoadError)
		}
		h.SetData(store)

		log.Info().Dur("elapsed", time.Since(t0)).Msg("data loaded, API is fully ready")
	}()

	log.Info().Str("addr", cfg.Addr).Msg("server ready (data loading in background)")
	if err := e.Start(cfg.Addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(exitcode.ServeError)
	}
	return nil
}
