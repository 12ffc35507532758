package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"salaryboard/internal/engine"
	"salaryboard/internal/exitcode"
	"salaryboard/internal/models"
	"salaryboard/internal/render"
)

var reportOpts struct {
	minYear, maxYear string
	position         string
	chartPath        string
	arrowPath        string
	asJSON           bool
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the percentile and top-salary tables for one selection",
	RunE:  runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportOpts.minYear, "min-year", "", fmt.Sprintf("First year to include (default %d)", models.DefaultMinYear))
	f.StringVar(&reportOpts.maxYear, "max-year", "", fmt.Sprintf("Last year to include (default %d)", models.DefaultMaxYear))
	f.StringVar(&reportOpts.position, "position", "", "Position label or code (default "+models.DefaultPosition().Label+")")
	f.StringVar(&reportOpts.chartPath, "chart", "", "Write the chart to this .png or .svg file")
	f.StringVar(&reportOpts.arrowPath, "arrow", "", "Write the percentile table to this Arrow IPC stream file")
	f.BoolVar(&reportOpts.asJSON, "json", false, "Print the dashboard as JSON instead of tables")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	log, err := loadConfig(cmd)
	if err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.ConfigError)
	}

	sel, err := models.ParseSelection(reportOpts.minYear, reportOpts.maxYear, reportOpts.position)
	if err != nil {
		log.Error().Err(err).Msg("bad selection")
		os.Exit(exitcode.UsageError)
	}

	store, err := engine.Load(cfg.DataPath, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to load data")
		os.Exit(exitcode.LoadError)
	}

	data, err := engine.Compute(store, sel)
	if err != nil {
		log.Error().Err(err).Msg("bad selection")
		os.Exit(exitcode.UsageError)
	}

	if reportOpts.chartPath != "" {
		if err := writeChartFile(reportOpts.chartPath, data); err != nil {
			log.Error().Err(err).Msg("failed to write chart")
			os.Exit(exitcode.RenderError)
		}
	}
	if reportOpts.arrowPath != "" {
		if err := writeArrowFile(reportOpts.arrowPath, data); err != nil {
			log.Error().Err(err).Msg("failed to write arrow stream")
			os.Exit(exitcode.RenderError)
		}
	}

	if err := writeReport(cmd.OutOrStdout(), data, reportOpts.asJSON); err != nil {
		log.Error().Err(err).Msg("failed to write report")
		os.Exit(exitcode.RenderError)
	}
	return nil
}

func writeReport(out io.Writer, data *models.Dashboard, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	return render.WriteReport(out, data)
}

func writeChartFile(path string, data *models.Dashboard) error {
	format, err := render.ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.WriteChart(f, data, cfg.Chart.Width, cfg.Chart.Height, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeArrowFile(path string, data *models.Dashboard) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.WriteArrow(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
