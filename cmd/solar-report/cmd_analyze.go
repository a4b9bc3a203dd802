package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"solar_analyzer/internal/analysis"
	"solar_analyzer/internal/export"
	"solar_analyzer/internal/observability/metrics"
)

func newAnalyzeCmd() *cobra.Command {
	var src sourceFlags
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyse one site and print the report",
		Long:  "Loads the site's hourly records, runs every analysis and writes the report as JSON (default) or a coloured text summary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, src)
		},
	}
	src.register(cmd)
	cmd.Flags().String("format", "json", "Output format (json|text)")
	cmd.Flags().String("out", "", "Write the report to this file instead of stdout")
	return cmd
}

func runAnalyze(cmd *cobra.Command, src sourceFlags) error {
	formatName, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}
	if format != export.FormatJSON && format != export.FormatText {
		return fmt.Errorf("analyze writes json or text, use export for %s", format)
	}

	s, err := loadSite(cmd.Context(), src)
	if err != nil {
		return err
	}
	report, err := s.analyze()
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), out, report, format)
}

// writeReport renders the report to path, or to w when path is empty.
func writeReport(w io.Writer, path string, r *analysis.Report, format export.Format) error {
	start := time.Now()
	data, err := export.Render(r, format)
	if err != nil {
		metrics.ObserveExport(string(format), metrics.ResultError, time.Since(start))
		return err
	}
	metrics.ObserveExport(string(format), metrics.ResultSuccess, time.Since(start))

	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	log.Info().Str("path", path).Str("format", string(format)).Int("bytes", len(data)).Msg("report written")
	return nil
}
