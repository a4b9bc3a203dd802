package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"solar_analyzer/internal/observability/metrics"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	metrics.Init()

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("solar-report failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "solar-report",
		Short:   "Analyse hourly solar and battery telemetry",
		Version: version,
		Long: `solar-report turns hourly PV, battery, grid and load telemetry into a
report: monthly totals, EV-day detection, sizing, battery health, anomalies,
bill impact, ROI and annual projections.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			jsonLogs, _ := cmd.Flags().GetBool("log-json")
			debug, _ := cmd.Flags().GetBool("debug")
			setupLogging(jsonLogs, debug)
		},
	}

	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newExportCmd(),
		newBatchCmd(),
		newServeCmd(),
		newImportCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func setupLogging(jsonLogs, debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if jsonLogs {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write([]byte("solar-report " + version + "\n"))
			return err
		},
	}
}
