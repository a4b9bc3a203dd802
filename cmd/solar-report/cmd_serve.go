package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"solar_analyzer/internal/server"
	"solar_analyzer/internal/ws"
)

func newServeCmd() *cobra.Command {
	var src sourceFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports over HTTP and WebSocket",
		Long:  "Loads one site and serves /health, /report, /analyze, /metrics and the /ws progress stream.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			analyzeOnStart, _ := cmd.Flags().GetBool("analyze-on-start")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := loadSite(ctx, src)
			if err != nil {
				return err
			}

			hub := ws.NewHub()
			logger := log.Logger.With().Str("site", s.cfg.Name).Logger()
			svc := server.NewService(s.store, *s.cfg, hub, logger, server.WithDateRange(s.from, s.to))
			if analyzeOnStart {
				if _, err := svc.Analyze(ctx, nil); err != nil {
					log.Warn().Err(err).Msg("initial analysis failed")
				}
			}

			cfg := server.DefaultConfig()
			cfg.Addr = addr
			return server.New(cfg, svc, hub, logger).Run(ctx)
		},
	}
	src.register(cmd)
	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().Bool("analyze-on-start", true, "Run one analysis before serving")
	return cmd
}
