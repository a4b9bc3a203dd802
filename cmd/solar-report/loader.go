package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"solar_analyzer/internal/analysis"
	"solar_analyzer/internal/config"
	"solar_analyzer/internal/ingest"
	"solar_analyzer/internal/model"
	"solar_analyzer/internal/observability/metrics"
	"solar_analyzer/internal/store"
	"solar_analyzer/internal/store/postgres"
)

// sourceFlags selects a site configuration and where its records come from.
type sourceFlags struct {
	configPath  string
	dataDir     string
	databaseURL string
	siteID      string
	from        string
	to          string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Site configuration file (YAML or JSON)")
	cmd.Flags().StringVar(&f.dataDir, "data-dir", "", "Directory holding the hourly CSV exports (overrides data.dir)")
	cmd.Flags().StringVar(&f.databaseURL, "database-url", "", "PostgreSQL URL to load records from instead of CSV files")
	cmd.Flags().StringVar(&f.siteID, "site", "", "Site ID in the database (defaults to the config name)")
	cmd.Flags().StringVar(&f.from, "from", "", "First date to analyse (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Last date to analyse (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("config")
}

// site is a loaded configuration together with its records.
type site struct {
	cfg   *model.SiteConfig
	store *store.Store
	from  string
	to    string
}

func loadSite(ctx context.Context, f sourceFlags) (*site, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.dataDir != "" {
		cfg.Data.Dir = f.dataDir
	}
	if f.databaseURL != "" {
		cfg.Data.DatabaseURL = f.databaseURL
	}
	if f.siteID != "" {
		cfg.Data.SiteID = f.siteID
	}
	for _, d := range []string{f.from, f.to} {
		if d == "" {
			continue
		}
		if _, err := model.ParseDate(d); err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", d, err)
		}
	}

	st := store.New()
	if cfg.Data.DatabaseURL != "" {
		err = loadFromPostgres(ctx, cfg, st, f.from, f.to)
	} else {
		err = loadFromDir(cfg, st)
	}
	if err != nil {
		return nil, err
	}

	dr, _ := st.DateRange()
	log.Info().
		Str("site", cfg.Name).
		Int("records", st.Len()).
		Int("sources", len(st.Sources())).
		Str("from", dr.Start).
		Str("to", dr.End).
		Msg("records loaded")
	return &site{cfg: cfg, store: st, from: f.from, to: f.to}, nil
}

func loadFromDir(cfg *model.SiteConfig, st *store.Store) error {
	dir := cfg.Data.Dir
	if dir == "" {
		dir = "."
	}
	files, err := ingest.LoadDir(dir, cfg.Data.Glob)
	if err != nil {
		return err
	}
	for _, f := range files {
		log.Debug().Str("file", f.Name).Int("records", len(f.Records)).Msg("parsed hourly export")
		st.AddRecords(f.Name, f.Records)
		metrics.AddRecordsLoaded("csv", len(f.Records))
	}
	return nil
}

func loadFromPostgres(ctx context.Context, cfg *model.SiteConfig, st *store.Store, from, to string) error {
	db, err := postgres.Open(ctx, cfg.Data.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := postgres.NewRecordRepository(db, postgres.WithTable(cfg.Data.Table))
	records, err := repo.Load(ctx, cfg.Data.SiteID, from, to)
	if err != nil {
		return err
	}
	st.AddRecords(postgres.Source(cfg.Data.SiteID), records)
	metrics.AddRecordsLoaded("postgres", len(records))
	return nil
}

// analyze runs the engine over the site's records in the selected range.
func (s *site) analyze() (*analysis.Report, error) {
	a := analysis.New(*s.cfg,
		analysis.WithObserver(analysis.Observers{
			analysis.NewLogObserver(log.Logger.With().Str("site", s.cfg.Name).Logger()),
			metrics.Observer{},
		}),
		analysis.WithFiles(s.store.Sources()),
	)

	start := time.Now()
	report, err := a.Analyze(s.store.RecordsInRange(s.from, s.to))
	if err != nil {
		metrics.ObserveAnalysis(metrics.ResultError, time.Since(start))
		return nil, fmt.Errorf("analysing %s: %w", s.cfg.Name, err)
	}
	metrics.ObserveAnalysis(metrics.ResultSuccess, time.Since(start))

	logAnomalies(s.cfg.Name, report)
	return report, nil
}

func logAnomalies(siteName string, r *analysis.Report) {
	for _, a := range r.Anomalies.PV {
		log.Warn().Str("site", siteName).Str("date", a.Date).Str("kind", "pv").
			Float64("daily_pv", a.DailyPV).Float64("expected", a.Expected).
			Float64("deviation_pct", a.DeviationPct).Msg("anomaly")
	}
	for _, a := range r.Anomalies.Load {
		log.Warn().Str("site", siteName).Str("date", a.Date).Str("kind", "load").
			Float64("daily_load", a.DailyLoad).Float64("expected_mean", a.ExpectedMean).
			Float64("expected_std", a.ExpectedStd).Msg("anomaly")
	}
	for _, a := range r.Anomalies.Battery {
		log.Warn().Str("site", siteName).Str("date", a.Date).Str("kind", "battery").
			Float64("efficiency", a.Efficiency).Msg("anomaly")
	}
	if r.ROI != nil {
		if err := r.ROI.Err(); err != nil {
			log.Warn().Str("site", siteName).Err(err).Msg("roi not computed")
		}
	}
}
