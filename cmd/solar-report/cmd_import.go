package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"solar_analyzer/internal/config"
	"solar_analyzer/internal/store"
	"solar_analyzer/internal/store/postgres"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load hourly CSV exports into PostgreSQL",
		Long:  "Parses the site's hourly CSV files and upserts them into the record table, keyed by site, date and hour.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			databaseURL, _ := cmd.Flags().GetString("database-url")
			siteID, _ := cmd.Flags().GetString("site")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.Data.Dir = dataDir
			}
			if databaseURL != "" {
				cfg.Data.DatabaseURL = databaseURL
			}
			if siteID != "" {
				cfg.Data.SiteID = siteID
			}
			if cfg.Data.DatabaseURL == "" {
				return errors.New("import needs --database-url or data.database_url")
			}

			st := store.New()
			if err := loadFromDir(cfg, st); err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := postgres.Open(ctx, cfg.Data.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := postgres.NewRecordRepository(db, postgres.WithTable(cfg.Data.Table))
			if err := repo.Upsert(ctx, cfg.Data.SiteID, st.Records()); err != nil {
				return fmt.Errorf("importing records: %w", err)
			}
			log.Info().
				Str("site", cfg.Data.SiteID).
				Int("records", st.Len()).
				Strs("files", st.Sources()).
				Msg("records imported")
			return nil
		},
	}
	cmd.Flags().String("config", "", "Site configuration file (YAML or JSON)")
	cmd.Flags().String("data-dir", "", "Directory holding the hourly CSV exports")
	cmd.Flags().String("database-url", "", "PostgreSQL URL")
	cmd.Flags().String("site", "", "Site ID to store the records under")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
