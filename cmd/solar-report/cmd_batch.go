package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"solar_analyzer/internal/analysis"
	"solar_analyzer/internal/export"
)

// batchResult is the outcome for one site configuration.
type batchResult struct {
	config string
	out    string
	report *analysis.Report
	err    error
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch site.yaml [site.yaml...]",
		Short: "Analyse several sites in parallel",
		Long:  "Analyses every site configuration independently and writes <name>.report.json next to each file.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parallel, _ := cmd.Flags().GetInt("parallel")
			results := runBatch(cmd.Context(), args, parallel)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SITE\tDAYS\tANOMALIES\tANNUAL SAVINGS\tOUTPUT")
			var errs []error
			for _, res := range results {
				if res.err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", res.config, res.err))
					fmt.Fprintf(tw, "%s\t-\t-\t-\tFAILED\n", res.config)
					continue
				}
				r := res.report
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s %.2f\t%s\n",
					r.Site, r.UniqueDays, r.Anomalies.Count(), r.Currency, r.BillImpact.AnnualSavings, res.out)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().Int("parallel", runtime.NumCPU(), "Maximum number of sites analysed at once")
	return cmd
}

// runBatch analyses each configuration with at most parallel sites in
// flight. A failing site does not stop the others.
func runBatch(ctx context.Context, configs []string, parallel int) []batchResult {
	if parallel < 1 {
		parallel = 1
	}
	results := make([]batchResult, len(configs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, path := range configs {
		i, path := i, path
		g.Go(func() error {
			results[i] = analyzeSiteFile(ctx, path)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func analyzeSiteFile(ctx context.Context, path string) batchResult {
	res := batchResult{config: path}
	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}

	s, err := loadSite(ctx, sourceFlags{configPath: path})
	if err != nil {
		res.err = err
		return res
	}
	report, err := s.analyze()
	if err != nil {
		res.err = err
		return res
	}

	data, err := export.BuildJSON(report)
	if err != nil {
		res.err = err
		return res
	}
	res.out = filepath.Join(filepath.Dir(path), s.cfg.Name+".report.json")
	if err := os.WriteFile(res.out, data, 0o644); err != nil {
		res.err = fmt.Errorf("writing report: %w", err)
		return res
	}
	res.report = report
	log.Info().Str("site", s.cfg.Name).Str("path", res.out).Msg("report written")
	return res
}
