package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"solar_analyzer/internal/export"
)

func newExportCmd() *cobra.Command {
	var src sourceFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Analyse one site and export the report",
		Long:  "Runs the analysis and writes the report as an XLSX workbook, a PDF summary, JSON or text.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")

			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			if out == "" && format.Binary() {
				return fmt.Errorf("refusing to write %s to stdout, use --out", format)
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
		},
	}
	src.register(cmd)
	cmd.Flags().String("format", "xlsx", "Export format (xlsx|pdf|json|text)")
	cmd.Flags().String("out", "", "Output file")
	return cmd
}
