package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cloudwarden/pkg/charts"
	"cloudwarden/pkg/reports"
)

func newSummaryCmd() *cobra.Command {
	var showTable bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print finding metrics, charts and table to the terminal",
		Long:  `Prints total findings, affected users, per-type charts and the findings table for the selected finding types.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd)
			if err != nil {
				return err
			}
			report, err := loadReport(cmd, cfg)
			if err != nil || report == nil {
				return err
			}

			renderer, err := charts.New(cfg.Charts.Renderer, charts.WithColor(!color.NoColor))
			if err != nil {
				return err
			}
			// svg means nothing on a terminal; draw glyph charts instead
			if renderer.Name() == charts.KindSVG {
				if renderer, err = charts.New(charts.KindText, charts.WithColor(!color.NoColor)); err != nil {
					return err
				}
			}

			view, err := reports.BuildDashboardView(cfg.Report.Title, report, selectedTypes(cmd, report), renderer)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := reports.PrintSummary(out, view, renderer); err != nil {
				return err
			}
			if showTable {
				reports.PrintFindingsTable(out, view)
			}
			return nil
		},
	}

	addTypeFlag(cmd)
	cmd.Flags().BoolVar(&showTable, "table", true, "print the findings table")
	return cmd
}
