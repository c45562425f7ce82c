package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cloudwarden/pkg/charts"
	"cloudwarden/pkg/observability"
	"cloudwarden/pkg/reports"
)

func newReportHTMLCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "report-html",
		Short: "Generate a static HTML dashboard of the filtered findings",
		Long:  `Writes a self-contained HTML dashboard for the selected finding types, with the filtered JSON embedded in its download link.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd)
			if err != nil {
				return err
			}
			if err := reports.ValidateEmbeddedTemplates(); err != nil {
				return err
			}
			report, err := loadReport(cmd, cfg)
			if err != nil || report == nil {
				return err
			}

			renderer, err := charts.New(cfg.Charts.Renderer)
			if err != nil {
				return err
			}
			view, err := reports.BuildDashboardView(cfg.Report.Title, report, selectedTypes(cmd, report), renderer)
			if err != nil {
				return err
			}
			view.ExportFileName = cfg.Export.FileName

			if err := reports.GenerateHTMLReport(view, output); err != nil {
				return fmt.Errorf("failed to generate HTML report: %w", err)
			}

			observability.GetLogger().Info("HTML report written",
				zap.String("output", output),
				zap.Int("findings", view.Total))
			fmt.Fprintf(cmd.OutOrStdout(), "HTML report written to %s\n", output)
			return nil
		},
	}

	addTypeFlag(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "iam-report.html", "output HTML file")
	return cmd
}
