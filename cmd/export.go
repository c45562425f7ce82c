package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cloudwarden/pkg/findings"
	"cloudwarden/pkg/observability"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered findings as JSON",
		Long:  `Writes the findings of the selected types as a JSON array indented by two spaces, keeping every field of the original report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd)
			if err != nil {
				return err
			}
			report, err := loadReport(cmd, cfg)
			if err != nil || report == nil {
				return err
			}

			filtered := report.FilterByTypes(selectedTypes(cmd, report))

			if output == "-" {
				return findings.Export(cmd.OutOrStdout(), filtered)
			}
			if output == "" {
				output = cfg.Export.FileName
			}

			if err := writeExportFile(output, filtered); err != nil {
				return err
			}

			observability.GetLogger().Info("Findings exported",
				zap.String("output", output),
				zap.Int("findings", len(filtered)))
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d findings to %s\n", len(filtered), output)
			return nil
		},
	}

	addTypeFlag(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default export.file_name)")
	return cmd
}

func writeExportFile(path string, filtered []findings.Finding) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := findings.Export(f, filtered); err != nil {
		f.Close()
		return fmt.Errorf("write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return nil
}
