package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"cloudwarden/pkg/config"
	"cloudwarden/pkg/findings"
	"cloudwarden/pkg/observability"
)

var rootCmd = newRootCmd()

type configKey struct{}

const emptyReportWarning = "No findings in report."

func newRootCmd() *cobra.Command {
	var cfgFile string
	v := viper.New()

	root := &cobra.Command{
		Use:           "cloudwarden",
		Short:         "CloudWarden renders IAM audit findings as an interactive dashboard",
		Long:          `Loads a JSON report of IAM audit findings and shows it as a filterable dashboard, terminal summary, static HTML page or filtered JSON export.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "cloudwarden"})
				return err
			}
			observability.InitializeLogger(cfg.Logger)
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().StringP("report", "r", "", "path to the JSON audit report (default reports/sample_report.json)")
	root.PersistentFlags().String("renderer", "", "chart renderer: none, svg or text")
	_ = v.BindPFlag("report.path", root.PersistentFlags().Lookup("report"))
	_ = v.BindPFlag("charts.renderer", root.PersistentFlags().Lookup("renderer"))

	root.AddCommand(newServeCmd(v))
	root.AddCommand(newSummaryCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newReportHTMLCmd())

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	defer observability.Sync()
	if err := rootCmd.Execute(); err != nil {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		observability.Sync()
		os.Exit(1)
	}
}

func configFromContext(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(configKey{}).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not initialised")
	}
	return cfg, nil
}

// loadReport loads the configured report. An empty report is reported as a
// warning on stderr and returns a nil report with no error.
func loadReport(cmd *cobra.Command, cfg *config.Config) (*findings.Report, error) {
	logger := observability.GetLogger()

	report, err := findings.LoadFile(cfg.Report.Path)
	if errors.Is(err, findings.ErrEmptyReport) {
		logger.Warn("Report has no findings", zap.String("path", cfg.Report.Path))
		color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), emptyReportWarning)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Report loaded",
		zap.String("path", cfg.Report.Path),
		zap.Int("findings", report.Len()),
		zap.Int("types", report.DistinctTypes().Len()))
	return report, nil
}

func addTypeFlag(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("type", "t", nil, "finding types to include (default all; pass --type= for none)")
}

// selectedTypes returns the --type selection, or every type in report when
// the flag was not given.
func selectedTypes(cmd *cobra.Command, report *findings.Report) findings.TypeSet {
	if !cmd.Flags().Changed("type") {
		return report.DistinctTypes()
	}
	types, _ := cmd.Flags().GetStringSlice("type")
	return findings.NewTypeSet(types...)
}
