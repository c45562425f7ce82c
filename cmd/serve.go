package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"cloudwarden/pkg/charts"
	"cloudwarden/pkg/findings"
	"cloudwarden/pkg/observability"
	"cloudwarden/pkg/reports"
	"cloudwarden/pkg/server"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive IAM findings dashboard",
		Long:  `Loads the audit report once and serves the dashboard, JSON API and filtered download until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd)
			if err != nil {
				return err
			}
			logger := observability.GetLogger()
			gin.SetMode(gin.ReleaseMode)

			if err := reports.ValidateEmbeddedTemplates(); err != nil {
				return err
			}
			renderer, err := charts.New(cfg.Charts.Renderer)
			if err != nil {
				return err
			}

			report, err := findings.LoadFile(cfg.Report.Path)
			opts := server.Options{
				Title:           cfg.Report.Title,
				ExportFileName:  cfg.Export.FileName,
				RateLimit:       cfg.Server.RateLimit,
				Burst:           cfg.Server.Burst,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			}

			var srv *server.Server
			switch {
			case err == nil:
				logger.Info("Report loaded", zap.String("path", cfg.Report.Path), zap.Int("findings", report.Len()))
				srv = server.New(report, renderer, logger, opts)
			case errors.Is(err, findings.ErrEmptyReport):
				logger.Warn("Report has no findings", zap.String("path", cfg.Report.Path))
				srv = server.NewEmpty(emptyReportWarning, logger, opts)
			default:
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving IAM dashboard at http://localhost:%s\n", cfg.Server.Port)
			return srv.ListenAndServe(ctx, ":"+cfg.Server.Port)
		},
	}

	cmd.Flags().StringP("port", "p", "8080", "port to serve the dashboard on")
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	return cmd
}
