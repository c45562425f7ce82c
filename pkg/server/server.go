// Package server serves the IAM audit dashboard, its JSON API and the
// filtered export over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cloudwarden/pkg/charts"
	"cloudwarden/pkg/findings"
	"cloudwarden/pkg/reports"
)

// Options tunes the server; zero values fall back to defaults.
type Options struct {
	Title           string
	ExportFileName  string
	RateLimit       float64
	Burst           int
	ShutdownTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "CloudWarden IAM Audit Dashboard"
	}
	if o.ExportFileName == "" {
		o.ExportFileName = reports.DefaultExportFileName
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 5 * time.Second
	}
	return o
}

// Server renders views of a single read-only report. Every request builds
// its own view from the filter in its query string.
type Server struct {
	report   *findings.Report
	warning  string
	renderer charts.Renderer
	logger   *zap.Logger
	opts     Options
	engine   *gin.Engine
}

// New returns a server for report.
func New(report *findings.Report, renderer charts.Renderer, logger *zap.Logger, opts Options) *Server {
	s := &Server{
		report:   report,
		renderer: renderer,
		logger:   logger,
		opts:     opts.withDefaults(),
	}
	s.engine = s.setupRouter()
	return s
}

// NewEmpty returns a server that only shows warning, for reports with no
// findings.
func NewEmpty(warning string, logger *zap.Logger, opts Options) *Server {
	s := &Server{
		warning: warning,
		logger:  logger,
		opts:    opts.withDefaults(),
	}
	s.engine = s.setupRouter()
	return s
}

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(Logger(s.logger))
	router.Use(RateLimiter(s.logger, s.opts.RateLimit, s.opts.Burst))

	router.GET("/healthz", s.health)
	router.GET("/", s.dashboard)
	router.GET("/download", s.download)

	api := router.Group("/api/v1")
	{
		api.GET("/types", s.listTypes)
		api.GET("/findings", s.listFindings)
		api.GET("/summary", s.summary)
	}

	return router
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve handles connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting dashboard server", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down dashboard server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	s.logger.Info("Dashboard server exited")
	return nil
}
