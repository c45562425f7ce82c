package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "reports/sample_report.json", cfg.Report.Path)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "svg", cfg.Charts.Renderer)
	assert.Equal(t, "filtered_iam_findings.json", cfg.Export.FileName)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "cloudwarden", cfg.Logger.ServiceName)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloudwarden.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
report:
  path: /data/audit.json
server:
  port: "9090"
  shutdown_timeout: 2s
charts:
  renderer: text
logger:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "/data/audit.json", cfg.Report.Path)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "text", cfg.Charts.Renderer)
	assert.Equal(t, "json", cfg.Logger.Format)
	// untouched keys keep their defaults
	assert.Equal(t, "filtered_iam_findings.json", cfg.Export.FileName)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CLOUDWARDEN_REPORT_PATH", "/tmp/other.json")
	t.Setenv("CLOUDWARDEN_CHARTS_RENDERER", "none")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.json", cfg.Report.Path)
	assert.Equal(t, "none", cfg.Charts.Renderer)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Report: ReportConfig{Path: "r.json"},
			Server: ServerConfig{Port: "8080"},
			Charts: ChartsConfig{Renderer: "svg"},
			Export: ExportConfig{FileName: "out.json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no report", func(c *Config) { c.Report.Path = " " }, "report.path"},
		{"bad renderer", func(c *Config) { c.Charts.Renderer = "matplotlib" }, "charts.renderer"},
		{"no port", func(c *Config) { c.Server.Port = "" }, "server.port"},
		{"negative burst", func(c *Config) { c.Server.Burst = -1 }, "server.burst"},
		{"no export name", func(c *Config) { c.Export.FileName = "" }, "export.file_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
