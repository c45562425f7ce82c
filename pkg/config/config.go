// Package config loads dashboard settings from a config file, the
// environment and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"cloudwarden/pkg/charts"
)

// EnvPrefix is prepended to every environment override, e.g. CLOUDWARDEN_REPORT_PATH.
const EnvPrefix = "CLOUDWARDEN"

// Config is the full dashboard configuration.
type Config struct {
	Report ReportConfig `mapstructure:"report" yaml:"report"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Charts ChartsConfig `mapstructure:"charts" yaml:"charts"`
	Export ExportConfig `mapstructure:"export" yaml:"export"`
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
}

type ReportConfig struct {
	Path  string `mapstructure:"path" yaml:"path"`
	Title string `mapstructure:"title" yaml:"title"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port" yaml:"port"`
	RateLimit       float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	Burst           int           `mapstructure:"burst" yaml:"burst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type ChartsConfig struct {
	Renderer string `mapstructure:"renderer" yaml:"renderer"`
}

type ExportConfig struct {
	FileName string `mapstructure:"file_name" yaml:"file_name"`
}

// LoggerConfig drives the zap logger; see the observability package.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("report.path", "reports/sample_report.json")
	v.SetDefault("report.title", "CloudWarden IAM Audit Dashboard")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.burst", 40)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("charts.renderer", charts.KindSVG)
	v.SetDefault("export.file_name", "filtered_iam_findings.json")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "cloudwarden")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
}

// Load reads cfgFile (or ./config.yaml when empty) into v and returns the
// resulting configuration. A missing default config file is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Report.Path) == "" {
		return errors.New("report.path must be set")
	}
	if _, err := charts.New(c.Charts.Renderer); err != nil {
		return fmt.Errorf("charts.renderer: %w", err)
	}
	if c.Server.Port == "" {
		return errors.New("server.port must be set")
	}
	if c.Server.RateLimit < 0 || c.Server.Burst < 0 {
		return errors.New("server.rate_limit and server.burst must not be negative")
	}
	if c.Export.FileName == "" {
		return errors.New("export.file_name must be set")
	}
	return nil
}
