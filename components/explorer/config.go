package explorer

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config drives the datascope server. Loaded from YAML; every field has
// a sensible default so an empty document is valid.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Limits LimitsConfig `yaml:"limits"`
	Chart  ChartConfig  `yaml:"chart"`

	Source string `yaml:"-"`
}

// ServerConfig covers the HTTP listener.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	BasePath       string `yaml:"base_path"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// LimitsConfig bounds how much data the page works with per cycle.
type LimitsConfig struct {
	VizRowLimit int `yaml:"viz_row_limit"`
	PreviewRows int `yaml:"preview_rows"`
}

// ChartConfig covers chart rendering.
type ChartConfig struct {
	Theme      string `yaml:"theme"`
	AssetsHost string `yaml:"assets_host"`
	CacheTTL   string `yaml:"cache_ttl"`
	PieSlices  int    `yaml:"pie_slices"`

	parsedTTL time.Duration
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads a config file from disk.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("explorer: open config %s: %w", path, err)
	}
	defer f.Close()
	cfg, err := DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("explorer: decode config %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// DecodeConfig reads a config document from any reader.
func DecodeConfig(r io.Reader) (*Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		if err == io.EOF {
			cfg = Config{}
		} else {
			return nil, fmt.Errorf("explorer: parse config: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("explorer: config server.addr is required")
	}
	if c.Limits.VizRowLimit <= 0 {
		return fmt.Errorf("explorer: config limits.viz_row_limit must be positive")
	}
	if c.Limits.PreviewRows <= 0 {
		return fmt.Errorf("explorer: config limits.preview_rows must be positive")
	}
	if c.Chart.CacheTTL != "" {
		ttl, err := time.ParseDuration(c.Chart.CacheTTL)
		if err != nil {
			return fmt.Errorf("explorer: config chart.cache_ttl: %w", err)
		}
		c.Chart.parsedTTL = ttl
	}
	return nil
}

// TTL returns the parsed chart cache duration.
func (c *ChartConfig) TTL() time.Duration {
	if c.parsedTTL > 0 {
		return c.parsedTTL
	}
	return 5 * time.Minute
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = "/explore"
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = 32 << 20
	}
	if c.Limits.VizRowLimit <= 0 {
		c.Limits.VizRowLimit = DefaultVizRowLimit
	}
	if c.Limits.PreviewRows <= 0 {
		c.Limits.PreviewRows = DefaultPreviewRows
	}
	if c.Chart.PieSlices <= 0 {
		c.Chart.PieSlices = PieTopN
	}
}
