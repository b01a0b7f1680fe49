// Package config provides YAML-based configuration for the floor map
// generator and dashboard server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Campus   CampusConfig   `yaml:"campus"`
	SVG      SVGConfig      `yaml:"svg"`
	Advanced AdvancedConfig `yaml:"advanced"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bind_address"`
	EnableCORS   bool   `yaml:"enable_cors"`
	AllowOrigins string `yaml:"allow_origins"`
	ReadTimeout  int    `yaml:"read_timeout_seconds"`
	WriteTimeout int    `yaml:"write_timeout_seconds"`
	IdleTimeout  int    `yaml:"idle_timeout_seconds"`
	BodyLimit    string `yaml:"body_limit"`
}

// StorageConfig contains file layout settings. The generator writes SVGs
// into ProcessedDirectory; the server only reads from it.
type StorageConfig struct {
	DataDirectory      string `yaml:"data_directory"`
	FloorsDirectory    string `yaml:"floors_directory"`
	ProcessedDirectory string `yaml:"processed_directory"`
	TempDirectory      string `yaml:"temp_directory"`
	SnapshotCacheFile  string `yaml:"snapshot_cache_file"`
}

// CampusConfig describes the upstream timetabling API.
type CampusConfig struct {
	BaseURL            string `yaml:"base_url"`
	Centro             string `yaml:"centro"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
	RefreshMinutes     int    `yaml:"refresh_minutes"`
	RefreshOnStart     bool   `yaml:"refresh_on_start"`
	UseCachedOnFailure bool   `yaml:"use_cached_on_failure"`
}

// SVGConfig tunes map rendering.
type SVGConfig struct {
	ViewBoxWidth      int     `yaml:"viewbox_width"`
	ViewBoxHeight     int     `yaml:"viewbox_height"`
	IconScale         float64 `yaml:"icon_scale"`
	TitleFontSize     float64 `yaml:"title_font_size"`
	DescFontSize      float64 `yaml:"desc_font_size"`
	DefaultHoverColor string  `yaml:"default_hover_color"`
}

// AdvancedConfig contains tuning options.
type AdvancedConfig struct {
	LogLevel             string `yaml:"log_level"`
	EnableRequestLogging bool   `yaml:"enable_request_logging"`
	DuckDBThreads        int    `yaml:"duckdb_threads"`
	DuckDBMemoryLimit    string `yaml:"duckdb_memory_limit"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8501,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "4M",
		},
		Storage: StorageConfig{
			DataDirectory:      "./data",
			FloorsDirectory:    "./data/floors",
			ProcessedDirectory: "./data/processed",
			TempDirectory:      "./data/temp",
			SnapshotCacheFile:  "./data/snapshot.msgpack",
		},
		Campus: CampusConfig{
			BaseURL:            "https://paas.ci.ufpb.br/api/solution",
			Centro:             "ci",
			TimeoutSeconds:     20,
			RefreshMinutes:     60,
			RefreshOnStart:     true,
			UseCachedOnFailure: true,
		},
		SVG: SVGConfig{
			ViewBoxWidth:      960,
			ViewBoxHeight:     540,
			IconScale:         0.25,
			TitleFontSize:     16,
			DescFontSize:      12,
			DefaultHoverColor: "#B2BCBE",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			DuckDBThreads:        2,
			DuckDBMemoryLimit:    "512MB",
		},
	}
}

// Load reads the configuration from a YAML file, creating it with defaults
// when missing, then applies environment overrides and resolves paths.
func Load(configPath string) (*AppConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save writes the configuration to a YAML file.
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Floor map service configuration\n# This file is auto-generated on first run\n\n")
	if err := os.WriteFile(configPath, append(header, output...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values.
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR relocates the whole storage tree, so the sub-paths are
	// re-derived under it rather than left at their config values.
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
		c.Storage.FloorsDirectory = filepath.Join(dataDir, "floors")
		c.Storage.ProcessedDirectory = filepath.Join(dataDir, "processed")
		c.Storage.TempDirectory = filepath.Join(dataDir, "temp")
		c.Storage.SnapshotCacheFile = filepath.Join(dataDir, "snapshot.msgpack")
	}

	if url := os.Getenv("CAMPUS_API_URL"); url != "" {
		c.Campus.BaseURL = url
	}

	if centro := os.Getenv("CAMPUS_CENTRO"); centro != "" {
		c.Campus.Centro = centro
	}
}

// resolvePaths converts relative paths to absolute based on config file location.
func (c *AppConfig) resolvePaths(configDir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
	resolve(&c.Storage.DataDirectory)
	resolve(&c.Storage.FloorsDirectory)
	resolve(&c.Storage.ProcessedDirectory)
	resolve(&c.Storage.TempDirectory)
	resolve(&c.Storage.SnapshotCacheFile)
}

// GetServerAddr returns the server bind address.
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories.
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.FloorsDirectory,
		c.Storage.ProcessedDirectory,
		c.Storage.TempDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
