package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Map        MapConfig        `mapstructure:"map"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// MapConfig holds the clustering and viewport behavior configuration
type MapConfig struct {
	GridLargeDegrees float64       `mapstructure:"grid_large_degrees"`
	GridSmallDegrees float64       `mapstructure:"grid_small_degrees"`
	MetroThreshold   int64         `mapstructure:"metro_threshold"`
	MetroRadiusMiles float64       `mapstructure:"metro_radius_miles"`
	MSARadiusMiles   float64       `mapstructure:"msa_radius_miles"`
	SettleWindow     time.Duration `mapstructure:"settle_window"`
	AggregateLimit   int           `mapstructure:"aggregate_limit"`
	FilteredLimit    int           `mapstructure:"filtered_limit"`
	DetailLimit      int           `mapstructure:"detail_limit"`
	ZoomRegionMax    float64       `mapstructure:"zoom_region_max"`
	ZoomMetroMax     float64       `mapstructure:"zoom_metro_max"`
	ZoomMSAMax       float64       `mapstructure:"zoom_msa_max"`
}

// DatabaseConfig holds the data source configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// EnrichmentConfig holds the name-grouping enrichment configuration
type EnrichmentConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Model     string `mapstructure:"model"`
	CachePath string `mapstructure:"cache_path"`
}

// ServerConfig holds the HTTP shell configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set config file
	v.SetConfigFile(path)

	// Set defaults
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("DISASTERMAP")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Map defaults
	v.SetDefault("map.grid_large_degrees", 3.6)
	v.SetDefault("map.grid_small_degrees", 1.45)
	v.SetDefault("map.metro_threshold", 50)
	v.SetDefault("map.metro_radius_miles", 150.0)
	v.SetDefault("map.msa_radius_miles", 75.0)
	v.SetDefault("map.settle_window", "500ms")
	v.SetDefault("map.aggregate_limit", 20000)
	v.SetDefault("map.filtered_limit", 1000)
	v.SetDefault("map.detail_limit", 500)
	v.SetDefault("map.zoom_region_max", 4.0)
	v.SetDefault("map.zoom_metro_max", 6.0)
	v.SetDefault("map.zoom_msa_max", 8.0)

	// Database defaults
	v.SetDefault("database.path", "./data/disasters.db")

	// Enrichment defaults
	v.SetDefault("enrichment.enabled", false)
	v.SetDefault("enrichment.model", "gpt-4o-mini")
	v.SetDefault("enrichment.cache_path", "./data/grouping.db")

	// Server defaults
	v.SetDefault("server.addr", ":8080")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Map config
	if c.Map.GridLargeDegrees <= 0 {
		return fmt.Errorf("map.grid_large_degrees must be positive")
	}
	if c.Map.GridSmallDegrees <= 0 {
		return fmt.Errorf("map.grid_small_degrees must be positive")
	}
	if c.Map.GridSmallDegrees >= c.Map.GridLargeDegrees {
		return fmt.Errorf("map.grid_small_degrees must be smaller than map.grid_large_degrees")
	}
	if c.Map.MetroThreshold < 1 {
		return fmt.Errorf("map.metro_threshold must be at least 1")
	}
	if c.Map.MetroRadiusMiles <= 0 || c.Map.MSARadiusMiles <= 0 {
		return fmt.Errorf("assignment radii must be positive")
	}
	if c.Map.MSARadiusMiles > c.Map.MetroRadiusMiles {
		return fmt.Errorf("map.msa_radius_miles must not exceed map.metro_radius_miles")
	}
	if c.Map.SettleWindow < 50*time.Millisecond {
		return fmt.Errorf("map.settle_window must be at least 50ms")
	}
	if c.Map.AggregateLimit < 1 || c.Map.FilteredLimit < 1 || c.Map.DetailLimit < 1 {
		return fmt.Errorf("row limits must be at least 1")
	}
	if !(c.Map.ZoomRegionMax < c.Map.ZoomMetroMax && c.Map.ZoomMetroMax < c.Map.ZoomMSAMax) {
		return fmt.Errorf("zoom thresholds must be strictly increasing")
	}

	// Validate Database config
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	// Validate Enrichment config
	if c.Enrichment.Enabled {
		if c.Enrichment.Model == "" {
			return fmt.Errorf("enrichment.model is required when enrichment is enabled")
		}
		if c.Enrichment.CachePath == "" {
			return fmt.Errorf("enrichment.cache_path is required when enrichment is enabled")
		}
	}

	// Validate Server config
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
