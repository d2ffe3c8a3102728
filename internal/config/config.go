// Package config loads and persists application configuration via viper:
// credentials for the task source and metadata provider, sync tuning, and
// the saved filter selections.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Todoist TodoistConfig `mapstructure:"todoist"`
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
	Filters FiltersConfig `mapstructure:"filters"`
}

// TodoistConfig holds task-source credentials and project bindings
type TodoistConfig struct {
	Token         string `mapstructure:"token"`
	MoviesProject string `mapstructure:"movies_project"`
	BooksProject  string `mapstructure:"books_project"`
	RelayURL      string `mapstructure:"relay_url"` // optional CORS-relay/base override
}

// TMDBConfig holds the metadata-provider key and locale
type TMDBConfig struct {
	APIKey string `mapstructure:"api_key"`
	Region string `mapstructure:"region"` // watch-provider availability region
}

// SyncConfig tunes the enrichment batches
type SyncConfig struct {
	Concurrency  int `mapstructure:"concurrency"`
	BatchDelayMs int `mapstructure:"batch_delay_ms"`
}

// CacheConfig holds the cache directory override
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// FiltersConfig is the persisted filter-selection slot
type FiltersConfig struct {
	Query          string  `mapstructure:"query"`
	YearMin        int     `mapstructure:"year_min"`
	YearMax        int     `mapstructure:"year_max"`
	MinRating      float64 `mapstructure:"min_rating"`
	RuntimeMin     int     `mapstructure:"runtime_min"`
	RuntimeMax     int     `mapstructure:"runtime_max"`
	SeriesOnly     bool    `mapstructure:"series_only"`
	IncludeWatched bool    `mapstructure:"include_watched"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			Region: "DE",
		},
		Sync: SyncConfig{
			Concurrency:  3,
			BatchDelayMs: 350,
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reelshelf", "reelshelf.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reelshelf", "reelshelf.log")
	}
}

func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reelshelf")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "reelshelf")
	}
}

func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "reelshelf", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reelshelf", "cache")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("REELSHELF")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file yet; defaults plus env are fine.
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the full configuration back to the config file
func SaveConfig(cfg *Config) error {
	viper.Set("todoist.token", cfg.Todoist.Token)
	viper.Set("todoist.movies_project", cfg.Todoist.MoviesProject)
	viper.Set("todoist.books_project", cfg.Todoist.BooksProject)
	viper.Set("todoist.relay_url", cfg.Todoist.RelayURL)

	viper.Set("tmdb.api_key", cfg.TMDB.APIKey)
	viper.Set("tmdb.region", cfg.TMDB.Region)

	viper.Set("sync.concurrency", cfg.Sync.Concurrency)
	viper.Set("sync.batch_delay_ms", cfg.Sync.BatchDelayMs)

	viper.Set("cache.dir", cfg.Cache.Dir)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	return writeConfigFile(cfg)
}

// SaveFilters persists only the filter-selection slot
func SaveFilters(cfg *Config) error {
	viper.Set("filters.query", cfg.Filters.Query)
	viper.Set("filters.year_min", cfg.Filters.YearMin)
	viper.Set("filters.year_max", cfg.Filters.YearMax)
	viper.Set("filters.min_rating", cfg.Filters.MinRating)
	viper.Set("filters.runtime_min", cfg.Filters.RuntimeMin)
	viper.Set("filters.runtime_max", cfg.Filters.RuntimeMax)
	viper.Set("filters.series_only", cfg.Filters.SeriesOnly)
	viper.Set("filters.include_watched", cfg.Filters.IncludeWatched)

	return writeConfigFile(cfg)
}

func writeConfigFile(cfg *Config) error {
	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// IsConfigured reports whether both required credentials are present
func (c *Config) IsConfigured() bool {
	return c.Todoist.Token != "" && c.TMDB.APIKey != ""
}

// EnsureCacheDir creates the cache directory and returns it
func (c *Config) EnsureCacheDir() (string, error) {
	dir := c.Cache.Dir
	if dir == "" {
		dir = defaultCachePath()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	return dir, nil
}
