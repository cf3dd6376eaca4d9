package properties

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultArchivePrefix = "R23"
	DefaultWorkers       = 4
)

// Output folders created under the scene root.
const (
	FloodExtentDirName = "flood_extent"
	SuitabilityDirName = "site_suitability_outputs"
)

// Config is passed explicitly to ingest, registry and delivery. Nothing reads
// it from package state.
type Config struct {
	DataDir       string `yaml:"data_dir"`
	DownloadsDir  string `yaml:"downloads_dir"`
	ArchivePrefix string `yaml:"archive_prefix"`
	Workers       int    `yaml:"workers"`

	// StrictIndexResolution turns an ambiguous NDVI/NDWI lookup into an error
	// instead of a warning plus first match.
	StrictIndexResolution bool `yaml:"strict_index_resolution"`

	Debug       bool   `yaml:"debug"`
	MetricsFile string `yaml:"metrics_file"`

	Notifications Notifications `yaml:"notifications"`
}

type Notifications struct {
	DiscordErrorURL   string `yaml:"discord_error_url"`
	DiscordSuccessURL string `yaml:"discord_success_url"`
}

func Default() *Config {
	return &Config{
		DataDir:       "data",
		DownloadsDir:  "downloads",
		ArchivePrefix: DefaultArchivePrefix,
		Workers:       DefaultWorkers,
	}
}

// Load reads .env (if present), then the YAML file at path (if present), then
// environment overrides. An empty path skips the YAML step.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("invalid config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("DOWNLOADS_DIR"); v != "" {
		cfg.DownloadsDir = v
	}
	if v := os.Getenv("ARCHIVE_PREFIX"); v != "" {
		cfg.ArchivePrefix = v
	}
	if v := os.Getenv("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WORKERS %q: %w", v, err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("STRICT_INDEX_RESOLUTION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid STRICT_INDEX_RESOLUTION %q: %w", v, err)
		}
		cfg.StrictIndexResolution = b
	}
	if v := os.Getenv("LOG_DEBUG"); v != "" {
		cfg.Debug = v == "true" || v == "1"
	}
	if v := os.Getenv("METRICS_FILE"); v != "" {
		cfg.MetricsFile = v
	}
	if v := os.Getenv("DISCORD_ERROR_NOTIFICATION_URL"); v != "" {
		cfg.Notifications.DiscordErrorURL = v
	}
	if v := os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL"); v != "" {
		cfg.Notifications.DiscordSuccessURL = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.ArchivePrefix == "" {
		return errors.New("archive_prefix cannot be empty")
	}
	return nil
}

// FloodDir is where the bi-temporal change products are written.
func (c *Config) FloodDir() string {
	return filepath.Join(c.DataDir, FloodExtentDirName)
}

func (c *Config) SuitabilityDir() string {
	return filepath.Join(c.DataDir, SuitabilityDirName)
}
