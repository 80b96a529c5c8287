package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort       = 8080
	DefaultBackendURL = "http://localhost:5000"

	// EnvBackendURL overrides backend.url from the config file
	EnvBackendURL = "ECMO_BACKEND_URL"
)

// Config holds the application configuration
type Config struct {
	Port    int           `yaml:"port"`
	DataDir string        `yaml:"data_dir"`
	Version string        `yaml:"-"`
	Backend BackendConfig `yaml:"backend"`
	Journal JournalConfig `yaml:"journal"`
	Metrics MetricsConfig `yaml:"metrics"`
	// Aliases extends the backend parameter rename tables: scenario -> UI key -> backend key
	Aliases map[string]map[string]string `yaml:"aliases"`
}

// BackendConfig locates the prediction service
type BackendConfig struct {
	URL string `yaml:"url"`
	// Timeout bounds each prediction or interpretation call. Zero waits forever.
	Timeout time.Duration `yaml:"timeout"`
}

// JournalConfig enables the SQLite prediction journal when Path is set
type JournalConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig controls the /metrics endpoint
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is present
func Default() Config {
	return Config{
		Port: DefaultPort,
		Backend: BackendConfig{
			URL: DefaultBackendURL,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads a YAML config file on top of the defaults. A missing file is not an error.
// The backend URL may be overridden from the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if url := strings.TrimSpace(os.Getenv(EnvBackendURL)); url != "" {
		cfg.Backend.URL = url
	}
	cfg.normalize()
	return cfg, cfg.Validate()
}

func (c *Config) normalize() {
	c.Backend.URL = strings.TrimRight(strings.TrimSpace(c.Backend.URL), "/")
	if c.Backend.URL == "" {
		c.Backend.URL = DefaultBackendURL
	}
	if c.Journal.Path != "" && c.DataDir != "" && !filepath.IsAbs(c.Journal.Path) {
		c.Journal.Path = filepath.Join(c.DataDir, c.Journal.Path)
	}
}

// Validate reports configuration values that cannot work
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("invalid backend timeout %s", c.Backend.Timeout)
	}
	if !strings.HasPrefix(c.Backend.URL, "http://") && !strings.HasPrefix(c.Backend.URL, "https://") {
		return fmt.Errorf("backend url must be http(s): %s", c.Backend.URL)
	}
	return nil
}
