package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/bleak/internal/model"
	"github.com/JaimeStill/bleak/pkg/database"
	"github.com/JaimeStill/bleak/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvBleakEnv             = "BLEAK_ENV"
	EnvBleakShutdownTimeout = "BLEAK_SHUTDOWN_TIMEOUT"
	EnvBleakVersion         = "BLEAK_VERSION"
)

var databaseEnv = &database.Env{
	Driver:          "BLEAK_DB_DRIVER",
	Path:            "BLEAK_DB_PATH",
	Host:            "BLEAK_DB_HOST",
	Port:            "BLEAK_DB_PORT",
	Name:            "BLEAK_DB_NAME",
	User:            "BLEAK_DB_USER",
	Password:        "BLEAK_DB_PASSWORD",
	SSLMode:         "BLEAK_DB_SSL_MODE",
	MaxOpenConns:    "BLEAK_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "BLEAK_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "BLEAK_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "BLEAK_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Enabled:          "BLEAK_STORAGE_ENABLED",
	ContainerName:    "BLEAK_STORAGE_CONTAINER_NAME",
	ConnectionString: "BLEAK_STORAGE_CONNECTION_STRING",
	ServiceURL:       "BLEAK_STORAGE_SERVICE_URL",
	MaxListSize:      "BLEAK_STORAGE_MAX_LIST_SIZE",
	MaxRetries:       "BLEAK_STORAGE_MAX_RETRIES",
}

// Config is the root configuration for the Bleak service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	API             APIConfig         `toml:"api"`
	Model           model.Config      `toml:"model"`
	Workflow        WorkflowConfig    `toml:"workflow"`
	Checkpoints     CheckpointsConfig `toml:"checkpoints"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the BLEAK_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvBleakEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Model.Merge(&overlay.Model)
	c.Workflow.Merge(&overlay.Workflow)
	c.Checkpoints.Merge(&overlay.Checkpoints)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Checkpoints.Finalize(); err != nil {
		return fmt.Errorf("checkpoints: %w", err)
	}
	if c.Checkpoints.Persistent() {
		if c.Database.Driver == "" {
			c.Database.Driver = c.Checkpoints.Driver
		}
		if err := c.Database.Finalize(databaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if c.Database.Driver != c.Checkpoints.Driver {
			return fmt.Errorf("checkpoints driver %s does not match database driver %s", c.Checkpoints.Driver, c.Database.Driver)
		}
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Model.Finalize(modelEnv); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	if err := c.Workflow.Finalize(); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvBleakShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvBleakVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvBleakEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
