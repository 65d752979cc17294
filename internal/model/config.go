package model

import (
	"fmt"
	"os"
	"strconv"
)

// Providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config selects and parameterizes the language-model provider.
type Config struct {
	Provider    string   `toml:"provider"`
	BaseURL     string   `toml:"base_url"`
	APIKey      string   `toml:"api_key"`
	Name        string   `toml:"name"`
	MaxTokens   int64    `toml:"max_tokens"`
	Temperature *float64 `toml:"temperature"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Name        string
	MaxTokens   string
	Temperature string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.Temperature != nil {
		t := *overlay.Temperature
		c.Temperature = &t
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAnthropic
	}
	if c.Name == "" {
		switch c.Provider {
		case ProviderOpenAI:
			c.Name = "gpt-4o"
		default:
			c.Name = "claude-sonnet-4-5"
		}
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 4096
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Provider != "" {
		if v := os.Getenv(env.Provider); v != "" {
			c.Provider = v
		}
	}
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.Name != "" {
		if v := os.Getenv(env.Name); v != "" {
			c.Name = v
		}
	}
	if env.MaxTokens != "" {
		if v := os.Getenv(env.MaxTokens); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				c.MaxTokens = n
			}
		}
	}
	if env.Temperature != "" {
		if v := os.Getenv(env.Temperature); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.Temperature = &f
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}
	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	return nil
}
