package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/agenthands/contactmerge/internal/core/normalize"
)

// ErrInvalidThreshold is returned when a fuzzy threshold falls outside 0-100.
var ErrInvalidThreshold = errors.New("fuzzy threshold must be between 0 and 100")

// ErrInvalidRegion is returned for a phone region that is not a known
// two-letter region code.
var ErrInvalidRegion = errors.New("phone region must be a two-letter region code")

type DetectionConfig struct {
	FuzzyThreshold int    `toml:"fuzzy_threshold"`
	Region         string `toml:"region"`
	Workers        int    `toml:"workers"`
}

type ServerConfig struct {
	Port string `toml:"port"`
	// MaxBodyBytes caps request bodies; zero means no limit.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type ReviewPrompts struct {
	Group string `toml:"group"`
}

type ReviewConfig struct {
	Enabled     bool          `toml:"enabled"`
	Concurrency int           `toml:"concurrency"`
	Prompts     ReviewPrompts `toml:"prompts"`
}

type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

type Config struct {
	Detection DetectionConfig `toml:"detection"`
	Server    ServerConfig    `toml:"server"`
	LLM       LLMConfig       `toml:"llm"`
	Memgraph  MemgraphConfig  `toml:"memgraph"`
	Review    ReviewConfig    `toml:"review"`
	Log       LogConfig       `toml:"log"`
}

func Default() *Config {
	return &Config{
		Detection: DetectionConfig{
			FuzzyThreshold: 85,
			Region:         "US",
			Workers:        1,
		},
		Server: ServerConfig{
			Port:         "8080",
			MaxBodyBytes: 32 << 20,
		},
		LLM: LLMConfig{
			Provider: "none",
		},
		Review: ReviewConfig{
			Concurrency: 2,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a TOML file on top of Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path when it is set and exists, and falls back to
// Default() otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// ApplyEnv overrides config values with environment variables when present.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Memgraph.Password = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("PHONE_REGION"); v != "" {
		c.Detection.Region = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("FUZZY_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid FUZZY_THRESHOLD %q: %w", v, err)
		}
		c.Detection.FuzzyThreshold = n
	}
	return nil
}

func ValidateThreshold(threshold int) error {
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidThreshold, threshold)
	}
	return nil
}

// ValidateRegion accepts an empty region, which means the default.
func ValidateRegion(region string) error {
	if strings.TrimSpace(region) == "" || normalize.ValidRegion(region) {
		return nil
	}
	return fmt.Errorf("%w: got %q", ErrInvalidRegion, region)
}

func (c *Config) Validate() error {
	if err := ValidateThreshold(c.Detection.FuzzyThreshold); err != nil {
		return err
	}
	if err := ValidateRegion(c.Detection.Region); err != nil {
		return err
	}
	if c.Detection.Workers < 0 {
		return fmt.Errorf("detection.workers must not be negative, got %d", c.Detection.Workers)
	}
	if c.Review.Enabled && !c.LLM.Enabled() {
		return errors.New("review is enabled but no llm provider is configured")
	}
	return nil
}

// Enabled reports whether an LLM provider is configured.
func (l LLMConfig) Enabled() bool {
	p := strings.ToLower(strings.TrimSpace(l.Provider))
	return p != "" && p != "none"
}
