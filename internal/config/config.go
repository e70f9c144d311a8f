package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `yaml:"app"`
	Logging    LoggingConfig    `yaml:"logging"`
	Paths      PathsConfig      `yaml:"paths"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Dispatcher DispatcherConfig `yaml:"dispatcher"`
	Status     StatusConfig     `yaml:"status"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	File         string `yaml:"file"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// PathsConfig holds the input and output locations
type PathsConfig struct {
	RequestsFile string `yaml:"requests_file"`
	OutputDir    string `yaml:"output_dir"`
}

// GeminiConfig holds the generative API settings
type GeminiConfig struct {
	Model          string        `yaml:"model"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DispatcherConfig holds the worker pool and retry policy settings
type DispatcherConfig struct {
	Workers        int           `yaml:"workers"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	FailureCeiling int           `yaml:"failure_ceiling"`
	BackoffMin     time.Duration `yaml:"backoff_min"`
	BackoffMax     time.Duration `yaml:"backoff_max"`
	CourtesyMin    time.Duration `yaml:"courtesy_min"`
	CourtesyMax    time.Duration `yaml:"courtesy_max"`
	ShutdownWait   time.Duration `yaml:"shutdown_wait"`
	QuotaPhrases   []string      `yaml:"quota_phrases"`
}

// StatusConfig holds the optional live status server settings
type StatusConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads and parses the configuration file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Paths.RequestsFile == "" {
		return fmt.Errorf("paths.requests_file is required")
	}

	if c.Paths.OutputDir == "" {
		return fmt.Errorf("paths.output_dir is required")
	}

	if c.Gemini.Model == "" {
		return fmt.Errorf("gemini.model is required")
	}

	if c.Dispatcher.Workers <= 0 {
		return fmt.Errorf("dispatcher workers must be greater than 0")
	}

	if c.Dispatcher.FetchTimeout <= 0 {
		return fmt.Errorf("dispatcher fetch_timeout must be greater than 0")
	}

	if c.Dispatcher.FailureCeiling <= 0 {
		return fmt.Errorf("dispatcher failure_ceiling must be greater than 0")
	}

	if c.Dispatcher.BackoffMin <= 0 || c.Dispatcher.BackoffMax <= c.Dispatcher.BackoffMin {
		return fmt.Errorf("dispatcher backoff window is invalid: min %s, max %s", c.Dispatcher.BackoffMin, c.Dispatcher.BackoffMax)
	}

	if c.Dispatcher.CourtesyMin <= 0 || c.Dispatcher.CourtesyMax <= c.Dispatcher.CourtesyMin {
		return fmt.Errorf("dispatcher courtesy window is invalid: min %s, max %s", c.Dispatcher.CourtesyMin, c.Dispatcher.CourtesyMax)
	}

	if c.Status.Enabled && (c.Status.Port < MinPort || c.Status.Port > MaxPort) {
		return fmt.Errorf("invalid status port: %d (must be between %d and %d)", c.Status.Port, MinPort, MaxPort)
	}

	return nil
}
