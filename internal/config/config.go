// Package config loads and watches the elcomtarif configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// Config is the full process configuration. It is validated once at
// startup and treated as immutable afterwards; constructors receive it
// explicitly rather than reading process-wide state.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Source     SourceConfig     `mapstructure:"source" yaml:"source"`
	Extraction ExtractionConfig `mapstructure:"extraction" yaml:"extraction"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline" yaml:"pipeline"`
}

// ServerConfig holds the HTTP entry point settings.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// SourceConfig holds the ELCOM document source settings.
type SourceConfig struct {
	BaseURL       string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RetryAttempts uint          `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
}

// ExtractionConfig holds the extraction service settings.
// APIKey may use ${ENV_VAR} syntax; it is resolved at read time.
type ExtractionConfig struct {
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`
	Model      string        `mapstructure:"model" yaml:"model"`
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// PipelineConfig holds pipeline defaults.
type PipelineConfig struct {
	// Year is the tariff year to process.
	Year int `mapstructure:"year" yaml:"year"`
	// FetchConcurrency bounds the batch document fetch pool.
	FetchConcurrency int `mapstructure:"fetch_concurrency" yaml:"fetch_concurrency"`
	// OutputDir and SchemaDir override the home-relative defaults when set.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	SchemaDir string `mapstructure:"schema_dir" yaml:"schema_dir"`
	// PromptFile is the default prompt used by the HTTP trigger.
	PromptFile string `mapstructure:"prompt_file" yaml:"prompt_file"`
	// OutputFile is the merged-record file name; the {operator} token is
	// substituted with the operator id at write time.
	OutputFile string `mapstructure:"output_file" yaml:"output_file"`
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("server", defaults.Server)
	viper.SetDefault("source", defaults.Source)
	viper.SetDefault("extraction", defaults.Extraction)
	viper.SetDefault("pipeline", defaults.Pipeline)

	// Environment variables with ELCOMTARIF_ prefix
	viper.SetEnvPrefix("ELCOMTARIF")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/" + defaultHomeDirName)
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// ResolvedAPIKey returns the extraction API key with ${ENV_VAR}
// references expanded.
func (c *Config) ResolvedAPIKey() string {
	return ResolveEnvVars(c.Extraction.APIKey)
}

// Validate checks settings that must be present before the pipeline or
// server can start.
func (c *Config) Validate() error {
	if c.Server.Host == "" || c.Server.Port == "" {
		return errors.New("missing one or more required settings: server.host, server.port")
	}
	if c.Pipeline.Year <= 0 {
		return errors.New("pipeline.year must be a positive year")
	}
	if c.Pipeline.FetchConcurrency < 1 {
		return errors.New("pipeline.fetch_concurrency must be at least 1")
	}
	return nil
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# elcomtarif configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell: export OPENAI_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
