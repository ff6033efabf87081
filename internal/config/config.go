package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"orderlens/internal/errors"
)

// Config represents the complete application configuration.
//
// Env var names are derived from the field names under the ORDERLENS
// prefix (ORDERLENS_DATASET_PATH, ORDERLENS_SERVER_READ_TIMEOUT, ...).
// Fields must not carry an envconfig name tag: envconfig also looks the
// tagged name up WITHOUT the prefix, so a tag like "PATH" would let the
// OS $PATH leak into the config.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Security SecurityConfig `yaml:"security"`
	Logging  LoggingConfig  `yaml:"logging"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Export   ExportConfig   `yaml:"export"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" split_words:"true" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" split_words:"true" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" split_words:"true" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" split_words:"true"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" default:"true"`
	RPS     float64 `yaml:"rps" default:"100"`
	Burst   int     `yaml:"burst" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" default:"info"`
	Format      string `yaml:"format" default:"json"`
	Output      string `yaml:"output" default:"stdout"`
	FilePath    string `yaml:"file_path" split_words:"true" default:"logs/app.log"`
	Development bool   `yaml:"development" default:"false"`
}

// DatasetConfig describes the order dataset and its display locale.
// Currency and Locale only affect formatted display strings; monetary
// values stay raw decimals everywhere in the data model.
type DatasetConfig struct {
	Path     string `yaml:"path" default:"data/all_data.csv"`
	Currency string `yaml:"currency" default:"AUD"`
	Locale   string `yaml:"locale" default:"en"`
}

// ExportConfig contains export output configuration
type ExportConfig struct {
	Dir     string `yaml:"dir" default:"exports"`
	TopN    int    `yaml:"top_n" split_words:"true" default:"5"`
	FillGap bool   `yaml:"fill_gap" split_words:"true" default:"false"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("ORDERLENS", &cfg); err != nil {
		return nil, errors.NewConfigError("failed to load config from env", err)
	}

	if configFile := findConfigFile(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, errors.NewConfigError("failed to load config from file", err).WithContext("path", configFile)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, errors.NewConfigError("config validation failed", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Server.ReadTimeout == 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if envConfig.Server.WriteTimeout == 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if envConfig.Dataset.Path == "" {
		envConfig.Dataset.Path = fileConfig.Dataset.Path
	}
	if envConfig.Dataset.Currency == "" {
		envConfig.Dataset.Currency = fileConfig.Dataset.Currency
	}
	if envConfig.Dataset.Locale == "" {
		envConfig.Dataset.Locale = fileConfig.Dataset.Locale
	}
	if envConfig.Export.Dir == "" {
		envConfig.Export.Dir = fileConfig.Export.Dir
	}

	return envConfig
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if strings.TrimSpace(c.Dataset.Path) == "" {
		return fmt.Errorf("dataset path must not be empty")
	}

	if len(c.Dataset.Currency) != 3 {
		return fmt.Errorf("dataset currency must be a 3-letter ISO code, got %q", c.Dataset.Currency)
	}

	if c.Export.TopN <= 0 {
		c.Export.TopN = 5
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// findConfigFile returns the path to the config file
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		Dataset: DatasetConfig{
			Path:     "data/all_data.csv",
			Currency: "AUD",
			Locale:   "en",
		},
		Export: ExportConfig{
			Dir:  "exports",
			TopN: 5,
		},
	}
}
