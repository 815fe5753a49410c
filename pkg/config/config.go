package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the harvester
type Config struct {
	// Entrez service settings
	Entrez EntrezConfig `yaml:"entrez" json:"entrez"`

	// Harvest loop settings
	Harvest HarvestConfig `yaml:"harvest" json:"harvest"`

	// Retry and backoff policy
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// EntrezConfig holds settings for the remote E-utilities service
type EntrezConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	Email   string `yaml:"email" json:"email"`
	Tool    string `yaml:"tool" json:"tool"`
	APIKey  string `yaml:"api_key" json:"api_key"`
}

// HarvestConfig holds settings for the batched download loop
type HarvestConfig struct {
	SearchTerm              string        `yaml:"search_term" json:"search_term"`
	BatchSize               int           `yaml:"batch_size" json:"batch_size"`
	MaxRecordsPerCollection int           `yaml:"max_records_per_collection" json:"max_records_per_collection"`
	PageDelay               time.Duration `yaml:"page_delay" json:"page_delay"`
	SampleSize              int           `yaml:"sample_size" json:"sample_size"`
	ConcurrentCollections   int           `yaml:"concurrent_collections" json:"concurrent_collections"`
}

// RetryConfig holds the retry and backoff policy applied to every remote call
type RetryConfig struct {
	MaxRetries  int           `yaml:"max_retries" json:"max_retries"`
	BackoffBase float64       `yaml:"backoff_base" json:"backoff_base"`
	JitterMax   time.Duration `yaml:"jitter_max" json:"jitter_max"`
}

// RateLimitConfig holds rate limiting configuration for the session client
type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requests_per_second" json:"requests_per_second"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Entrez: EntrezConfig{
			BaseURL: "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
			Tool:    "entrezharvest",
		},
		Harvest: HarvestConfig{
			SearchTerm:              "endolysin",
			BatchSize:               50,
			MaxRecordsPerCollection: 500000,
			PageDelay:               1 * time.Second,
			SampleSize:              10,
			ConcurrentCollections:   1,
		},
		Retry: RetryConfig{
			MaxRetries:  5,
			BackoffBase: 2.0,
			JitterMax:   500 * time.Millisecond,
		},
		RateLimit: RateLimitConfig{
			// NCBI allows 3 requests/second without an API key, 10 with one.
			RequestsPerSecond: 3,
		},
		Output: OutputConfig{
			BaseDirectory: "./entrez_data",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if email := os.Getenv("ENTREZHARVEST_EMAIL"); email != "" {
		c.Entrez.Email = email
	}
	if tool := os.Getenv("ENTREZHARVEST_TOOL"); tool != "" {
		c.Entrez.Tool = tool
	}
	if apiKey := os.Getenv("ENTREZHARVEST_API_KEY"); apiKey != "" {
		c.Entrez.APIKey = apiKey
	}
	if baseURL := os.Getenv("ENTREZHARVEST_BASE_URL"); baseURL != "" {
		c.Entrez.BaseURL = baseURL
	}

	if term := os.Getenv("ENTREZHARVEST_SEARCH_TERM"); term != "" {
		c.Harvest.SearchTerm = term
	}
	if batch := os.Getenv("ENTREZHARVEST_BATCH_SIZE"); batch != "" {
		var val int
		fmt.Sscanf(batch, "%d", &val)
		if val > 0 {
			c.Harvest.BatchSize = val
		}
	}
	if maxRecords := os.Getenv("ENTREZHARVEST_MAX_RECORDS"); maxRecords != "" {
		var val int
		fmt.Sscanf(maxRecords, "%d", &val)
		if val > 0 {
			c.Harvest.MaxRecordsPerCollection = val
		}
	}
	if delay := os.Getenv("ENTREZHARVEST_PAGE_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d >= 0 {
			c.Harvest.PageDelay = d
		}
	}

	if retries := os.Getenv("ENTREZHARVEST_MAX_RETRIES"); retries != "" {
		var val int
		fmt.Sscanf(retries, "%d", &val)
		if val >= 0 {
			c.Retry.MaxRetries = val
		}
	}

	if outputDir := os.Getenv("ENTREZHARVEST_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	if logLevel := os.Getenv("ENTREZHARVEST_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".entrezharvest.yaml",
		".entrezharvest.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "entrezharvest", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "entrezharvest", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".entrezharvest.yaml"),
		filepath.Join(os.Getenv("HOME"), ".entrezharvest.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Entrez.BaseURL == "" {
		errs = append(errs, errors.New("entrez base URL is required"))
	}
	if c.Entrez.Tool == "" {
		errs = append(errs, errors.New("entrez tool name is required"))
	}

	if c.Harvest.SearchTerm == "" {
		errs = append(errs, errors.New("search term is required"))
	}
	if c.Harvest.BatchSize <= 0 {
		errs = append(errs, errors.New("batch size must be positive"))
	}
	if c.Harvest.MaxRecordsPerCollection <= 0 {
		errs = append(errs, errors.New("max records per collection must be positive"))
	}
	if c.Harvest.PageDelay < 0 {
		errs = append(errs, errors.New("page delay cannot be negative"))
	}
	if c.Harvest.ConcurrentCollections <= 0 {
		errs = append(errs, errors.New("concurrent collections must be positive"))
	}

	if c.Retry.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}
	if c.Retry.BackoffBase < 1.0 {
		errs = append(errs, errors.New("backoff base must be at least 1.0"))
	}
	if c.Retry.JitterMax < 0 {
		errs = append(errs, errors.New("jitter max cannot be negative"))
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("requests per second must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if email, ok := flags["email"].(string); ok && email != "" {
		c.Entrez.Email = email
	}
	if apiKey, ok := flags["api-key"].(string); ok && apiKey != "" {
		c.Entrez.APIKey = apiKey
	}
	if term, ok := flags["term"].(string); ok && term != "" {
		c.Harvest.SearchTerm = term
	}
	if batchSize, ok := flags["batch-size"].(int); ok && batchSize > 0 {
		c.Harvest.BatchSize = batchSize
	}
	if maxRecords, ok := flags["max-records"].(int); ok && maxRecords > 0 {
		c.Harvest.MaxRecordsPerCollection = maxRecords
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if concurrent, ok := flags["concurrent"].(int); ok && concurrent > 0 {
		c.Harvest.ConcurrentCollections = concurrent
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".entrezharvest.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
