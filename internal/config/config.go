package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	return NewFromFile("")
}

// NewFromFile creates a configuration instance reading path, or searching the
// default locations when path is empty
func NewFromFile(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/email-triage/")
		v.AddConfigPath("$HOME/.email-triage")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("EMAIL_TRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Sentiment capability defaults
	v.SetDefault("sentiment.provider", "huggingface")
	v.SetDefault("sentiment.max_length", 512)
	v.SetDefault("sentiment.timeout", "10s")
	v.SetDefault("sentiment.breaker_failures", 5)
	v.SetDefault("sentiment.breaker_cooldown", "30s")

	// HuggingFace defaults
	v.SetDefault("huggingface.api_key", "")
	v.SetDefault("huggingface.model", "nlptown/bert-base-multilingual-uncased-sentiment")
	v.SetDefault("huggingface.endpoint", "https://api-inference.huggingface.co/models")

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 100)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 100)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4")
	v.SetDefault("openai.max_tokens", 100)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)

	// Classifier defaults
	v.SetDefault("classifier.lexicon_file", "")
	v.SetDefault("classifier.weights.sentiment", 0.4)
	v.SetDefault("classifier.weights.keyword", 0.3)
	v.SetDefault("classifier.weights.structure", 0.2)
	v.SetDefault("classifier.weights.context", 0.1)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.cleanup_frequency", "10m")
	v.SetDefault("cache.sqlite_path", "/data/sentiment_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/email_triage")
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", "email-triage:sentiment:")

	// Result store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.sqlite_path", "/data/emails.db")
	v.SetDefault("store.mysql_dsn", "user:password@tcp(localhost:3306)/email_triage")

	// Server defaults
	v.SetDefault("server.filter_type", "http")
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.modify_subject", false)
	v.SetDefault("server.subject_prefix", "[IMPRODUTIVO] ")
	v.SetDefault("server.skip_domains", []string{})
	v.SetDefault("server.headers.category", "X-Email-Category")
	v.SetDefault("server.headers.confidence", "X-Email-Confidence")
	v.SetDefault("server.headers.response", "X-Email-Suggested-Response")
	v.SetDefault("server.postfix.enabled", true)
	v.SetDefault("server.postfix.address", "127.0.0.1")
	v.SetDefault("server.postfix.port", 10026)

	// HTTP API defaults
	v.SetDefault("server.http.address", ":8080")
	v.SetDefault("server.http.rate_limit_per_hour", 100)
	v.SetDefault("server.http.max_email_length", 10000)
	v.SetDefault("server.http.request_timeout", "30s")
	v.SetDefault("server.http.max_batch_size", 100)
	v.SetDefault("server.http.batch_concurrency", 8)

	// One-shot CLI defaults
	v.SetDefault("cli.verbose", false)
	v.SetDefault("cli.json", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
