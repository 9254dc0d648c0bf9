package config

import (
	"fmt"
	"time"

	"github.com/mikey/email-triage/internal/lexicon"
)

// SentimentConfig represents the configuration of the sentiment capability
type SentimentConfig struct {
	Provider        string
	MaxLength       int
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// HuggingFaceConfig represents the configuration for the HuggingFace Inference API
type HuggingFaceConfig struct {
	APIKey   string
	Model    string
	Endpoint string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// ClassifierConfig represents the configuration of the scoring engine
type ClassifierConfig struct {
	LexiconFile string
	Weights     lexicon.Weights
}

// RedisConfig represents the connection settings of the redis cache
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// CacheConfig represents the configuration of the sentiment answer cache
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	Redis            RedisConfig
}

// StoreConfig represents the configuration of the result history store
type StoreConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// HeadersConfig names the headers written by the content filter
type HeadersConfig struct {
	Category   string
	Confidence string
	Response   string
}

// PostfixConfig represents where filtered mail is re-injected
type PostfixConfig struct {
	Enabled bool
	Address string
	Port    int
}

// ServerConfig represents the configuration of the mail filter
type ServerConfig struct {
	FilterType    string
	ListenAddress string
	ModifySubject bool
	SubjectPrefix string
	SkipDomains   []string
	Headers       HeadersConfig
	Postfix       PostfixConfig
}

// HTTPConfig represents the configuration of the HTTP API
type HTTPConfig struct {
	Address          string
	RateLimitPerHour int
	MaxEmailLength   int
	RequestTimeout   time.Duration
	MaxBatchSize     int
	BatchConcurrency int
}

// GetSentiment returns the sentiment capability configuration
func (c *Config) GetSentiment() (SentimentConfig, error) {
	timeout, err := c.GetDuration("sentiment.timeout")
	if err != nil {
		return SentimentConfig{}, err
	}
	cooldown, err := c.GetDuration("sentiment.breaker_cooldown")
	if err != nil {
		return SentimentConfig{}, err
	}

	return SentimentConfig{
		Provider:        c.GetString("sentiment.provider"),
		MaxLength:       c.GetInt("sentiment.max_length"),
		Timeout:         timeout,
		BreakerFailures: uint32(max(0, c.GetInt("sentiment.breaker_failures"))),
		BreakerCooldown: cooldown,
	}, nil
}

// GetHuggingFace returns the HuggingFace configuration
func (c *Config) GetHuggingFace() HuggingFaceConfig {
	return HuggingFaceConfig{
		APIKey:   c.GetString("huggingface.api_key"),
		Model:    c.GetString("huggingface.model"),
		Endpoint: c.GetString("huggingface.endpoint"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetClassifier returns the scoring engine configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		LexiconFile: c.GetString("classifier.lexicon_file"),
		Weights: lexicon.Weights{
			Sentiment: c.GetFloat64("classifier.weights.sentiment"),
			Keyword:   c.GetFloat64("classifier.weights.keyword"),
			Structure: c.GetFloat64("classifier.weights.structure"),
			Context:   c.GetFloat64("classifier.weights.context"),
		},
	}
}

// GetCache returns the sentiment cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}

	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		Redis: RedisConfig{
			Address:  c.GetString("cache.redis.address"),
			Password: c.GetString("cache.redis.password"),
			DB:       c.GetInt("cache.redis.db"),
			Prefix:   c.GetString("cache.redis.prefix"),
		},
	}, nil
}

// GetStore returns the result store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:       c.GetString("store.type"),
		SQLitePath: c.GetString("store.sqlite_path"),
		MySQLDSN:   c.GetString("store.mysql_dsn"),
	}
}

// GetServer returns the mail filter configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		FilterType:    c.GetString("server.filter_type"),
		ListenAddress: c.GetString("server.listen_address"),
		ModifySubject: c.GetBool("server.modify_subject"),
		SubjectPrefix: c.GetString("server.subject_prefix"),
		SkipDomains:   c.GetStringSlice("server.skip_domains"),
		Headers: HeadersConfig{
			Category:   c.GetString("server.headers.category"),
			Confidence: c.GetString("server.headers.confidence"),
			Response:   c.GetString("server.headers.response"),
		},
		Postfix: PostfixConfig{
			Enabled: c.GetBool("server.postfix.enabled"),
			Address: c.GetString("server.postfix.address"),
			Port:    c.GetInt("server.postfix.port"),
		},
	}
}

// GetHTTP returns the HTTP API configuration
func (c *Config) GetHTTP() (HTTPConfig, error) {
	timeout, err := c.GetDuration("server.http.request_timeout")
	if err != nil {
		return HTTPConfig{}, err
	}

	cfg := HTTPConfig{
		Address:          c.GetString("server.http.address"),
		RateLimitPerHour: c.GetInt("server.http.rate_limit_per_hour"),
		MaxEmailLength:   c.GetInt("server.http.max_email_length"),
		RequestTimeout:   timeout,
		MaxBatchSize:     c.GetInt("server.http.max_batch_size"),
		BatchConcurrency: c.GetInt("server.http.batch_concurrency"),
	}
	if cfg.MaxBatchSize <= 0 {
		return HTTPConfig{}, fmt.Errorf("server.http.max_batch_size must be positive, got %d", cfg.MaxBatchSize)
	}

	return cfg, nil
}
