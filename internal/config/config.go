// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Embedding providers understood by the embedding backend.
const (
	EmbeddingsProviderNone   = "none"
	EmbeddingsProviderOpenAI = "openai"
	EmbeddingsProviderGemini = "gemini"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	// EmbeddingsProvider selects the neural embedding backend: openai, gemini or none.
	EmbeddingsProvider string `env:"EMBEDDINGS_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey       string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL      string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	EmbeddingsModel    string `env:"EMBEDDINGS_MODEL" envDefault:"text-embedding-3-small"`
	GeminiAPIKey       string `env:"GEMINI_API_KEY"`
	GeminiEmbedModel   string `env:"GEMINI_EMBED_MODEL" envDefault:"text-embedding-004"`
	EmbedCacheSize     int    `env:"EMBED_CACHE_SIZE" envDefault:"2048"`
	// RedisURL enables the shared embedding cache when set.
	RedisURL      string        `env:"REDIS_URL"`
	RedisCacheTTL time.Duration `env:"REDIS_CACHE_TTL" envDefault:"24h"`
	// EmbedRatePerMinute caps embedding calls across processes when Redis is set; 0 disables.
	EmbedRatePerMinute int `env:"EMBED_RATE_PER_MINUTE" envDefault:"0"`
	// EnablePipeline turns the stemming NLP pipeline backend on or off.
	EnablePipeline bool `env:"ENABLE_PIPELINE" envDefault:"true"`
	// Breaker settings for the embedding backend.
	BreakerFailureThreshold int           `env:"BREAKER_FAILURE_THRESHOLD" envDefault:"3"`
	BreakerRecoveryTimeout  time.Duration `env:"BREAKER_RECOVERY_TIMEOUT" envDefault:"30s"`
	// Backend weights for the detailed blend; re-normalized over the backends that answered.
	WeightEmbedding float64 `env:"WEIGHT_EMBEDDING" envDefault:"0.5"`
	WeightPipeline  float64 `env:"WEIGHT_PIPELINE" envDefault:"0.3"`
	WeightTFIDF     float64 `env:"WEIGHT_TFIDF" envDefault:"0.1"`
	// BackendInitTimeout bounds lazy model/client initialization.
	BackendInitTimeout time.Duration `env:"BACKEND_INIT_TIMEOUT" envDefault:"10s"`
	BackendCallTimeout time.Duration `env:"BACKEND_CALL_TIMEOUT" envDefault:"20s"`
	// MaxBackendInputChars is the prefix handed to cost/context constrained backends.
	MaxBackendInputChars int     `env:"MAX_BACKEND_INPUT_CHARS" envDefault:"5000"`
	MaxEmbedTokens       int     `env:"MAX_EMBED_TOKENS" envDefault:"2048"`
	FuzzyThreshold       float64 `env:"FUZZY_THRESHOLD" envDefault:"0.8"`

	// AggregationPolicy forces balanced, skill_weighted or semantic_leaning;
	// empty lets each report pick by whether a skill score exists.
	AggregationPolicy string `env:"AGGREGATION_POLICY"`
	// TierScale forces three_tier or five_tier at every depth; empty keeps
	// three tiers for quick/standard and five for deep.
	TierScale   string `env:"TIER_SCALE"`
	MaxGapTerms int    `env:"MAX_GAP_TERMS" envDefault:"15"`
	// PolicyFile points at an optional YAML file overriding section keywords and stop words.
	PolicyFile      string `env:"POLICY_FILE"`
	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"resume-matcher"`
	MetricsAddr     string `env:"METRICS_ADDR"`
	// AI Backoff Configuration
	AIBackoffMaxElapsedTime  time.Duration `env:"AI_BACKOFF_MAX_ELAPSED_TIME" envDefault:"30s"`
	AIBackoffInitialInterval time.Duration `env:"AI_BACKOFF_INITIAL_INTERVAL" envDefault:"500ms"`
	AIBackoffMaxInterval     time.Duration `env:"AI_BACKOFF_MAX_INTERVAL" envDefault:"5s"`
	AIBackoffMultiplier      float64       `env:"AI_BACKOFF_MULTIPLIER" envDefault:"1.5"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges that env tags cannot express.
func (c Config) Validate() error {
	switch strings.ToLower(c.EmbeddingsProvider) {
	case EmbeddingsProviderNone, EmbeddingsProviderOpenAI, EmbeddingsProviderGemini:
	default:
		return fmt.Errorf("unknown EMBEDDINGS_PROVIDER %q", c.EmbeddingsProvider)
	}
	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("FUZZY_THRESHOLD must be in (0,1], got %v", c.FuzzyThreshold)
	}
	if c.MaxGapTerms < 0 {
		return fmt.Errorf("MAX_GAP_TERMS must be non-negative, got %d", c.MaxGapTerms)
	}
	if c.WeightEmbedding < 0 || c.WeightPipeline < 0 || c.WeightTFIDF < 0 {
		return fmt.Errorf("backend weights must be non-negative")
	}
	return nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// Provider returns the lower-cased embeddings provider.
func (c Config) Provider() string { return strings.ToLower(c.EmbeddingsProvider) }

// GetAIBackoffConfig returns backoff configuration appropriate for the current environment.
// In test environments, uses much shorter timeouts for faster test execution.
func (c Config) GetAIBackoffConfig() (maxElapsedTime, initialInterval, maxInterval time.Duration, multiplier float64) {
	if c.IsTest() {
		return 2 * time.Second, 50 * time.Millisecond, 500 * time.Millisecond, 2.0
	}
	return c.AIBackoffMaxElapsedTime, c.AIBackoffInitialInterval, c.AIBackoffMaxInterval, c.AIBackoffMultiplier
}
