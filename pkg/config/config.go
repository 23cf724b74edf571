// Package config loads and validates application configuration from a YAML
// file with environment-variable overrides. Provider credentials are taken
// from the environment (RAPIDAPI_KEY / RAPIDAPI_HOST) and are never written
// to the config file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	AI       AIConfig       `yaml:"ai"`
	Ranking  RankingConfig  `yaml:"ranking"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// ProviderConfig holds the job-listing provider endpoint and credentials.
type ProviderConfig struct {
	BaseURL  string        `yaml:"baseUrl"`
	Key      string        `yaml:"-"`
	Host     string        `yaml:"-"`
	Country  string        `yaml:"country"`
	Language string        `yaml:"language"`
	Timeout  time.Duration `yaml:"timeout"`
}

// AIConfig holds the embedding service endpoint and model. The service must
// expose an OpenAI-compatible embeddings API (Ollama, LocalAI, OpenAI).
type AIConfig struct {
	EmbeddingHost  string `yaml:"embeddingHost"`
	EmbeddingModel string `yaml:"embeddingModel"`
	Token          string `yaml:"-"`
}

// RankingConfig controls keyphrase extraction and result ranking.
type RankingConfig struct {
	// Strategy selects the similarity scorer: "tfidf" or "embedding".
	Strategy      string `yaml:"strategy"`
	TopKeyphrases int    `yaml:"topKeyphrases"`
	MaxResults    int    `yaml:"maxResults"`
}

// RedisConfig holds Redis connection and response-cache parameters.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// KafkaConfig holds the analytics event stream settings. ConsumerGroup is
// used only by the analytics aggregation service.
type KafkaConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Brokers       []string `yaml:"brokers"`
	Topic         string   `yaml:"topic"`
	ConsumerGroup string   `yaml:"consumerGroup"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with. Missing
// provider credentials are deliberately not an error: the health endpoint
// reports them as degraded and provider calls return zero listings.
func (c *Config) Validate() error {
	switch c.Ranking.Strategy {
	case "", "tfidf", "embedding":
	default:
		return fmt.Errorf("ranking.strategy must be \"tfidf\" or \"embedding\", got %q", c.Ranking.Strategy)
	}
	if c.Ranking.TopKeyphrases < 1 {
		return fmt.Errorf("ranking.topKeyphrases must be positive, got %d", c.Ranking.TopKeyphrases)
	}
	if c.Ranking.MaxResults < 1 {
		return fmt.Errorf("ranking.maxResults must be positive, got %d", c.Ranking.MaxResults)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Provider: ProviderConfig{
			BaseURL:  "https://jsearch.p.rapidapi.com",
			Country:  "in",
			Language: "en",
			Timeout:  10 * time.Second,
		},
		AI: AIConfig{
			EmbeddingHost:  "http://localhost:11434/v1",
			EmbeddingModel: "embeddinggemma",
		},
		Ranking: RankingConfig{
			Strategy:      "tfidf",
			TopKeyphrases: 5,
			MaxResults:    10,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Enabled:       false,
			Brokers:       []string{"localhost:9092"},
			Topic:         "jobscout.search-events",
			ConsumerGroup: "jobscout-analytics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RAPIDAPI_KEY"); v != "" {
		cfg.Provider.Key = v
	}
	if v := os.Getenv("RAPIDAPI_HOST"); v != "" {
		cfg.Provider.Host = v
	}
	if v := os.Getenv("PROVIDER_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_HOST"); v != "" {
		cfg.AI.EmbeddingHost = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.AI.EmbeddingModel = v
	}
	if v := os.Getenv("EMBEDDING_TOKEN"); v != "" {
		cfg.AI.Token = v
	}
	if v := os.Getenv("RANKING_STRATEGY"); v != "" {
		cfg.Ranking.Strategy = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
