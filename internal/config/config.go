package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Dataset       DatasetConfig       `yaml:"dataset"`
	Redis         RedisConfig         `yaml:"redis"`
	Semantic      SemanticConfig      `yaml:"semantic"`
	Extractor     ExtractorConfig     `yaml:"extractor"`
	ClickHouse    ClickHouseConfig    `yaml:"clickhouse"`
	Search        SearchConfig        `yaml:"search"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatasetConfig struct {
	Dir string `yaml:"dir"`
}

type RedisConfig struct {
	Addresses    []string      `yaml:"addresses"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// SemanticConfig configures the external full-text index used by the
// semantic fallback.
type SemanticConfig struct {
	Addresses      []string      `yaml:"addresses"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	MaxRetries     int           `yaml:"max_retries"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	IndexPrefix    string        `yaml:"index_prefix"`
}

// ExtractorConfig configures the language-model call behind the slow path
// of query understanding. BaseURL allows pointing at any OpenAI-compatible
// endpoint.
type ExtractorConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	Model          string        `yaml:"model"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type ClickHouseConfig struct {
	Addresses    []string      `yaml:"addresses"`
	Database     string        `yaml:"database"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
}

type SearchConfig struct {
	MinQueryLength    int                  `yaml:"min_query_length"`
	SemanticLimit     int                  `yaml:"semantic_limit"`
	InterpretationTTL time.Duration        `yaml:"interpretation_ttl"`
	RateLimit         RateLimitConfig      `yaml:"rate_limit"`
	CircuitBreaker    CircuitBreakerConfig `yaml:"circuit_breaker"`
	Retry             RetryConfig          `yaml:"retry"`
	SlowQuery         SlowQueryConfig      `yaml:"slow_query"`
}

type RateLimitConfig struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

type CircuitBreakerConfig struct {
	MaxRequests      uint32        `yaml:"max_requests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold uint32        `yaml:"failure_threshold"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

type SlowQueryConfig struct {
	WarningThreshold  time.Duration `yaml:"warning_threshold"`
	CriticalThreshold time.Duration `yaml:"critical_threshold"`
}

type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	ServiceName string `yaml:"service_name"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Dataset: DatasetConfig{
			Dir: "data",
		},
		Redis: RedisConfig{
			Addresses:    []string{"localhost:6379"},
			PoolSize:     50,
			MinIdleConns: 5,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  1 * time.Second,
			WriteTimeout: 1 * time.Second,
		},
		Semantic: SemanticConfig{
			Addresses:      []string{"http://localhost:9200"},
			MaxRetries:     3,
			RequestTimeout: 3 * time.Second,
			IndexPrefix:    "haalarit",
		},
		Extractor: ExtractorConfig{
			Model:          "gpt-4o-mini",
			RequestTimeout: 5 * time.Second,
		},
		ClickHouse: ClickHouseConfig{
			Addresses:    []string{"localhost:9000"},
			Database:     "haku_analytics",
			DialTimeout:  5 * time.Second,
			QueryTimeout: 2 * time.Second,
			MaxOpenConns: 5,
			MaxIdleConns: 2,
		},
		Search: SearchConfig{
			MinQueryLength:    3,
			SemanticLimit:     100,
			InterpretationTTL: 1 * time.Hour,
			RateLimit: RateLimitConfig{
				Limit:  15,
				Window: 10 * time.Second,
			},
			CircuitBreaker: CircuitBreakerConfig{
				MaxRequests:      20,
				Interval:         30 * time.Second,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
			Retry: RetryConfig{
				MaxAttempts: 2,
				InitialWait: 50 * time.Millisecond,
				MaxWait:     500 * time.Millisecond,
				Multiplier:  2.0,
			},
			SlowQuery: SlowQueryConfig{
				WarningThreshold:  500 * time.Millisecond,
				CriticalThreshold: 2 * time.Second,
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			ServiceName: "haku-api",
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Dataset.Dir == "" {
		return fmt.Errorf("dataset dir required")
	}
	if len(c.Redis.Addresses) == 0 {
		return fmt.Errorf("at least one redis address required")
	}
	if len(c.Semantic.Addresses) == 0 {
		return fmt.Errorf("at least one semantic index address required")
	}
	if c.Extractor.Model == "" {
		return fmt.Errorf("extractor model required")
	}
	if c.Search.MinQueryLength <= 0 {
		return fmt.Errorf("min query length must be positive")
	}
	if c.Search.SemanticLimit <= 0 || c.Search.SemanticLimit > 1000 {
		return fmt.Errorf("semantic limit must be between 1 and 1000")
	}
	if c.Search.RateLimit.Limit <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.Search.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive")
	}
	if c.Search.InterpretationTTL <= 0 {
		return fmt.Errorf("interpretation ttl must be positive")
	}
	return nil
}
