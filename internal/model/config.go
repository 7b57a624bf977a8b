package model

import "time"

// Config holds every tunable of omen. Field tags serve viper (mapstructure)
// and the YAML written by `omen config init`.
type Config struct {
	HTTP         HTTPConfig         `mapstructure:"http" yaml:"http"`
	Cache        CacheConfig        `mapstructure:"cache" yaml:"cache"`
	Concurrency  ConcurrencyConfig  `mapstructure:"concurrency" yaml:"concurrency"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting" yaml:"rate_limiting"`
	LLM          LLMConfig          `mapstructure:"llm" yaml:"llm"`
	Output       OutputConfig       `mapstructure:"output" yaml:"output"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
}

type HTTPConfig struct {
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent     string        `mapstructure:"user_agent" yaml:"user_agent"`
	MaxBodyBytes  int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	InsecureTLS   bool          `mapstructure:"insecure_tls" yaml:"insecure_tls"`
	RespectRobots bool          `mapstructure:"respect_robots" yaml:"respect_robots"`
	MaxRetries    int           `mapstructure:"max_retries" yaml:"max_retries"`
	HTTPProxy     string        `mapstructure:"http_proxy" yaml:"http_proxy,omitempty"`
	HTTPSProxy    string        `mapstructure:"https_proxy" yaml:"https_proxy,omitempty"`
	NoProxy       string        `mapstructure:"no_proxy" yaml:"no_proxy,omitempty"`
}

type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Dir       string        `mapstructure:"dir" yaml:"dir"`
	MemoryTTL time.Duration `mapstructure:"memory_ttl" yaml:"memory_ttl"`
	DiskTTL   time.Duration `mapstructure:"disk_ttl" yaml:"disk_ttl"`
	RedisAddr string        `mapstructure:"redis_addr" yaml:"redis_addr,omitempty"` // Empty disables the redis layer
	RedisDB   int           `mapstructure:"redis_db" yaml:"redis_db"`
}

type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

type RateLimitingConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size" yaml:"burst_size"`
}

type LLMConfig struct {
	Provider        string `mapstructure:"provider" yaml:"provider"` // "" disables
	Model           string `mapstructure:"model" yaml:"model"`
	APIKey          string `mapstructure:"api_key" yaml:"-"`
	BaseURL         string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Timeout         int    `mapstructure:"timeout" yaml:"timeout"` // seconds
	MaxTokens       int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	StrictCitations bool   `mapstructure:"strict_citations" yaml:"strict_citations"`
}

type OutputConfig struct {
	Verbose            bool `mapstructure:"verbose" yaml:"verbose"`
	IncludeFooter      bool `mapstructure:"include_footer" yaml:"include_footer"`
	DuplicateThreshold int  `mapstructure:"duplicate_threshold" yaml:"duplicate_threshold"` // TLSH distance
}

type LoggingConfig struct {
	Level    string `mapstructure:"level" yaml:"level"`       // debug, info, warn, error
	Encoding string `mapstructure:"encoding" yaml:"encoding"` // console or json
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Omen/0.1 (+https://github.com/ppiankov/omen)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
			MaxRetries:    3,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".omen-cache",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		LLM: LLMConfig{
			Timeout:         30,
			MaxTokens:       800,
			StrictCitations: true,
		},
		Output: OutputConfig{
			IncludeFooter:      true,
			DuplicateThreshold: 50,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}
