package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Auth        AuthConfig        `yaml:"auth"`
	Limits      LimitsConfig      `yaml:"limits"`
	Models      ModelsConfig      `yaml:"models"`
	Inference   InferenceConfig   `yaml:"inference"`
	ResultCache ResultCacheConfig `yaml:"resultCache"`
	History     HistoryConfig     `yaml:"history"`
	Archive     ArchiveConfig     `yaml:"archive"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// AuthConfig enables bearer token checks when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"`
}

// LimitsConfig bounds request payloads.
type LimitsConfig struct {
	MaxTextChars int   `yaml:"maxTextChars"`
	MaxFileBytes int64 `yaml:"maxFileBytes"`
	MaxPDFPages  int   `yaml:"maxPdfPages"`
}

// ModelsConfig names the checkpoints used per operation.
type ModelsConfig struct {
	TrainedModelPath     string `yaml:"trainedModelPath"`
	TrainedTokenizerPath string `yaml:"trainedTokenizerPath"`
	SummaryBaseModel     string `yaml:"summaryBaseModel"`
	ParaphraseModel      string `yaml:"paraphraseModel"`
	CacheDir             string `yaml:"cacheDir"`
}

// InferenceConfig points at the model runtime. An empty BaseURL selects the
// local lead engine.
type InferenceConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	APIKey  string        `yaml:"apiKey"`
	Timeout time.Duration `yaml:"timeout"`
}

// ResultCacheConfig controls summary caching.
type ResultCacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
	Valkey  ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// HistoryConfig selects where runs are logged.
type HistoryConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ArchiveConfig configures the S3-compatible upload archive.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_WRITE_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.WriteTimeout = parsed
		}
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("MAX_TEXT_CHARS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxTextChars = parsed
		}
	}
	if v := os.Getenv("MAX_FILE_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Limits.MaxFileBytes = parsed
		}
	}
	if v := os.Getenv("MAX_PDF_PAGES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxPDFPages = parsed
		}
	}
	if v := os.Getenv("TRAINED_MODEL_PATH"); v != "" {
		cfg.Models.TrainedModelPath = v
	}
	if v := os.Getenv("TRAINED_TOKENIZER_PATH"); v != "" {
		cfg.Models.TrainedTokenizerPath = v
	}
	if v := os.Getenv("SUMMARY_BASE_MODEL"); v != "" {
		cfg.Models.SummaryBaseModel = v
	}
	if v := os.Getenv("PARAPHRASE_MODEL"); v != "" {
		cfg.Models.ParaphraseModel = v
	}
	if v := os.Getenv("TRANSFORMERS_CACHE"); v != "" {
		cfg.Models.CacheDir = v
	}
	if v := os.Getenv("INFERENCE_BASE_URL"); v != "" {
		cfg.Inference.BaseURL = v
	}
	if v := os.Getenv("INFERENCE_API_KEY"); v != "" {
		cfg.Inference.APIKey = v
	}
	if v := os.Getenv("INFERENCE_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Inference.Timeout = parsed
		}
	}
	if v := os.Getenv("RESULT_CACHE_ENABLED"); v != "" {
		cfg.ResultCache.Enabled = parseBool(v)
	}
	if v := os.Getenv("RESULT_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.ResultCache.TTL = parsed
		}
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.ResultCache.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.ResultCache.Valkey.Addr = v
	}
	if v := os.Getenv("HISTORY_POSTGRES_DSN"); v != "" {
		cfg.History.Postgres.DSN = v
	}
	if v := os.Getenv("HISTORY_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.History.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("HISTORY_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.History.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("ARCHIVE_ENABLED"); v != "" {
		cfg.Archive.Enabled = parseBool(v)
	}
	if v := os.Getenv("ARCHIVE_ENDPOINT"); v != "" {
		cfg.Archive.Endpoint = v
	}
	if v := os.Getenv("ARCHIVE_ACCESS_KEY"); v != "" {
		cfg.Archive.AccessKey = v
	}
	if v := os.Getenv("ARCHIVE_SECRET_KEY"); v != "" {
		cfg.Archive.SecretKey = v
	}
	if v := os.Getenv("ARCHIVE_BUCKET"); v != "" {
		cfg.Archive.Bucket = v
	}
	if v := os.Getenv("ARCHIVE_REGION"); v != "" {
		cfg.Archive.Region = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   3 * time.Minute,
			AllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 30,
				Burst:             10,
			},
		},
		Limits: LimitsConfig{
			MaxTextChars: 10000,
			MaxFileBytes: 5 * 1024 * 1024,
			MaxPDFPages:  10,
		},
		Models: ModelsConfig{
			TrainedModelPath:     "artifacts/model_trainer/pegasus-diaglogsum-model",
			TrainedTokenizerPath: "artifacts/model_trainer/tokenizer",
			SummaryBaseModel:     "google/pegasus-cnn_dailymail",
			ParaphraseModel:      "t5-base",
		},
		Inference: InferenceConfig{
			Timeout: 3 * time.Minute,
		},
		ResultCache: ResultCacheConfig{
			Enabled: true,
			TTL:     6 * time.Hour,
		},
		History: HistoryConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Archive: ArchiveConfig{
			Region: "auto",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.Limits.MaxTextChars <= 0 {
		return errors.New("limits.maxTextChars must be positive")
	}
	if c.Limits.MaxFileBytes <= 0 {
		return errors.New("limits.maxFileBytes must be positive")
	}
	if c.Limits.MaxPDFPages <= 0 {
		return errors.New("limits.maxPdfPages must be positive")
	}
	if strings.TrimSpace(c.Models.SummaryBaseModel) == "" {
		return errors.New("models.summaryBaseModel cannot be empty")
	}
	if strings.TrimSpace(c.Models.ParaphraseModel) == "" {
		return errors.New("models.paraphraseModel cannot be empty")
	}
	if c.Inference.Timeout < 0 {
		return errors.New("inference.timeout cannot be negative")
	}
	if c.ResultCache.TTL < 0 {
		return errors.New("resultCache.ttl cannot be negative")
	}
	if c.ResultCache.Valkey.Enabled && strings.TrimSpace(c.ResultCache.Valkey.Addr) == "" {
		return errors.New("resultCache.valkey.addr cannot be empty when valkey is enabled")
	}
	if c.History.Postgres.MinConns > c.History.Postgres.MaxConns && c.History.Postgres.MaxConns > 0 {
		return errors.New("history.postgres.minConns cannot exceed maxConns")
	}
	if c.Archive.Enabled {
		if strings.TrimSpace(c.Archive.Endpoint) == "" || strings.TrimSpace(c.Archive.Bucket) == "" {
			return errors.New("archive.endpoint and archive.bucket are required when the archive is enabled")
		}
	}
	return nil
}
