package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Planner  PlannerConfig  `yaml:"planner"`
	POI      POIConfig      `yaml:"poi"`
	Weather  WeatherConfig  `yaml:"weather"`
	Outbound OutboundConfig `yaml:"outbound"`
	Cache    CacheConfig    `yaml:"cache"`
	Postgres PostgresConfig `yaml:"postgres"`
	Session  SessionConfig  `yaml:"session"`
	LLM      LLMConfig      `yaml:"llm"`
	Export   ExportConfig   `yaml:"export"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig re-runs mutating requests that lost an optimistic-concurrency race.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// PlannerConfig holds planning defaults.
type PlannerConfig struct {
	DefaultCity string `yaml:"defaultCity"`
}

// POIConfig points at the Overpass API.
type POIConfig struct {
	OverpassURL string            `yaml:"overpassUrl"`
	Areas       map[string]string `yaml:"areas"`
	Timeout     time.Duration     `yaml:"timeout"`
	CacheTTL    time.Duration     `yaml:"cacheTtl"`
}

// WeatherConfig points at Open-Meteo.
type WeatherConfig struct {
	BaseURL string              `yaml:"baseUrl"`
	Cities  map[string]GeoPoint `yaml:"cities"`
	MaxDays int                 `yaml:"maxDays"`
	Timeout time.Duration       `yaml:"timeout"`
}

// GeoPoint is a configured city centre.
type GeoPoint struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// OutboundConfig bounds retries of calls to external APIs.
type OutboundConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
}

// CacheConfig selects the candidate cache backend.
type CacheConfig struct {
	Valkey ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PostgresConfig contains DSN and pooling settings. An empty DSN keeps trips in memory.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// SessionConfig controls signed trip handles.
type SessionConfig struct {
	Enabled bool          `yaml:"enabled"`
	Secret  string        `yaml:"secret"`
	TTL     time.Duration `yaml:"ttl"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ExportConfig drives itinerary export.
type ExportConfig struct {
	WebhookURL string        `yaml:"webhookUrl"`
	Timeout    time.Duration `yaml:"timeout"`
	Archive    ArchiveConfig `yaml:"archive"`
}

// ArchiveConfig locates the S3-compatible archive bucket.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads configuration from an optional .env file, a YAML file and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

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
	envString("HTTP_ADDRESS", &cfg.HTTP.Address)
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	envBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	envInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	envInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	envBool("HTTP_RETRY_ENABLED", &cfg.HTTP.Retry.Enabled)
	envInt("HTTP_RETRY_MAX_ATTEMPTS", &cfg.HTTP.Retry.MaxAttempts)
	envDuration("HTTP_RETRY_BASE_BACKOFF", &cfg.HTTP.Retry.BaseBackoff)

	envString("PLANNER_DEFAULT_CITY", &cfg.Planner.DefaultCity)

	envString("OVERPASS_URL", &cfg.POI.OverpassURL)
	envDuration("POI_TIMEOUT", &cfg.POI.Timeout)
	envDuration("POI_CACHE_TTL", &cfg.POI.CacheTTL)

	envString("WEATHER_BASE_URL", &cfg.Weather.BaseURL)
	envInt("WEATHER_MAX_DAYS", &cfg.Weather.MaxDays)
	envDuration("WEATHER_TIMEOUT", &cfg.Weather.Timeout)

	envInt("OUTBOUND_MAX_ATTEMPTS", &cfg.Outbound.MaxAttempts)
	envDuration("OUTBOUND_BASE_BACKOFF", &cfg.Outbound.BaseBackoff)

	envBool("VALKEY_ENABLED", &cfg.Cache.Valkey.Enabled)
	envString("VALKEY_ADDR", &cfg.Cache.Valkey.Addr)

	envString("POSTGRES_DSN", &cfg.Postgres.DSN)
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}

	envBool("SESSION_ENABLED", &cfg.Session.Enabled)
	envString("SESSION_SECRET", &cfg.Session.Secret)
	envDuration("SESSION_TTL", &cfg.Session.TTL)

	envString("LLM_API_KEY", &cfg.LLM.APIKey)
	if cfg.LLM.APIKey == "" {
		envString("OPENAI_API_KEY", &cfg.LLM.APIKey)
	}
	envString("LLM_BASE_URL", &cfg.LLM.BaseURL)
	envString("LLM_MODEL", &cfg.LLM.Model)
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}

	envString("N8N_WEBHOOK_URL", &cfg.Export.WebhookURL)
	envDuration("EXPORT_TIMEOUT", &cfg.Export.Timeout)
	envBool("ARCHIVE_ENABLED", &cfg.Export.Archive.Enabled)
	envString("ARCHIVE_ENDPOINT", &cfg.Export.Archive.Endpoint)
	envString("ARCHIVE_ACCESS_KEY", &cfg.Export.Archive.AccessKey)
	envString("ARCHIVE_SECRET_KEY", &cfg.Export.Archive.SecretKey)
	envString("ARCHIVE_BUCKET", &cfg.Export.Archive.Bucket)
	envString("ARCHIVE_REGION", &cfg.Export.Archive.Region)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 45 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 50 * time.Millisecond,
				Exclude: []string{
					"/api/v1/commands/voice",
				},
			},
		},
		Planner: PlannerConfig{
			DefaultCity: "Delhi",
		},
		POI: POIConfig{
			OverpassURL: "https://overpass-api.de/api/interpreter",
			Areas:       map[string]string{"delhi": "Delhi"},
			Timeout:     25 * time.Second,
			CacheTTL:    6 * time.Hour,
		},
		Weather: WeatherConfig{
			BaseURL: "https://api.open-meteo.com/v1/forecast",
			Cities:  map[string]GeoPoint{"delhi": {Lat: 28.6139, Lon: 77.2090}},
			MaxDays: 7,
			Timeout: 10 * time.Second,
		},
		Outbound: OutboundConfig{
			MaxAttempts: 3,
			BaseBackoff: 200 * time.Millisecond,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Session: SessionConfig{
			TTL: 24 * time.Hour,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0,
			Timeout:     30 * time.Second,
		},
		Export: ExportConfig{
			Timeout: 10 * time.Second,
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
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if strings.TrimSpace(c.POI.OverpassURL) == "" {
		return errors.New("poi.overpassUrl cannot be empty")
	}
	if len(c.POI.Areas) == 0 {
		return errors.New("poi.areas must list at least one city")
	}
	if c.POI.CacheTTL < 0 {
		return errors.New("poi.cacheTtl cannot be negative")
	}
	if strings.TrimSpace(c.Weather.BaseURL) == "" {
		return errors.New("weather.baseUrl cannot be empty")
	}
	if c.Weather.MaxDays < 0 {
		return errors.New("weather.maxDays cannot be negative")
	}
	if c.Outbound.MaxAttempts <= 0 {
		return errors.New("outbound.maxAttempts must be positive")
	}
	if c.Cache.Valkey.Enabled && strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
		return errors.New("cache.valkey.addr cannot be empty when valkey is enabled")
	}
	if c.Session.Enabled && len(strings.TrimSpace(c.Session.Secret)) < 16 {
		return errors.New("session.secret must be at least 16 characters when sessions are enabled")
	}
	if c.Export.Archive.Enabled && strings.TrimSpace(c.Export.Archive.Bucket) == "" {
		return errors.New("export.archive.bucket cannot be empty when the archive is enabled")
	}
	return nil
}
