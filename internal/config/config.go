package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration. The gateway server, the
// background worker and the pushctl client each read the sections they need.
type Config struct {
	Server              ServerConfig              `mapstructure:"server"`
	Auth                AuthConfig                `mapstructure:"auth"`
	CORS                CORSConfig                `mapstructure:"cors"`
	RateLimit           RateLimitConfig           `mapstructure:"rate_limit"`
	Redis               RedisConfig               `mapstructure:"redis"`
	Supabase            SupabaseConfig            `mapstructure:"supabase"`
	Queue               QueueConfig               `mapstructure:"queue"`
	SubscriberRateLimit SubscriberRateLimitConfig `mapstructure:"subscriber_rate_limit"`
	VAPID               VAPIDConfig               `mapstructure:"vapid"`
	Push                PushConfig                `mapstructure:"push"`
	Worker              WorkerConfig              `mapstructure:"worker"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// AuthConfig holds API key authentication settings.
type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SupabaseConfig holds Supabase project settings.
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// QueueConfig holds worker queue settings.
type QueueConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MaxRetry    int `mapstructure:"max_retry"`
}

// SubscriberRateLimitConfig limits registrar writes per subscriber.
type SubscriberRateLimitConfig struct {
	MaxPerHour int `mapstructure:"max_per_hour"`
}

// VAPIDConfig holds the application server key pair served by the gateway.
type VAPIDConfig struct {
	PublicKey  string `mapstructure:"public_key"`
	PrivateKey string `mapstructure:"private_key"`
}

// PushConfig holds client-side subscription settings used by pushctl.
type PushConfig struct {
	GatewayURL              string `mapstructure:"gateway_url"`
	APIKey                  string `mapstructure:"api_key"`
	UserID                  string `mapstructure:"user_id"`
	VAPIDPublicKey          string `mapstructure:"vapid_public_key"`
	Scope                   string `mapstructure:"scope"`
	Permission              string `mapstructure:"permission"`
	PushServiceURL          string `mapstructure:"push_service_url"`
	WorkerTimeoutMs         int    `mapstructure:"worker_timeout_ms"`
	StatusTimeoutMs         int    `mapstructure:"status_timeout_ms"`
	KeyCacheTTLSec          int    `mapstructure:"key_cache_ttl_sec"`
	UnregisterOnUnsubscribe bool   `mapstructure:"unregister_on_unsubscribe"`
}

// WorkerTimeout returns the bounded worker wait for subscribe and unsubscribe.
func (p PushConfig) WorkerTimeout() time.Duration {
	return time.Duration(p.WorkerTimeoutMs) * time.Millisecond
}

// StatusTimeout returns the bounded worker wait for the status check.
func (p PushConfig) StatusTimeout() time.Duration {
	return time.Duration(p.StatusTimeoutMs) * time.Millisecond
}

// KeyCacheTTL returns how long a resolved VAPID key is reused. Zero means forever.
func (p PushConfig) KeyCacheTTL() time.Duration {
	return time.Duration(p.KeyCacheTTLSec) * time.Second
}

// WorkerConfig holds background worker display settings.
type WorkerConfig struct {
	// DisplayURLs are shoutrrr service URLs notifications are forwarded to.
	DisplayURLs []string `mapstructure:"display_urls"`
	// OpenBrowser opens the click target in the default browser.
	OpenBrowser bool `mapstructure:"open_browser"`
	// AppURL is the base URL the click target route is resolved against.
	AppURL string `mapstructure:"app_url"`
}

// Load reads configuration from config.yaml and environment variables.
// Environment variables use the TASKPUSH_ prefix and underscore separators.
// Example: TASKPUSH_PUSH_GATEWAY_URL overrides push.gateway_url in config.yaml.
func Load() (*Config, error) {
	v := viper.New()

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Load .env file if it exists
	_ = godotenv.Load()

	v.SetEnvPrefix("TASKPUSH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional, env vars can provide everything)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "X-API-Key", "X-User-ID", "X-Request-ID"})
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.service_key", "")
	v.SetDefault("vapid.public_key", "")
	v.SetDefault("vapid.private_key", "")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.max_retry", 3)
	v.SetDefault("subscriber_rate_limit.max_per_hour", 20)
	v.SetDefault("push.gateway_url", "http://localhost:8081")
	v.SetDefault("push.api_key", "")
	v.SetDefault("push.user_id", "")
	v.SetDefault("push.vapid_public_key", "")
	v.SetDefault("push.scope", "/")
	v.SetDefault("push.permission", "granted")
	v.SetDefault("push.push_service_url", "https://push.taskpush.local/send")
	v.SetDefault("push.worker_timeout_ms", 5000)
	v.SetDefault("push.status_timeout_ms", 1000)
	v.SetDefault("push.key_cache_ttl_sec", 0)
	v.SetDefault("push.unregister_on_unsubscribe", false)
	v.SetDefault("worker.open_browser", true)
	v.SetDefault("worker.app_url", "http://localhost:5173")
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Comma-separated lists arrive as a single string from env vars.
	if len(cfg.Auth.APIKeys) == 0 {
		cfg.Auth.APIKeys = splitList(v.GetString("auth.api_keys"))
	}
	if len(cfg.Worker.DisplayURLs) == 0 {
		cfg.Worker.DisplayURLs = splitList(v.GetString("worker.display_urls"))
	}

	cfg.VAPID.PublicKey = strings.TrimSpace(cfg.VAPID.PublicKey)
	cfg.Push.VAPIDPublicKey = strings.TrimSpace(cfg.Push.VAPIDPublicKey)

	return &cfg, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
