package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Logging     LoggingConfig
	Metrics     MetricsConfig
	Payments    PaymentsConfig
	Fulfillment FulfillmentConfig
	Upscale     UpscaleConfig
	Blob        BlobConfig
	Events      EventsConfig
}

type ServerConfig struct {
	Host                    string
	Port                    int
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	GracefulShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type RedisConfig struct {
	URL string
	// Webhook deliveries allowed per source IP per minute. Zero disables limiting.
	WebhookRPM int
}

type LoggingConfig struct {
	Level  string
	Format string // json or text
}

type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// PaymentsConfig carries the Stripe credentials plus the fixed storefront
// pricing: every product sells at one flat price with one flat shipping rate.
type PaymentsConfig struct {
	SecretKey        string
	WebhookSecret    string
	FlatPriceCents   int64
	FlatShippingRate string
	AllowedCountry   string
}

type FulfillmentConfig struct {
	APIKey     string
	BaseURL    string
	ProductUID string
	Currency   string
	// Comma-delimited operator return address, see models.ParseReturnAddress.
	ReturnAddress  string
	RequestTimeout time.Duration
}

type UpscaleConfig struct {
	APIToken     string
	BaseURL      string
	ModelVersion string
	PollInterval time.Duration
	MaxPolls     int
	JobTimeout   time.Duration
}

type BlobConfig struct {
	Dir           string
	PublicBaseURL string
}

type EventsConfig struct {
	WorkerCount    int
	HandlerTimeout time.Duration
	AdminSecret    string
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:                    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                    getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:             getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:            getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:             getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulShutdownTimeout: getEnvDuration("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", 1*time.Hour),
			MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:        getEnv("REDIS_URL", ""),
			WebhookRPM: getEnvInt("WEBHOOK_RPM", 120),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Port:    getEnvInt("METRICS_PORT", 9090),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
		Payments: PaymentsConfig{
			SecretKey:        getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:    getEnv("STRIPE_WEBHOOK_SECRET", ""),
			FlatPriceCents:   getEnvInt64("FLAT_PRICE_CENTS", 4500),
			FlatShippingRate: getEnv("FLAT_SHIPPING_RATE", ""),
			AllowedCountry:   getEnv("SHIPPING_COUNTRY", "US"),
		},
		Fulfillment: FulfillmentConfig{
			APIKey:         getEnv("GELATO_API_KEY", ""),
			BaseURL:        getEnv("GELATO_BASE_URL", "https://order.gelatoapis.com"),
			ProductUID:     getEnv("GELATO_PRODUCT_UID", "framed_poster_mounted_130x180-mm-5x7-inch_black_wood_w12xt22-mm_plexiglass_130x180-mm-5r_170-gsm-65lb-uncoated_4-0_hor"),
			Currency:       getEnv("ORDER_CURRENCY", "USD"),
			ReturnAddress:  getEnv("RETURN_ADDRESS", ""),
			RequestTimeout: getEnvDuration("GELATO_REQUEST_TIMEOUT", 30*time.Second),
		},
		Upscale: UpscaleConfig{
			APIToken:     getEnv("REPLICATE_API_TOKEN", ""),
			BaseURL:      getEnv("REPLICATE_BASE_URL", "https://api.replicate.com"),
			ModelVersion: getEnv("UPSCALE_MODEL_VERSION", "42fed1c4974146d4d2414e2be2c5277c7fcf05fcc3a73abf41610695738c1d7b"),
			PollInterval: getEnvDuration("UPSCALE_POLL_INTERVAL", 1*time.Second),
			MaxPolls:     getEnvInt("UPSCALE_MAX_POLLS", 120),
			JobTimeout:   getEnvDuration("UPSCALE_JOB_TIMEOUT", 4*time.Minute),
		},
		Blob: BlobConfig{
			Dir:           getEnv("BLOB_DIR", "./data/assets"),
			PublicBaseURL: getEnv("BLOB_PUBLIC_BASE_URL", "http://localhost:8080/assets"),
		},
		Events: EventsConfig{
			WorkerCount:    getEnvInt("EVENT_WORKER_COUNT", 4),
			HandlerTimeout: getEnvDuration("EVENT_HANDLER_TIMEOUT", 5*time.Minute),
			AdminSecret:    getEnv("ADMIN_SECRET", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}
	if c.Payments.FlatPriceCents < 1 {
		return fmt.Errorf("flat price must be at least 1 cent")
	}
	if c.Upscale.MaxPolls < 1 {
		return fmt.Errorf("upscale max polls must be at least 1")
	}
	if c.Upscale.PollInterval <= 0 {
		return fmt.Errorf("upscale poll interval must be positive")
	}
	if c.Events.WorkerCount < 1 {
		return fmt.Errorf("event worker count must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
