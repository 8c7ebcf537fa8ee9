package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Contact       ContactConfig
	RateLimit     RateLimitConfig
	Redis         RedisConfig
	Notification  NotificationConfig
	Store         StoreConfig
	ObjectStorage ObjectStorageConfig
	EventTriggers EventTriggersConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	AllowedOrigins []string
}

type ContactConfig struct {
	OwnerEmail             string
	FromEmail              string
	AutoReplyEnabled       bool
	DispatchTimeoutSeconds int
}

// DispatchTimeout bounds each notification send
func (c ContactConfig) DispatchTimeout() time.Duration {
	if c.DispatchTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.DispatchTimeoutSeconds) * time.Second
}

type RateLimitConfig struct {
	Backend              string // memory | redis
	MaxAttempts          int
	WindowSeconds        int
	SweepIntervalSeconds int
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

func (c RateLimitConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type NotificationConfig struct {
	Driver       string // log | webhook | nats
	WebhookURL   string
	WebhookToken string
	NATSURL      string
	NATSSubject  string
}

type StoreConfig struct {
	Driver         string // none | postgres | sqlite | s3
	DatabaseURL    string
	DatabaseCA     string
	MaxConns       int32
	MinConns       int32
	SQLitePath     string
	TimeoutSeconds int
}

type ObjectStorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
	PathStyle       bool
}

type EventTriggersConfig struct {
	SubmissionAcceptedTriggerURL string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	AlloyEndpoint     string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := read()

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadForMigrations reads configuration for the migrate command, which only
// needs the database connection settings
func LoadForMigrations() (*Config, error) {
	cfg := read()
	if cfg.Store.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func read() *Config {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8081")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")

	v.SetDefault("CONTACT_FROM_EMAIL", "noreply@localhost")
	v.SetDefault("CONTACT_AUTO_REPLY_ENABLED", true)
	v.SetDefault("CONTACT_DISPATCH_TIMEOUT_SECONDS", 10)

	v.SetDefault("RATE_LIMIT_BACKEND", "memory")
	v.SetDefault("CONTACT_RATE_LIMIT_MAX", 5)
	v.SetDefault("CONTACT_RATE_LIMIT_WINDOW_SECONDS", 900) // 15 minutes
	v.SetDefault("CONTACT_RATE_LIMIT_SWEEP_SECONDS", 60)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("NOTIFICATION_DRIVER", "log")
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("NATS_SUBJECT", "portfolio.contact.notifications")

	v.SetDefault("STORE_DRIVER", "none")
	v.SetDefault("SQLITE_PATH", "data/submissions.db")
	v.SetDefault("STORE_TIMEOUT_SECONDS", 5)
	v.SetDefault("OBJECT_STORAGE_REGION", "us-east-1")
	v.SetDefault("OBJECT_STORAGE_PATH_STYLE", true)

	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_BE_SERVICE_NAME", "portfolio-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "portfolio")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "portfolio-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		Contact: ContactConfig{
			OwnerEmail:             v.GetString("CONTACT_OWNER_EMAIL"),
			FromEmail:              v.GetString("CONTACT_FROM_EMAIL"),
			AutoReplyEnabled:       v.GetBool("CONTACT_AUTO_REPLY_ENABLED"),
			DispatchTimeoutSeconds: v.GetInt("CONTACT_DISPATCH_TIMEOUT_SECONDS"),
		},
		RateLimit: RateLimitConfig{
			Backend:              strings.ToLower(v.GetString("RATE_LIMIT_BACKEND")),
			MaxAttempts:          v.GetInt("CONTACT_RATE_LIMIT_MAX"),
			WindowSeconds:        v.GetInt("CONTACT_RATE_LIMIT_WINDOW_SECONDS"),
			SweepIntervalSeconds: v.GetInt("CONTACT_RATE_LIMIT_SWEEP_SECONDS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Notification: NotificationConfig{
			Driver:       strings.ToLower(v.GetString("NOTIFICATION_DRIVER")),
			WebhookURL:   v.GetString("NOTIFICATION_WEBHOOK_URL"),
			WebhookToken: v.GetString("NOTIFICATION_WEBHOOK_TOKEN"),
			NATSURL:      v.GetString("NATS_URL"),
			NATSSubject:  v.GetString("NATS_SUBJECT"),
		},
		Store: StoreConfig{
			Driver:         strings.ToLower(v.GetString("STORE_DRIVER")),
			DatabaseURL:    v.GetString("DATABASE_URL"),
			DatabaseCA:     v.GetString("DATABASE_CA_CERT_PATH"),
			MaxConns:       10,
			MinConns:       1,
			SQLitePath:     v.GetString("SQLITE_PATH"),
			TimeoutSeconds: v.GetInt("STORE_TIMEOUT_SECONDS"),
		},
		ObjectStorage: ObjectStorageConfig{
			AccessKeyID:     v.GetString("OBJECT_STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("OBJECT_STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("OBJECT_STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("OBJECT_STORAGE_ENDPOINT"),
			Region:          v.GetString("OBJECT_STORAGE_REGION"),
			PathStyle:       v.GetBool("OBJECT_STORAGE_PATH_STYLE"),
		},
		EventTriggers: EventTriggersConfig{
			SubmissionAcceptedTriggerURL: v.GetString("SUBMISSION_ACCEPTED_TRIGGER_URL"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			AlloyEndpoint:     v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	return cfg
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	// Server configuration
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	if c.Contact.OwnerEmail == "" {
		return fmt.Errorf("CONTACT_OWNER_EMAIL is required")
	}

	if c.RateLimit.MaxAttempts <= 0 {
		return fmt.Errorf("CONTACT_RATE_LIMIT_MAX must be positive")
	}
	if c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("CONTACT_RATE_LIMIT_WINDOW_SECONDS must be positive")
	}
	switch c.RateLimit.Backend {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required when RATE_LIMIT_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unsupported RATE_LIMIT_BACKEND %q", c.RateLimit.Backend)
	}

	switch c.Notification.Driver {
	case "log":
	case "webhook":
		if c.Notification.WebhookURL == "" {
			return fmt.Errorf("NOTIFICATION_WEBHOOK_URL is required when NOTIFICATION_DRIVER=webhook")
		}
	case "nats":
		if c.Notification.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required when NOTIFICATION_DRIVER=nats")
		}
	default:
		return fmt.Errorf("unsupported NOTIFICATION_DRIVER %q", c.Notification.Driver)
	}

	switch c.Store.Driver {
	case "none":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER=sqlite")
		}
	case "s3":
		if c.ObjectStorage.BucketName == "" {
			return fmt.Errorf("OBJECT_STORAGE_BUCKET_NAME is required when STORE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

// StoreTimeout bounds one persistence attempt sequence
func (c *Config) StoreTimeout() time.Duration {
	if c.Store.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Store.TimeoutSeconds) * time.Second
}

// splitList parses a comma-separated list, dropping blanks
func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
