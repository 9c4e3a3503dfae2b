package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	RateLimit   RateLimitConfig
	Antiforgery AntiforgeryConfig
	Bot         BotConfig
	Email       EmailConfig
	Webhook     WebhookConfig
	Export      ExportConfig
	Admin       AdminConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
	TrustedProxies []string
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// RedisConfig selects the backing for token and rate-limit state.
// With no address configured the service runs on the in-memory store,
// which is only correct for single-instance deployments.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

type AntiforgeryConfig struct {
	TokenTTL        time.Duration
	CleanupInterval time.Duration
}

type BotConfig struct {
	MinSubmitTime time.Duration
}

type EmailConfig struct {
	AWSRegion     string
	FromAddress   string
	NotifyAddress string
}

type WebhookConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration
}

type ExportConfig struct {
	CSVDir string
}

// AdminConfig guards the lead query endpoints. An empty key disables them.
type AdminConfig struct {
	APIKey string
}

type LogConfig struct {
	Dir string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			AllowedOrigins: parseAllowedOrigins(env),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),
		},
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "leadgate"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			MaxRequests: getEnvAsInt("RATE_LIMIT_MAX", 10),
			Window:      getEnvAsDuration("RATE_LIMIT_WINDOW", 10*time.Minute),
		},
		Antiforgery: AntiforgeryConfig{
			TokenTTL:        getEnvAsDuration("CSRF_TOKEN_TTL", 1*time.Hour),
			CleanupInterval: getEnvAsDuration("CSRF_CLEANUP_INTERVAL", 5*time.Minute),
		},
		Bot: BotConfig{
			MinSubmitTime: getEnvAsDuration("MIN_SUBMIT_TIME", 3*time.Second),
		},
		Email: EmailConfig{
			AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
			FromAddress:   getEnv("EMAIL_FROM", ""),
			NotifyAddress: getEnv("NOTIFY_EMAIL", ""),
		},
		Webhook: WebhookConfig{
			URL:     getEnv("WEBHOOK_URL", ""),
			Secret:  getEnv("WEBHOOK_SECRET", ""),
			Timeout: getEnvAsDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		},
		Export: ExportConfig{
			CSVDir: getEnv("CSV_DIR", "./data"),
		},
		Admin: AdminConfig{
			APIKey: getEnv("ADMIN_API_KEY", ""),
		},
		Log: LogConfig{
			Dir: getEnv("LOG_DIR", "./logs"),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateWebhookSecret(cfg.Webhook, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateWebhookSecret enforces a minimum signing-secret strength whenever
// a webhook target is configured
func validateWebhookSecret(cfg WebhookConfig, env string) error {
	if cfg.URL == "" {
		return nil
	}
	if cfg.Secret == "" {
		return fmt.Errorf("WEBHOOK_SECRET is required when WEBHOOK_URL is set")
	}

	minLength := 16
	if env == "production" {
		minLength = 32
	}
	if len(cfg.Secret) < minLength {
		return fmt.Errorf("WEBHOOK_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(cfg.Secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}
	secretLower := strings.ToLower(cfg.Secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("WEBHOOK_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		originsStr := getEnv("ALLOWED_ORIGINS", "")
		if originsStr == "" {
			return []string{} // No origins allowed until configured
		}
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
