package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Quota modes
const (
	QuotaModeAtomic   = "atomic"
	QuotaModeBaseline = "baseline"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort         string
	ServerHost         string
	CORSAllowedOrigins []string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string

	// Language model gateway
	LLMAPIURL     string
	LLMAPIKey     string
	LLMModel      string
	LLMTimeout    time.Duration
	LLMMaxRetries int

	// Generation pipeline
	QuotaMode             string
	StrictPersistence     bool
	GenerationRatePerHour int

	// Recipe images
	S3BucketName string
	AWSRegion    string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env == Development {
		// a missing .env is fine, the shell environment still applies
		_ = godotenv.Load()
	}

	cfg := &Config{}
	loadFromEnv(cfg)

	if err := loadSecrets(cfg, env); err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DSN builds the postgres connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// PostgresURL builds the postgres URL form used by lib/pq
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Addr returns the host:port the HTTP server listens on
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func loadFromEnv(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", "8080")
	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", "postgres"))
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBUser = getEnv("DB_USER", "postgres")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnv("DB_NAME", "culina")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")
	cfg.SQLitePath = getEnv("SQLITE_PATH", "culina.db")

	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	cfg.RedisPort = getEnv("REDIS_PORT", "6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)

	cfg.JWTSecret = os.Getenv("JWT_SECRET")

	cfg.LLMAPIURL = getEnv("LLM_API_URL", "https://ai.gateway.lovable.dev/v1/chat/completions")
	cfg.LLMAPIKey = os.Getenv("LLM_API_KEY")
	cfg.LLMModel = getEnv("LLM_MODEL", "google/gemini-2.5-flash")
	cfg.LLMTimeout = getEnvDuration("LLM_TIMEOUT", 60*time.Second)
	cfg.LLMMaxRetries = getEnvInt("LLM_MAX_RETRIES", 2)

	cfg.QuotaMode = strings.ToLower(getEnv("QUOTA_MODE", QuotaModeAtomic))
	cfg.StrictPersistence = getEnvBool("STRICT_PERSISTENCE", false)
	cfg.GenerationRatePerHour = getEnvInt("GENERATION_RATE_PER_HOUR", 20)

	cfg.S3BucketName = getEnv("S3_BUCKET_NAME", "")
	cfg.AWSRegion = getEnv("AWS_REGION", "eu-west-3")

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "json")
	if IsDevelopment() && os.Getenv("LOG_FORMAT") == "" {
		cfg.LogFormat = "console"
	}
}

// loadSecrets fills credentials that were not provided through the environment.
// CI only uses environment variables; every other environment falls back to Docker secrets.
func loadSecrets(cfg *Config, env Environment) error {
	if env == CI {
		if cfg.DBPassword == "" {
			cfg.DBPassword = os.Getenv("TEST_DB_PASSWORD")
		}
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = os.Getenv("TEST_JWT_SECRET")
		}
		return nil
	}

	fill := map[string]*string{
		"db_password":    &cfg.DBPassword,
		"jwt_secret":     &cfg.JWTSecret,
		"redis_password": &cfg.RedisPassword,
		"llm_api_key":    &cfg.LLMAPIKey,
		"redis_url":      &cfg.RedisURL,
	}
	for name, target := range fill {
		if *target != "" {
			continue
		}
		value, err := readSecret(name)
		if err != nil {
			if env == Production && isRequiredSecret(name) {
				return fmt.Errorf("failed to read secret %s: %w", name, err)
			}
			continue
		}
		*target = value
	}
	return nil
}

func isRequiredSecret(name string) bool {
	for _, s := range requirements[Production].RequiredSecrets {
		if s == name {
			return true
		}
	}
	return false
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) (string, error) {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	data, err := os.ReadFile(filepath.Join(secretsDir, name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	// bare integers are seconds
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
