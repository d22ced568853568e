package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL              string
	Port                     string
	GoEnv                    string
	LogLevel                 string
	Auth0Domain              string
	Auth0Audience            string
	AWSRegion                string
	AWSS3Bucket              string
	AWSAccessKeyID           string
	AWSSecretAccessKey       string
	UploadDir                string
	StaticDir                string
	CORSAllowedOrigins       []string
	TrustedProxies           []string
	OpenAIAPIKey             string
	OpenAIModel              string
	OpenAIBaseURL            string
	OpenAIMaxTokens          int
	PaymentProvider          string
	PaymentCurrency          string
	StripeSecretKey          string
	MidtransServerKey        string
	MidtransEnv              string
	PlaceholderUserID        string
	SeedDatabase             bool
	QueryCacheTTL            time.Duration
	AIRateLimitPerSec        float64
	AIRateLimitBurst         int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
}

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			// Deployed environments set variables directly
			logrus.Info("No .env file found, using system environment variables")
		}
	} else {
		logrus.Infof("Loaded configuration from %s", envFile)
	}

	config := FromEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// FromEnv builds a Config from the process environment without touching .env files
func FromEnv() *Config {
	return &Config{
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		Port:                     getEnv("PORT", "8080"),
		GoEnv:                    getEnv("GO_ENV", "development"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		Auth0Domain:              getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:            getEnv("AUTH0_AUDIENCE", ""),
		AWSRegion:                getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:              getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:           getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:       getEnv("AWS_SECRET_ACCESS_KEY", ""),
		UploadDir:                getEnv("UPLOAD_DIR", "./uploads"),
		StaticDir:                getEnv("STATIC_DIR", ""),
		CORSAllowedOrigins:       getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:           getEnvList("TRUSTED_PROXIES", nil),
		OpenAIAPIKey:             getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:              getEnv("OPENAI_MODEL", "gpt-5"),
		OpenAIBaseURL:            getEnv("OPENAI_BASE_URL", ""),
		OpenAIMaxTokens:          getEnvInt("OPENAI_MAX_TOKENS", 2048),
		PaymentProvider:          strings.ToLower(getEnv("PAYMENT_PROVIDER", "stripe")),
		PaymentCurrency:          strings.ToLower(getEnv("PAYMENT_CURRENCY", "usd")),
		StripeSecretKey:          getEnv("STRIPE_SECRET_KEY", ""),
		MidtransServerKey:        getEnv("MIDTRANS_SERVER_KEY", ""),
		MidtransEnv:              getEnv("MIDTRANS_ENV", "sandbox"),
		PlaceholderUserID:        getEnv("PLACEHOLDER_USER_ID", "temp-user-001"),
		SeedDatabase:             getEnvBool("SEED_DATABASE", true),
		QueryCacheTTL:            time.Duration(getEnvInt("QUERY_CACHE_TTL_SECONDS", 30)) * time.Second,
		AIRateLimitPerSec:        getEnvFloat("AI_RATE_LIMIT_PER_SEC", 1),
		AIRateLimitBurst:         getEnvInt("AI_RATE_LIMIT_BURST", 5),
		DBMaxOpenConns:           getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:           getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetimeMinutes: getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30),
	}
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.PaymentProvider {
	case "stripe", "midtrans":
	default:
		return fmt.Errorf("PAYMENT_PROVIDER must be stripe or midtrans, got %q", c.PaymentProvider)
	}
	if c.OpenAIMaxTokens <= 0 {
		return fmt.Errorf("OPENAI_MAX_TOKENS must be positive")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// AuthEnabled reports whether JWTs should be validated against Auth0
func (c *Config) AuthEnabled() bool {
	return c.Auth0Domain != "" && c.Auth0Audience != ""
}

// UseS3 reports whether diagnosis photos go to S3 instead of the local upload dir
func (c *Config) UseS3() bool {
	return c.AWSS3Bucket != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping blank entries
func getEnvList(key string, defaultValue []string) []string {
	var values []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logrus.Warnf("invalid integer for %s (%q), using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logrus.Warnf("invalid number for %s (%q), using default %v", key, value, defaultValue)
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
