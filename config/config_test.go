package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("PORT", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("PAYMENT_PROVIDER", "")
	t.Setenv("PLACEHOLDER_USER_ID", "")
	t.Setenv("QUERY_CACHE_TTL_SECONDS", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("TRUSTED_PROXIES", "")

	cfg := FromEnv()

	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Nil(t, cfg.TrustedProxies)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gpt-5", cfg.OpenAIModel)
	assert.Equal(t, 2048, cfg.OpenAIMaxTokens)
	assert.Equal(t, "stripe", cfg.PaymentProvider)
	assert.Equal(t, "usd", cfg.PaymentCurrency)
	assert.Equal(t, "temp-user-001", cfg.PlaceholderUserID)
	assert.Equal(t, 30*time.Second, cfg.QueryCacheTTL)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	t.Setenv("PAYMENT_PROVIDER", "Midtrans")
	t.Setenv("OPENAI_MAX_TOKENS", "512")
	t.Setenv("AI_RATE_LIMIT_PER_SEC", "2.5")
	t.Setenv("SEED_DATABASE", "false")
	t.Setenv("QUERY_CACHE_TTL_SECONDS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.smartassist.ai, ,http://localhost:5173")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8")

	cfg := FromEnv()

	assert.Equal(t, []string{"https://app.smartassist.ai", "http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)

	assert.Equal(t, "midtrans", cfg.PaymentProvider)
	assert.Equal(t, 512, cfg.OpenAIMaxTokens)
	assert.Equal(t, 2.5, cfg.AIRateLimitPerSec)
	assert.False(t, cfg.SeedDatabase)
	assert.Equal(t, 30*time.Second, cfg.QueryCacheTTL, "invalid values fall back to the default")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"missing database url", Config{PaymentProvider: "stripe", OpenAIMaxTokens: 1}, "DATABASE_URL is required"},
		{"unknown payment provider", Config{DatabaseURL: "file::memory:", PaymentProvider: "paypal", OpenAIMaxTokens: 1}, "PAYMENT_PROVIDER"},
		{"zero max tokens", Config{DatabaseURL: "file::memory:", PaymentProvider: "stripe"}, "OPENAI_MAX_TOKENS"},
		{"valid", Config{DatabaseURL: "file::memory:", PaymentProvider: "midtrans", OpenAIMaxTokens: 10}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := &Config{GoEnv: "production"}
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsTest())

	cfg.GoEnv = "test"
	assert.True(t, cfg.IsTest())
}

func TestFeatureSwitches(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.AuthEnabled())
	assert.False(t, cfg.UseS3())

	cfg.Auth0Domain = "tenant.auth0.com"
	assert.False(t, cfg.AuthEnabled(), "audience is required too")
	cfg.Auth0Audience = "https://api.smartassist.ai"
	assert.True(t, cfg.AuthEnabled())

	cfg.AWSS3Bucket = "photos"
	assert.True(t, cfg.UseS3())
}

func TestNewLogger(t *testing.T) {
	log := NewLogger(&Config{LogLevel: "debug", GoEnv: "production"})
	assert.Equal(t, "debug", log.GetLevel().String())

	log = NewLogger(&Config{LogLevel: "loud", GoEnv: "development"})
	assert.Equal(t, "info", log.GetLevel().String())
}
