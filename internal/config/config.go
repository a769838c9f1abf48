package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// App
	Env string // dev / staging / prod

	// HTTP
	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Auth / Security
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int

	// Account lockout
	MaxLoginAttempts int
	LockoutDuration  time.Duration

	// One-time token flows (email verify / password reset)
	VerifyEmailBaseURL    string
	PasswordResetBaseURL  string
	VerifyEmailTokenTTL   time.Duration
	PasswordResetTokenTTL time.Duration

	// Infrastructure
	DBAddr         string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RabbitURL      string
	RabbitExchange string

	// Rate limiting (per identity, fixed window)
	RateLimitPerMinute int
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}

	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}
	cfg.DBAddr = os.Getenv("DB_ADDR")
	if cfg.DBAddr == "" {
		return nil, fmt.Errorf("missing required env var: DB_ADDR")
	}

	cfg.JWTIssuer = getEnv("JWT_ISSUER", "campuskit-auth")

	// Token TTLs. Defaults: 30m access, 7d refresh, 24h one-time tokens.
	var err error
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.VerifyEmailTokenTTL, err = getDuration("VERIFY_EMAIL_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PasswordResetTokenTTL, err = getDuration("PASSWORD_RESET_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	// Lockout policy: 5 attempts / 30 minutes by default.
	if cfg.MaxLoginAttempts, err = getInt("MAX_LOGIN_ATTEMPTS", 5); err != nil {
		return nil, err
	}
	if cfg.LockoutDuration, err = getDuration("LOCKOUT_DURATION", 30*time.Minute); err != nil {
		return nil, err
	}

	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 12); err != nil {
		return nil, err
	}

	// One-time token URLs (sent via email-service).
	// Must end with `token=` because the service appends the raw token.
	cfg.VerifyEmailBaseURL = getEnv("VERIFY_EMAIL_BASE_URL", "http://localhost:3000/verify-email?token=")
	if !strings.Contains(cfg.VerifyEmailBaseURL, "token=") {
		return nil, fmt.Errorf("VERIFY_EMAIL_BASE_URL must contain `token=`")
	}
	cfg.PasswordResetBaseURL = getEnv("PASSWORD_RESET_BASE_URL", "http://localhost:3000/reset-password?token=")
	if !strings.Contains(cfg.PasswordResetBaseURL, "token=") {
		return nil, fmt.Errorf("PASSWORD_RESET_BASE_URL must contain `token=`")
	}

	// Optional infrastructure. Redis missing means the rate limiter fails
	// open; Rabbit missing falls back to a noop publisher in dev.
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	cfg.RabbitURL = os.Getenv("RABBIT_URL")
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "campus.events")

	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 60); err != nil {
		return nil, err
	}

	if cfg.HTTPReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = getDuration("HTTP_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q: %w", key, v, err)
	}
	return n, nil
}
