// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/viabilize/viabilize-auth/middleware/jwtware"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Config is the full service configuration. It satisfies auth.Config.
type Config struct {
	SigningKey          string            `env:"JWT_SECRET"`
	SigningMethod       string            `env:"ALGORITHM"                   envDefault:"HS256"`
	TokenExpireMinutes  int               `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	SigningKeyID        string            `env:"JWT_KEY_ID"                  envDefault:"primary"`
	PreviousSigningKeys map[string]string `env:"JWT_PREVIOUS_KEYS"           envKeyValSeparator:":"`
	TokenTimeZone       string            `env:"TOKEN_TIME_ZONE"             envDefault:"America/Sao_Paulo"`
	TokenLookup         string            `env:"TOKEN_LOOKUP"                envDefault:"header:Authorization"`
	AuthScheme          string            `env:"AUTH_SCHEME"                 envDefault:"Bearer"`

	DatabaseURL      string   `env:"DB_URL"             envDefault:"file:viabilize.db?cache=shared"`
	Port             int      `env:"PORT"               envDefault:"8000"`
	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envDefault:"http://localhost:8501" envSeparator:","`
	Debug            bool     `env:"DEBUG"              envDefault:"false"`

	OTPTTL           time.Duration `env:"OTP_TTL"            envDefault:"30m"`
	SessionCacheSize int           `env:"SESSION_CACHE_SIZE" envDefault:"1024"`
	SessionCacheTTL  time.Duration `env:"SESSION_CACHE_TTL"`

	WorkerCount       int           `env:"WORKER_COUNT"           envDefault:"4"`
	WorkerQueueSize   int           `env:"WORKER_QUEUE_SIZE"      envDefault:"256"`
	NotifyMaxAttempts uint          `env:"NOTIFY_MAX_ATTEMPTS"    envDefault:"5"`
	NotifyBackoff     time.Duration `env:"NOTIFY_RETRY_BACKOFF"   envDefault:"1s"`
	NotifyMaxDelay    time.Duration `env:"NOTIFY_RETRY_MAX_DELAY" envDefault:"30s"`

	Mail MailConfig
}

// MailConfig holds the SMTP settings
type MailConfig struct {
	Host     string `env:"SMTP_HOST"       envDefault:"smtp.gmail.com"`
	Port     int    `env:"SMTP_PORT"       envDefault:"587"`
	Username string `env:"SENDER_EMAIL"`
	Password string `env:"SENDER_PASSWORD"`
	FromName string `env:"SENDER_NAME"     envDefault:"vIAbilize"`
	Language string `env:"MAIL_LANGUAGE"   envDefault:"pt-BR"`
}

// Enabled reports whether SMTP credentials are configured
func (m MailConfig) Enabled() bool {
	return m.Username != "" && m.Password != ""
}

// Load parses the environment and validates the result
func Load() (*Config, error) {
	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SigningKey) == "" {
		return errors.New("JWT_SECRET is required", errors.CategoryBadInput)
	}

	switch c.SigningMethod {
	case jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg():
	default:
		return errors.New(fmt.Sprintf("unsupported ALGORITHM %q", c.SigningMethod), errors.CategoryBadInput)
	}

	if c.TokenExpireMinutes <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive", errors.CategoryBadInput)
	}

	if _, err := time.LoadLocation(c.TokenTimeZone); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid TOKEN_TIME_ZONE")
	}

	if c.OTPTTL < 0 {
		return errors.New("OTP_TTL must not be negative", errors.CategoryBadInput)
	}

	if err := jwtware.ValidateTokenLookup(c.TokenLookup); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid TOKEN_LOOKUP")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return errors.New(fmt.Sprintf("invalid PORT %d", c.Port), errors.CategoryBadInput)
	}

	return nil
}

// Address is the listen address for the HTTP server
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) GetSigningKey() string {
	return c.SigningKey
}

func (c *Config) GetSigningMethod() string {
	return c.SigningMethod
}

func (c *Config) GetSigningKeyID() string {
	return c.SigningKeyID
}

func (c *Config) GetPreviousSigningKeys() map[string]string {
	return c.PreviousSigningKeys
}

func (c *Config) GetTokenExpiration() time.Duration {
	return time.Duration(c.TokenExpireMinutes) * time.Minute
}

func (c *Config) GetTokenTimeZone() string {
	return c.TokenTimeZone
}

func (c *Config) GetContextKey() string {
	return "user"
}

func (c *Config) GetTokenLookup() string {
	return c.TokenLookup
}

func (c *Config) GetAuthScheme() string {
	return c.AuthScheme
}

func (c *Config) GetOTPTTL() time.Duration {
	return c.OTPTTL
}

func (c *Config) GetSessionCacheSize() int {
	return c.SessionCacheSize
}

// GetSessionCacheTTL defaults to the token lifetime
func (c *Config) GetSessionCacheTTL() time.Duration {
	if c.SessionCacheTTL > 0 {
		return c.SessionCacheTTL
	}
	return c.GetTokenExpiration()
}
