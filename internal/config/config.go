package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/time/rate"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port string `envconfig:"PORT"`

	// Security
	AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS"`
	JWTSecret      string        `envconfig:"JWT_SECRET"`
	JWTIssuer      string        `envconfig:"JWT_ISSUER"`
	TokenTTL       time.Duration `envconfig:"TOKEN_TTL"`

	// Rate Limiting (events per second)
	RateLimitAPI      float64 `envconfig:"RATE_LIMIT_API"`
	RateLimitWS       float64 `envconfig:"RATE_LIMIT_WS"`
	RateLimitMessages float64 `envconfig:"RATE_LIMIT_MESSAGES"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL"` // Options: debug, info, warn, error, silent

	// WebSocket
	MaxMessageSize   int64 `envconfig:"MAX_MESSAGE_SIZE"`
	MaxFileTreeBytes int   `envconfig:"MAX_FILE_TREE_BYTES"`
	SendBufferSize   int   `envconfig:"SEND_BUFFER_SIZE"`

	// Storage
	DataDir      string        `envconfig:"DATA_DIR"`
	StoreTimeout time.Duration `envconfig:"STORE_TIMEOUT"`

	// Generation backend
	AIAPIKey      string        `envconfig:"AI_API_KEY"`
	AIModel       string        `envconfig:"AI_MODEL"`
	AIBaseURL     string        `envconfig:"AI_BASE_URL"`
	AITimeout     time.Duration `envconfig:"AI_TIMEOUT"`
	AITemperature float64       `envconfig:"AI_TEMPERATURE"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Port:              "8080",
		AllowedOrigins:    []string{"http://localhost:8080", "http://localhost:5173"},
		JWTIssuer:         "goat-collab",
		TokenTTL:          domain.TokenTTL,
		RateLimitAPI:      domain.DefaultRateLimitAPI,
		RateLimitWS:       domain.DefaultRateLimitWS,
		RateLimitMessages: domain.DefaultRateLimitMessages,
		LogLevel:          "info",
		MaxMessageSize:    domain.MaxMessageSize,
		MaxFileTreeBytes:  domain.MaxMessageSize - 4096,
		SendBufferSize:    domain.SendBufferSize,
		DataDir:           "./data",
		StoreTimeout:      domain.StoreTimeout,
		AIModel:           "gemini-1.5-flash",
		AIBaseURL:         "https://generativelanguage.googleapis.com",
		AITimeout:         domain.GenerationTimeout,
		AITemperature:     0.4,
	}
}

// LoadFromEnv loads configuration from environment variables.
// Variables that are not set keep their DefaultConfig value.
func LoadFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the server cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.AITimeout <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT must be positive"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.MaxFileTreeBytes <= 0 || int64(c.MaxFileTreeBytes) > c.MaxMessageSize {
		errs = append(errs, errors.New("MAX_FILE_TREE_BYTES must be positive and not exceed MAX_MESSAGE_SIZE"))
	}
	if c.SendBufferSize <= 0 {
		errs = append(errs, errors.New("SEND_BUFFER_SIZE must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Limit converts a per-second setting into a rate.Limit
func Limit(perSecond float64) rate.Limit {
	return rate.Limit(perSecond)
}

// Logger builds the process logger for LogLevel.
// "silent" and "off" discard everything.
func (c *Config) Logger() *slog.Logger {
	return NewLogger(os.Stderr, c.LogLevel)
}

// NewLogger builds a text logger writing to w at the named level
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "silent", "off":
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// normalizeOrigins trims comma-separated origins and drops empty entries
func normalizeOrigins(origins []string) []string {
	result := make([]string, 0, len(origins))
	for _, p := range origins {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
