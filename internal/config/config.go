// Package config loads runtime settings from environment variables.
//
// Every setting has a default, so `go run ./cmd/server` works with nothing set.
// Bad values fail Load with a message naming the variable, and main exits before
// anything is opened.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/faq-chatbot/internal/classifier"
	"github.com/sakif/faq-chatbot/internal/service"
)

const (
	DefaultPort   = 8080
	DefaultDBPath = "data/chatbot.db"

	// minSecretLength matches auth.NewTokenService.
	minSecretLength = 16
)

type Config struct {
	Port   int
	DBPath string

	// JWTSecret enables admin authentication when non-empty.
	JWTSecret string
	JWTTTL    time.Duration

	NLPBaseURL      string
	NLPTimeout      time.Duration
	NLPTokenURL     string
	NLPClientID     string
	NLPClientSecret string

	AnswerSource service.AnswerSource

	// SeedFile is a YAML file of question/answer pairs loaded at startup.
	SeedFile string

	LogLevel slog.Level
}

func Load() (Config, error) {
	cfg := Config{
		DBPath:          valueOrDefault("DB_PATH", DefaultDBPath),
		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		NLPBaseURL:      strings.TrimSpace(os.Getenv("NLP_BASE_URL")),
		NLPTokenURL:     strings.TrimSpace(os.Getenv("NLP_TOKEN_URL")),
		NLPClientID:     strings.TrimSpace(os.Getenv("NLP_CLIENT_ID")),
		NLPClientSecret: strings.TrimSpace(os.Getenv("NLP_CLIENT_SECRET")),
		SeedFile:        strings.TrimSpace(os.Getenv("SEED_FILE")),
	}

	var err error
	if cfg.Port, err = parsePort(valueOrDefault("PORT", strconv.Itoa(DefaultPort))); err != nil {
		return Config{}, err
	}
	if cfg.JWTTTL, err = parseDuration("JWT_TTL", 0); err != nil {
		return Config{}, err
	}
	if cfg.NLPTimeout, err = parseDuration("NLP_TIMEOUT", classifier.DefaultTimeout); err != nil {
		return Config{}, err
	}
	if cfg.AnswerSource, err = service.ParseAnswerSource(os.Getenv("ANSWER_SOURCE")); err != nil {
		return Config{}, fmt.Errorf("invalid ANSWER_SOURCE: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(valueOrDefault("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.JWTSecret != "" && len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength)
	}

	if c.NLPBaseURL != "" {
		u, err := url.Parse(c.NLPBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("NLP_BASE_URL must be an absolute http(s) URL, got %q", c.NLPBaseURL)
		}
	}
	if c.AnswerSource != service.SourceStore && c.NLPBaseURL == "" {
		return fmt.Errorf("ANSWER_SOURCE=%s requires NLP_BASE_URL", c.AnswerSource)
	}
	if c.NLPTokenURL != "" && c.NLPClientID == "" {
		return fmt.Errorf("NLP_TOKEN_URL requires NLP_CLIENT_ID")
	}
	return nil
}

// AuthEnabled reports whether /admin routes require a token.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// Classifier returns the classifier client settings, and false when no NLP
// service is configured.
func (c Config) Classifier() (classifier.Config, bool) {
	if c.NLPBaseURL == "" {
		return classifier.Config{}, false
	}
	return classifier.Config{
		BaseURL:      c.NLPBaseURL,
		Timeout:      c.NLPTimeout,
		TokenURL:     c.NLPTokenURL,
		ClientID:     c.NLPClientID,
		ClientSecret: c.NLPClientSecret,
	}, true
}

func valueOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid PORT: %w", err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid PORT: %d out of range", port)
	}
	return port, nil
}

// parseDuration accepts Go duration syntax ("5s", "1h30m").
func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
