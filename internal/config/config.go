package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"newscurator/pkg/config/env"
	"newscurator/pkg/utils"
)

type Config struct {
	Port        string
	CorsOrigins []string

	DatabaseURL string

	ESAddresses []string
	ESIndexName string
	ESUsername  string
	ESPassword  string

	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	AdminAPIKey string

	// SchedulerInterval spaces automatic pipeline runs. Zero disables the
	// scheduler; operations then run only when triggered.
	SchedulerInterval time.Duration
}

func Load() (*Config, error) {
	if err := env.LoadDotEnv(os.Getenv("ENV"), ".env"); err != nil {
		slog.Info("Skipping .env ...", "error", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := validatePort(port); err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	cfg := &Config{
		Port:        port,
		CorsOrigins: splitList(os.Getenv("CORS_ORIGINS")),
		DatabaseURL: databaseURL,
		ESAddresses: splitList(os.Getenv("ELASTICSEARCH_ADDRESSES")),
		ESIndexName: os.Getenv("ELASTICSEARCH_INDEX"),
		ESUsername:  os.Getenv("ELASTICSEARCH_USERNAME"),
		ESPassword:  os.Getenv("ELASTICSEARCH_PASSWORD"),
		LLMBaseURL:  os.Getenv("LLM_BASE_URL"),
		LLMModel:    os.Getenv("LLM_MODEL"),
		LLMAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		AdminAPIKey: os.Getenv("ADMIN_API_KEY"),
	}

	if len(cfg.CorsOrigins) == 0 {
		cfg.CorsOrigins = []string{"*"}
	}
	if cfg.ESIndexName == "" {
		cfg.ESIndexName = "articles"
	}

	if cfg.AdminAPIKey == "" {
		return nil, errors.New("ADMIN_API_KEY is required")
	}

	intervalStr := os.Getenv("SCHEDULER_INTERVAL")
	if intervalStr != "" {
		interval, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SCHEDULER_INTERVAL: %w", err)
		}
		if interval < 0 {
			return nil, errors.New("SCHEDULER_INTERVAL must not be negative")
		}
		cfg.SchedulerInterval = interval
	} else {
		cfg.SchedulerInterval = 24 * time.Hour
	}

	return cfg, nil
}

// SearchEnabled reports whether an Elasticsearch cluster is configured. The
// platform degrades to Postgres-only listings without one.
func (c *Config) SearchEnabled() bool {
	return len(c.ESAddresses) > 0
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return utils.RemoveEmptyStrings(parts)
}

func validatePort(port string) error {
	portNum, err := strconv.Atoi(port)

	if err != nil {
		return errors.New("port must be a number")
	}

	if portNum < 1 || portNum > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	return nil
}
