package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourceAPI = "api"
	SourceDB  = "db"
)

// Config holds all configuration for the viewer, the worker and the CLI
type Config struct {
	ListenAddr     string
	APIBaseURL     string
	APITimeout     time.Duration
	ReportSource   string // api or db
	DatabaseURL    string
	RedisURL       string
	RenderCacheTTL time.Duration
	CompanyLimit   int
	ReportLimit    int
	SuggestLimit   int
	LogLevel       string
	LogFormat      string

	// Warnings lists values that could not be parsed and were replaced by defaults.
	Warnings []string
}

// LoadConfig reads configuration from environment variables (.env file)
func LoadConfig() (*Config, error) {
	// Load .env file. In production, env variables are often set directly.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:   getEnv("VIEWER_ADDR", ":3000"),
		APIBaseURL:   strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
		ReportSource: strings.ToLower(getEnv("REPORT_SOURCE", SourceAPI)),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		RedisURL:     getEnv("REDIS_URL", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "console"),
	}

	cfg.APITimeout = cfg.getDuration("API_TIMEOUT", 10*time.Second)
	cfg.RenderCacheTTL = cfg.getDuration("RENDER_CACHE_TTL", time.Hour)
	cfg.CompanyLimit = cfg.getInt("COMPANY_LIMIT", 100)
	cfg.ReportLimit = cfg.getInt("REPORT_LIMIT", 50)
	cfg.SuggestLimit = cfg.getInt("SUGGEST_LIMIT", 20)

	switch cfg.ReportSource {
	case SourceAPI:
	case SourceDB:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("REPORT_SOURCE=db requires DATABASE_URL")
		}
	default:
		return nil, fmt.Errorf("unknown REPORT_SOURCE %q", cfg.ReportSource)
	}

	return cfg, nil
}

// Helper function to get env var or return default
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid %s=%q, using %s", key, raw, defaultValue))
		return defaultValue
	}
	return d
}

func (c *Config) getInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid %s=%q, using %d", key, raw, defaultValue))
		return defaultValue
	}
	return v
}
