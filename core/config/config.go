package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel     OTelConfig
	Store    StoreConfig
	Analysis AnalysisConfig
	Env      string
	Port     string

	// TemplatesDir is consumed by external report tooling, never by the
	// server itself. Carried here so every process shares one
	// configuration surface.
	TemplatesDir string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type StoreConfig struct {
	// EventsFile is the durable event log, a single JSON file rewritten
	// in full on every accepted event.
	EventsFile string
	// Capacity bounds the log; once full, the oldest event is evicted
	// per append.
	Capacity int
}

type AnalysisConfig struct {
	// RepoDir is the working tree the change analyzer runs git in.
	RepoDir string
	// MaxDiffLines is the default cap on returned diff text.
	MaxDiffLines int
	// GitTimeout bounds each git invocation; expired processes are killed.
	GitTimeout time.Duration
}

// Load loads configuration from environment variables.
// In development it first loads a local .env file when one exists.
func Load() (Config, error) {
	if getEnv("RUNSIGHT_ENV", "development") == "development" {
		_ = godotenv.Load()
	}

	cfg := Config{
		Env:          getEnv("RUNSIGHT_ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		TemplatesDir: getEnv("TEMPLATES_DIR", "templates"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "runsight"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Store: StoreConfig{
			EventsFile: getEnv("EVENTS_FILE", "github_events.json"),
			Capacity:   getEnvInt("EVENT_CAPACITY", 100),
		},
		Analysis: AnalysisConfig{
			RepoDir:      getEnv("REPO_DIR", "."),
			MaxDiffLines: getEnvInt("MAX_DIFF_LINES", 500),
			GitTimeout:   getEnvDuration("GIT_TIMEOUT", 30*time.Second),
		},
	}

	if cfg.Store.Capacity <= 0 {
		return Config{}, fmt.Errorf("EVENT_CAPACITY must be positive, got %d", cfg.Store.Capacity)
	}
	if cfg.Analysis.MaxDiffLines <= 0 {
		return Config{}, fmt.Errorf("MAX_DIFF_LINES must be positive, got %d", cfg.Analysis.MaxDiffLines)
	}
	if cfg.Analysis.GitTimeout <= 0 {
		return Config{}, fmt.Errorf("GIT_TIMEOUT must be positive, got %s", cfg.Analysis.GitTimeout)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
