package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"infobox/internal"
	"infobox/internal/schema"
)

type Config struct {
	DBPath     string
	OutputDir  string
	SchemaPath string

	InputSkipRows int
	InputEncoding string
	OutputPretty  bool

	WatchDir         string
	WatchIntervalSec int
	WatchAutoExport  bool

	FetchTimeoutMs    int
	FetchRateLimitRPS int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "infobox.db")),
		OutputDir:  getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		SchemaPath: getEnv("SCHEMA_PATH", ""),

		InputSkipRows: getEnvInt("INPUT_SKIP_ROWS", 3),
		InputEncoding: getEnv("INPUT_ENCODING", "utf-8"),
		OutputPretty:  getEnvBool("OUTPUT_PRETTY", false),

		WatchDir:         getEnv("WATCH_DIR", filepath.Join(cwd, "data", "inbox")),
		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 30),
		WatchAutoExport:  getEnvBool("WATCH_AUTO_EXPORT", true),

		FetchTimeoutMs:    getEnvInt("FETCH_TIMEOUT_MS", 30000),
		FetchRateLimitRPS: getEnvInt("FETCH_RATE_LIMIT_RPS", 5),
	}

	if cfg.InputSkipRows < 0 {
		return Config{}, fmt.Errorf("INPUT_SKIP_ROWS must not be negative: %d", cfg.InputSkipRows)
	}
	return cfg, nil
}

// Schema returns the built-in arachnid schema unless SCHEMA_PATH points to a file.
func (c Config) Schema() (schema.Schema, error) {
	if strings.TrimSpace(c.SchemaPath) == "" {
		return schema.Default(), nil
	}
	return schema.Load(c.SchemaPath)
}

func (c Config) SourceOptions() internal.SourceOptions {
	return internal.SourceOptions{SkipRows: c.InputSkipRows, Encoding: c.InputEncoding}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
