package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigPath is the config file used when Load is given an empty path.
// VERSE_CONFIG overrides it.
var ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port               string   `yaml:"port"`
	LogLevel           string   `yaml:"logLevel"`
	DatabaseURL        string   `yaml:"databaseURL"`
	RedisURL           string   `yaml:"redisURL"`
	RedisPassword      string   `yaml:"redisPassword"`
	DefaultTranslation string   `yaml:"defaultTranslation"`
	DisplayHost        string   `yaml:"displayHost"`
	RateLimit          int      `yaml:"rateLimit"`
	RateLimitWindow    string   `yaml:"rateLimitWindow"`
	RateLimitFailOpen  bool     `yaml:"rateLimitFailOpen"`
	TrustedProxyCIDRs  []string `yaml:"trustedProxyCidrs"`
	ShutdownTimeout    string   `yaml:"shutdownTimeout"`
}

// Defaults returns the configuration used for keys absent from the file.
func Defaults() FileConfig {
	return FileConfig{
		Port:               "8080",
		LogLevel:           "info",
		DefaultTranslation: "WEB",
		DisplayHost:        "bible-api.com",
		RateLimit:          15,
		RateLimitWindow:    "30s",
		ShutdownTimeout:    "10s",
	}
}

// Load reads and validates the server configuration.
func Load(path string) (FileConfig, error) {
	cfg, err := Read(path)
	if err != nil {
		return cfg, err
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Read loads .env, the YAML file and environment overrides without
// validating. A missing file is only an error when path was given
// explicitly.
func Read(path string) (FileConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return FileConfig{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()
	explicit := path != ""
	if !explicit {
		path = ConfigPath
		if v := os.Getenv("VERSE_CONFIG"); v != "" {
			path, explicit = v, true
		}
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	// Override with environment variables
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("DEFAULT_TRANSLATION"); v != "" {
		cfg.DefaultTranslation = v
	}
	if v := os.Getenv("DISPLAY_HOST"); v != "" {
		cfg.DisplayHost = v
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("config: RATE_LIMIT: %w", err)
		}
		cfg.RateLimit = n
	}
	if v := os.Getenv("RATE_LIMIT_WINDOW"); v != "" {
		cfg.RateLimitWindow = v
	}
	if v := os.Getenv("RATE_LIMIT_FAIL_OPEN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("config: RATE_LIMIT_FAIL_OPEN: %w", err)
		}
		cfg.RateLimitFailOpen = b
	}
	if v := os.Getenv("TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml or PORT)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	if cfg.RateLimit < 0 {
		return errors.New("config: rateLimit must be >= 0")
	}
	if cfg.RateLimit > 0 {
		if _, err := ParseRateLimitWindow(cfg.RateLimitWindow); err != nil {
			return err
		}
		if strings.TrimSpace(cfg.RedisURL) == "" {
			return errors.New("config: redisURL is required for distributed rate limiting (set REDIS_URL or rateLimit: 0)")
		}
	}
	if _, err := ParseShutdownTimeout(cfg.ShutdownTimeout); err != nil {
		return err
	}
	return nil
}

// ParseRateLimitWindow parses the throttle window; it must be positive.
func ParseRateLimitWindow(raw string) (time.Duration, error) {
	dur, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid rateLimitWindow duration: %w", err)
	}
	if dur <= 0 {
		return 0, fmt.Errorf("invalid rateLimitWindow duration: %s must be positive", raw)
	}
	return dur, nil
}

// ParseShutdownTimeout parses optional graceful shutdown timeout.
func ParseShutdownTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdownTimeout duration: %w", err)
	}
	return dur, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
