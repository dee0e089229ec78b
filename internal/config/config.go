// Package config handles application configuration and environment loading.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the config file nor the environment set a value.
const (
	DefaultMetaDBPath  = "nosql_viewer.db"
	DefaultListenAddr  = ":8080"
	DefaultUploadDir   = "uploads"
	DefaultMaxUploadMB = 32
	DefaultImportActor = "admin"

	insecureDevSecret = "dev-secret-change-in-production"
)

// ImportConfig controls the scheduled re-import of a CSV file from disk.
type ImportConfig struct {
	CSVPath  string `yaml:"csv_path"` // file re-imported on Schedule
	Schedule string `yaml:"schedule"` // cron spec; empty disables the scheduler
	Actor    string `yaml:"actor"`    // audit actor of scheduled imports
}

// Enabled reports whether a scheduled import is configured.
func (c ImportConfig) Enabled() bool {
	return c.CSVPath != "" && c.Schedule != ""
}

// Config holds the configuration of the catalog server and CLI.
type Config struct {
	MetaDBPath string `yaml:"meta_db_path"` // path to the SQLite catalog file
	ListenAddr string `yaml:"listen_addr"`  // HTTP listen address
	LogLevel   string `yaml:"log_level"`    // debug, info, warn, error
	Env        string `yaml:"env"`          // "development" (default) or "production"

	JWTSecret string        `yaml:"jwt_secret"` // HS256 secret for access tokens
	TokenTTL  time.Duration `yaml:"token_ttl"`  // access token lifetime

	// CORS
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	// Rate limiting
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	// Uploads
	UploadDir   string `yaml:"upload_dir"`    // archive directory for uploaded CSV files
	MaxUploadMB int64  `yaml:"max_upload_mb"` // multipart body limit

	Import ImportConfig `yaml:"import"`

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string `yaml:"-"`
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		MetaDBPath:         DefaultMetaDBPath,
		ListenAddr:         DefaultListenAddr,
		LogLevel:           "info",
		TokenTTL:           15 * time.Minute,
		CORSAllowedOrigins: []string{"*"},
		RateLimitRPS:       100,
		RateLimitBurst:     200,
		UploadDir:          DefaultUploadDir,
		MaxUploadMB:        DefaultMaxUploadMB,
		Import:             ImportConfig{Actor: DefaultImportActor},
	}
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// MaxUploadBytes returns the multipart upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Load builds the configuration. Sources are applied in increasing order of
// precedence: defaults, the YAML file at path (skipped when path is empty),
// then environment variables. Call LoadDotEnv first to feed a .env file
// into the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.mergeEnv()
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads configuration from defaults and environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("META_DB_PATH", &c.MetaDBPath)
	setString("LISTEN_ADDR", &c.ListenAddr)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("ENV", &c.Env)
	setString("JWT_SECRET", &c.JWTSecret)
	setString("UPLOAD_DIR", &c.UploadDir)
	setString("IMPORT_CSV_PATH", &c.Import.CSVPath)
	setString("IMPORT_SCHEDULE", &c.Import.Schedule)
	setString("IMPORT_ACTOR", &c.Import.Actor)

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.TokenTTL = d
		} else {
			c.warnf("ignoring invalid TOKEN_TTL %q", v)
		}
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimitRPS = f
		} else {
			c.warnf("ignoring invalid RATE_LIMIT_RPS %q", v)
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimitBurst = n
		} else {
			c.warnf("ignoring invalid RATE_LIMIT_BURST %q", v)
		}
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxUploadMB = n
		} else {
			c.warnf("ignoring invalid MAX_UPLOAD_MB %q", v)
		}
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSAllowedOrigins = splitList(v)
	}
}

// finalize fills remaining defaults and rejects insecure production settings.
func (c *Config) finalize() error {
	if c.TokenTTL <= 0 {
		c.TokenTTL = 15 * time.Minute
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = DefaultMaxUploadMB
	}
	if c.Import.Actor == "" {
		c.Import.Actor = DefaultImportActor
	}
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{"*"}
	}
	if (c.Import.CSVPath == "") != (c.Import.Schedule == "") {
		c.warnf("scheduled import disabled: set both IMPORT_CSV_PATH and IMPORT_SCHEDULE")
	}

	// Production mode: insecure defaults are fatal errors.
	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET must be set in production (ENV=production)")
		}
		if len(c.CORSAllowedOrigins) == 1 && c.CORSAllowedOrigins[0] == "*" {
			return fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}
	if c.JWTSecret == "" {
		c.JWTSecret = insecureDevSecret
		c.warnf("JWT_SECRET not set, using insecure default. Set JWT_SECRET in production!")
	}
	return nil
}

func (c *Config) warnf(format string, args ...interface{}) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
