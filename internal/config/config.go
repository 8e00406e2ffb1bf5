package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const fileName = "config.yaml"

type Config struct {
	// Client side.
	Server   string `yaml:"server,omitempty"`
	Token    string `yaml:"token,omitempty"`
	Timezone string `yaml:"timezone,omitempty"`

	// Server side.
	Addr     string `yaml:"addr,omitempty"`
	DBDriver string `yaml:"db_driver,omitempty"`
	DBDSN    string `yaml:"db_dsn,omitempty"`
	RedisURL string `yaml:"redis_url,omitempty"`

	LogLevel  string `yaml:"log_level,omitempty"`
	LogFormat string `yaml:"log_format,omitempty"`
}

func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.protanni).
	if v := strings.TrimSpace(os.Getenv("PROTANNI_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".protanni"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the config file (missing is fine), applies env overrides and
// fills defaults.
func Load() (*Config, error) {
	cfg, err := ReadFile()
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// ReadFile reads only the file, without env or defaults. Use it when the
// result is going to be saved back.
func ReadFile() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	// The file holds a bearer token.
	return AtomicWriteFile(dir, "config.yaml.*.tmp", path, b, 0o600)
}

func (c *Config) applyEnv() {
	c.Server = getenv("PROTANNI_SERVER", c.Server)
	c.Token = getenv("PROTANNI_TOKEN", c.Token)
	c.Timezone = getenv("PROTANNI_TZ", c.Timezone)
	c.Addr = getenv("PROTANNI_ADDR", c.Addr)
	c.DBDriver = getenv("PROTANNI_DB_DRIVER", c.DBDriver)
	c.DBDSN = getenv("PROTANNI_DB_DSN", c.DBDSN)
	c.RedisURL = getenv("PROTANNI_REDIS_URL", c.RedisURL)
	c.LogLevel = getenv("PROTANNI_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getenv("PROTANNI_LOG_FORMAT", c.LogFormat)
}

func (c *Config) applyDefaults() {
	if c.Server == "" {
		c.Server = "http://localhost:8787"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.Addr == "" {
		c.Addr = ":8787"
	}
	if c.DBDriver == "" {
		c.DBDriver = "sqlite"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

// DSN returns the database DSN, defaulting to a SQLite file in the config dir.
func (c *Config) DSN() (string, error) {
	if c.DBDSN != "" {
		return c.DBDSN, nil
	}
	if c.DBDriver != "sqlite" {
		return "", fmt.Errorf("db_dsn is required for driver %q", c.DBDriver)
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "protanni.sqlite"), nil
}

// SlogLevel maps LogLevel onto slog; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
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

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// AtomicWriteFile writes b to path through a temp file in dir and a rename.
func AtomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
