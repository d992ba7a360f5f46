package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file inside the data directory.
const FileName = "checktrack.yaml"

// Store drivers.
const (
	DriverCSV      = "csv"
	DriverPostgres = "postgres"
)

// Config represents the top-level checktrack.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Store    StoreConfig    `yaml:"store"`
	Server   ServerConfig   `yaml:"server"`
	Import   ImportConfig   `yaml:"import"`
	Log      LogConfig      `yaml:"log"`
	Git      GitConfig      `yaml:"git"`
}

// BusinessConfig identifies the business whose checks are tracked.
type BusinessConfig struct {
	Name string `yaml:"name"`
}

// StoreConfig selects where payments are kept.
type StoreConfig struct {
	Driver      string `yaml:"driver"` // "csv" or "postgres"
	DatabaseURL string `yaml:"database_url,omitempty"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	ImportTTL    time.Duration `yaml:"import_ttl"` // how long an uncommitted preview is kept
	AllowOrigins []string      `yaml:"allow_origins,omitempty"`
}

// ImportConfig controls spreadsheet imports.
type ImportConfig struct {
	Timezone string `yaml:"timezone"` // IANA name used for "today" and text dates
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a checktrack.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new data directory.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Store: StoreConfig{
			Driver: DriverCSV,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			TokenTTL:     24 * time.Hour,
			ImportTTL:    30 * time.Minute,
			AllowOrigins: []string{"http://localhost:3000"},
		},
		Import: ImportConfig{
			Timezone: "Europe/Istanbul",
		},
		Log: LogConfig{
			Level: "info",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "checktrack",
			AuthorEmail: "checktrack@localhost",
		},
	}
}

// Environment variables that override the file.
const (
	EnvDatabaseURL = "CHECKTRACK_DATABASE_URL"
	EnvJWTSecret   = "CHECKTRACK_JWT_SECRET"
	EnvAddr        = "CHECKTRACK_ADDR"
	EnvLogLevel    = "CHECKTRACK_LOG_LEVEL"
	EnvTimezone    = "CHECKTRACK_TIMEZONE"
)

// LoadEnvFile loads <dataDir>/.env into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(dataDir string) error {
	path := filepath.Join(dataDir, ".env")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from CHECKTRACK_* variables. Setting a database
// URL switches the store to postgres.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDatabaseURL); ok && v != "" {
		c.Store.Driver = DriverPostgres
		c.Store.DatabaseURL = v
	}
	if v, ok := lookup(EnvJWTSecret); ok && v != "" {
		c.Server.JWTSecret = v
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvTimezone); ok && v != "" {
		c.Import.Timezone = v
	}
}

// Validate checks values that cannot be caught by the YAML decoder.
func (c *Config) Validate() error {
	var problems []string
	switch c.Store.Driver {
	case DriverCSV:
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.driver %q is not one of csv, postgres", c.Store.Driver))
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Server.TokenTTL <= 0 {
		problems = append(problems, "server.token_ttl must be positive")
	}
	if c.Server.ImportTTL <= 0 {
		problems = append(problems, "server.import_ttl must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location returns the configured time zone, or local time when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Import.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Import.Timezone)
	if err != nil {
		return nil, fmt.Errorf("import.timezone %q: %w", c.Import.Timezone, err)
	}
	return loc, nil
}
