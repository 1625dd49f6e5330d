package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Env names for configuration. Empty or unset means use default (where applicable).
const (
	EnvDataDir            = "INDEXER_DATA_DIR"
	EnvPort               = "INDEXER_PORT"
	EnvDatabaseURL        = "DATABASE_URL" // optional PostgreSQL catalog; SQLite in the data dir otherwise
	EnvBaseDir            = "INDEXER_BASE_DIR"
	EnvStrictText         = "INDEXER_STRICT_TEXT"
	EnvMaxHashesPerSecond = "INDEXER_MAX_HASHES_PER_SECOND"
	EnvLogLevel           = "INDEXER_LOG_LEVEL"
	EnvLogFormat          = "INDEXER_LOG_FORMAT"
)

// Default values when env is unset.
const (
	DefaultDataDir   = "./data"
	DefaultPort      = 8080
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	dataDir            string
	port               int
	databaseURL        string
	baseDir            string
	strictText         bool
	maxHashesPerSecond int
	logLevel           string
	logFormat          string
}

// LoadDotEnv loads .env from the working directory into the process environment
// without overriding variables that are already set. A missing file is not an error.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load reads configuration from the environment. Defaults are used when a
// variable is unset or empty. Returns an error if INDEXER_PORT is not a
// number in 0-65535, INDEXER_STRICT_TEXT is not a boolean,
// INDEXER_MAX_HASHES_PER_SECOND is negative or not a number, or
// INDEXER_LOG_FORMAT is neither text nor json.
func Load() (*Config, error) {
	cfg := &Config{
		dataDir:     os.Getenv(EnvDataDir),
		port:        DefaultPort,
		databaseURL: os.Getenv(EnvDatabaseURL),
		baseDir:     os.Getenv(EnvBaseDir),
		logLevel:    os.Getenv(EnvLogLevel),
		logFormat:   strings.ToLower(os.Getenv(EnvLogFormat)),
	}
	if cfg.dataDir == "" {
		cfg.dataDir = DefaultDataDir
	}
	if cfg.logLevel == "" {
		cfg.logLevel = DefaultLogLevel
	}
	if cfg.logFormat == "" {
		cfg.logFormat = DefaultLogFormat
	}
	if cfg.logFormat != "text" && cfg.logFormat != "json" {
		return nil, errors.New("INDEXER_LOG_FORMAT must be text or json")
	}

	if s := os.Getenv(EnvPort); s != "" {
		port, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.New("INDEXER_PORT must be a number")
		}
		if port < 0 || port > 65535 {
			return nil, errors.New("INDEXER_PORT must be between 0 and 65535")
		}
		cfg.port = port
	}

	if s := os.Getenv(EnvStrictText); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, errors.New("INDEXER_STRICT_TEXT must be a boolean")
		}
		cfg.strictText = b
	}

	if s := os.Getenv(EnvMaxHashesPerSecond); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return nil, errors.New("INDEXER_MAX_HASHES_PER_SECOND must be a non-negative number")
		}
		cfg.maxHashesPerSecond = n
	}

	return cfg, nil
}

// DataDir returns the path to the data directory (SQLite catalog).
func (c *Config) DataDir() string {
	return c.dataDir
}

// Port returns the catalog HTTP API port. 0 lets the kernel choose.
func (c *Config) Port() int {
	return c.port
}

// DatabaseURL returns the PostgreSQL connection URL, or "" for SQLite.
func (c *Config) DatabaseURL() string {
	return c.databaseURL
}

// BaseDir returns the directory relative glob patterns resolve against ("" = working directory).
func (c *Config) BaseDir() string {
	return c.baseDir
}

// StrictText reports whether files are hashed as validated UTF-8 text.
func (c *Config) StrictText() bool {
	return c.strictText
}

// MaxHashesPerSecond returns the hash pacing limit; 0 means unlimited.
func (c *Config) MaxHashesPerSecond() int {
	return c.maxHashesPerSecond
}

// LogLevel returns the logrus level name.
func (c *Config) LogLevel() string {
	return c.logLevel
}

// LogFormat returns "text" or "json".
func (c *Config) LogFormat() string {
	return c.logFormat
}
