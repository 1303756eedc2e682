package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
)

// Environment variable names
const (
	EnvLogLevel  = "HTTPINTERCEPT_LOG_LEVEL"
	EnvLogFormat = "HTTPINTERCEPT_LOG_FORMAT"
	EnvLogFile   = "HTTPINTERCEPT_LOG_FILE"
	EnvBundles   = "HTTPINTERCEPT_BUNDLES"
	EnvVerbose   = "HTTPINTERCEPT_VERBOSE"
)

// Sources of a configuration value.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Config holds the settings shared by every command.
type Config struct {
	LogLevel  string
	LogFormat string
	// LogFile, when set, receives a JSON copy of every log record.
	LogFile string
	// Bundles are paths or glob patterns used when a command gets no arguments.
	Bundles []string
	Verbose bool

	// Sources maps a setting name to where its value came from.
	Sources map[string]string
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		LogLevel:  "warn",
		LogFormat: "text",
		Sources: map[string]string{
			"logLevel":  SourceDefault,
			"logFormat": SourceDefault,
			"logFile":   SourceDefault,
			"bundles":   SourceDefault,
			"verbose":   SourceDefault,
		},
	}
}

// Load returns the defaults overlaid with the environment.
func Load() *Config {
	cfg := Defaults()
	LoadEnvConfig(cfg)
	return cfg
}

// LoadEnvConfig loads configuration from environment variables.
// It only sets values that are present in the environment.
func LoadEnvConfig(cfg *Config) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		cfg.Sources["logLevel"] = SourceEnv
	}

	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		cfg.Sources["logFormat"] = SourceEnv
	}

	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.LogFile = v
		cfg.Sources["logFile"] = SourceEnv
	}

	// HTTPINTERCEPT_BUNDLES uses the OS path list separator.
	if v := os.Getenv(EnvBundles); v != "" {
		cfg.Bundles = nil
		for _, p := range filepath.SplitList(v) {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Bundles = append(cfg.Bundles, p)
			}
		}
		cfg.Sources["bundles"] = SourceEnv
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Verbose = v == "true" || v == "1" || v == "yes"
		cfg.Sources["verbose"] = SourceEnv
	}
}

// MarkFlag records that name was set on the command line.
func (c *Config) MarkFlag(name string) {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[name] = SourceFlag
}
