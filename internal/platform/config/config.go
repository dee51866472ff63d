// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (64KB).
	// Request bodies are small UI commands; nothing larger is accepted.
	DefaultMaxRequestSize = 64 << 10

	// DefaultMapsScriptURL is the mapping library loader endpoint.
	DefaultMapsScriptURL = "https://maps.googleapis.com/maps/api/js"

	// DefaultSessionCookie is the name of the visitor session cookie.
	DefaultSessionCookie = "alash_session"

	// DefaultCORSMaxAge is how long browsers may cache a preflight response, in seconds.
	DefaultCORSMaxAge = 600

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// MapsKeyEnvVars lists the environment variables consulted for the maps
// credential, highest precedence first.
var MapsKeyEnvVars = []string{
	"APP_MAPS_API_KEY",
	"GOOGLE_MAPS_API_KEY",
	"NEXT_PUBLIC_GOOGLE_MAPS_API_KEY",
}

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Maps      MapsConfig      `koanf:"maps"`
	Session   SessionConfig   `koanf:"session"   validate:"required"`
	CORS      CORSConfig      `koanf:"cors"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=100ms"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig contains settings for the outbound HTTP client.
type ClientConfig struct {
	Timeout   time.Duration `koanf:"timeout"    validate:"required,min=100ms"`
	UserAgent string        `koanf:"user_agent" validate:"required"`
}

// MapsConfig contains settings for the third-party mapping library.
// An empty APIKey is valid: the map reports the no-key state instead.
type MapsConfig struct {
	APIKey    string `koanf:"api_key"`
	ScriptURL string `koanf:"script_url" validate:"required,url"`
}

// Key returns the maps credential without surrounding whitespace.
func (m MapsConfig) Key() string {
	return strings.TrimSpace(m.APIKey)
}

// HasKey reports whether a maps credential is configured.
func (m MapsConfig) HasKey() bool {
	return m.Key() != ""
}

// SessionConfig contains visitor session settings.
type SessionConfig struct {
	TTL           time.Duration `koanf:"ttl"            validate:"required,min=1m"`
	QuoteInterval time.Duration `koanf:"quote_interval" validate:"required,min=1s"`
	Cookie        string        `koanf:"cookie"         validate:"required"`
	Secure        bool          `koanf:"secure"`
	MaxSessions   int           `koanf:"max_sessions"   validate:"required,min=1"`
}

// CORSConfig contains cross-origin settings for the JSON API.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins" validate:"dive,required"`
	MaxAge         int      `koanf:"max_age"         validate:"min=0"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "alash",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "15s",
		"server.write_timeout":    "15s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "5s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/alash.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "alash",
		"telemetry.sampling_rate": 1.0,

		"client.timeout":    "10s",
		"client.user_agent": "alash/dev",

		"maps.api_key":    "",
		"maps.script_url": DefaultMapsScriptURL,

		"session.ttl":            "30m",
		"session.quote_interval": "20s",
		"session.cookie":         DefaultSessionCookie,
		"session.secure":         false,
		"session.max_sessions":   10000,

		"cors.allowed_origins": []string{},
		"cors.max_age":         DefaultCORSMaxAge,
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Maps credential variables (see MapsKeyEnvVars)
//  2. Environment variables (APP_ prefix)
//  3. Profile config file (configs/{profile}.yaml)
//  4. Base config file (configs/base.yaml)
//  5. Default values
//
// A .env file in the working directory is read first; it never overrides
// variables that are already set in the process environment.
func Load(profile string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	k := koanf.New(".")

	// 1. Load defaults
	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Load base config file if it exists
	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	// 3. Load profile config file if it exists
	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	// 4. Load environment variables with APP_ prefix
	err = k.Load(env.Provider("APP_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "APP_")),
			"_",
			".",
		)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// 5. The key name contains an underscore, so the generic mapping above
	// cannot reach it.
	if key, ok := lookupMapsKey(); ok {
		err = k.Set("maps.api_key", key)
		if err != nil {
			return nil, fmt.Errorf("setting maps key: %w", err)
		}
	}

	// Unmarshal into Config struct
	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// lookupMapsKey returns the first non-empty maps credential variable.
func lookupMapsKey() (string, bool) {
	for _, name := range MapsKeyEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, true
		}
	}
	return "", false
}

// loadDotEnv reads a dotenv file if present.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil // File doesn't exist, that's fine
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
