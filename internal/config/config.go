// Package config loads the application configuration from defaults, an
// optional YAML file, an optional .env file and the process environment,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/swapi-client/pkg/client"
	"github.com/Sternrassler/swapi-client/pkg/dashboard"
	"github.com/Sternrassler/swapi-client/pkg/logging"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Log    LogConfig    `yaml:"log"`
}

// APIConfig configures access to SWAPI.
type APIConfig struct {
	BaseURL     string        `yaml:"base_url" validate:"required,url"`
	UserAgent   string        `yaml:"user_agent" validate:"required"`
	Timeout     time.Duration `yaml:"timeout" validate:"gte=0"`
	LoadTimeout time.Duration `yaml:"load_timeout" validate:"gte=0"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            string        `yaml:"port" validate:"required,numeric"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

// RedisConfig configures the shared page store. An empty Addr selects the
// in-memory store.
type RedisConfig struct {
	Addr     string        `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"gte=0"`
	PageTTL  time.Duration `yaml:"page_ttl" validate:"gte=0"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Pretty bool   `yaml:"pretty"`
}

// Options control where Load reads from.
type Options struct {
	// ConfigFile is an optional YAML file. Empty skips it.
	ConfigFile string

	// EnvFile is an optional dotenv file. A missing file is ignored.
	EnvFile string

	// LookupEnv reads the process environment (default: os.LookupEnv).
	LookupEnv func(string) (string, bool)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:     client.DefaultBaseURL,
			UserAgent:   "swapi-client/0.1.0",
			Timeout:     30 * time.Second,
			LoadTimeout: dashboard.DefaultConfig().LoadTimeout,
		},
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			PageTTL: 24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

var validate = validator.New()

// Load builds and validates the configuration.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		if err := loadFile(opts.ConfigFile, &cfg); err != nil {
			return nil, err
		}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if opts.EnvFile != "" {
		dotenv, err := godotenv.Read(opts.EnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read env file %s: %w", opts.EnvFile, err)
		}
		processLookup := lookup
		lookup = func(key string) (string, bool) {
			if v, ok := processLookup(key); ok {
				return v, true
			}
			v, ok := dotenv[key]
			return v, ok
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config file not found: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("SWAPI_BASE_URL", &cfg.API.BaseURL)
	str("SWAPI_USER_AGENT", &cfg.API.UserAgent)
	str("PORT", &cfg.Server.Port)
	str("REDIS_URL", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	str("LOG_LEVEL", &cfg.Log.Level)

	for key, dst := range map[string]*time.Duration{
		"SWAPI_TIMEOUT":      &cfg.API.Timeout,
		"SWAPI_LOAD_TIMEOUT": &cfg.API.LoadTimeout,
		"SHUTDOWN_TIMEOUT":   &cfg.Server.ShutdownTimeout,
		"PAGE_TTL":           &cfg.Redis.PageTTL,
	} {
		if err := dur(key, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup("REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}

	if v, ok := lookup("LOG_PRETTY"); ok && v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse LOG_PRETTY: %w", err)
		}
		cfg.Log.Pretty = pretty
	}

	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}

	return nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	return nil
}

// ClientConfig returns the SWAPI client configuration.
func (c Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL:   c.API.BaseURL,
		UserAgent: c.API.UserAgent,
		Timeout:   c.API.Timeout,
	}
}

// DashboardConfig returns the dashboard configuration.
func (c Config) DashboardConfig() dashboard.Config {
	return dashboard.Config{LoadTimeout: c.API.LoadTimeout}
}

// LoggingConfig returns the logger configuration writing to w.
func (c Config) LoggingConfig(w io.Writer) logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	cfg.Output = w
	return cfg
}
