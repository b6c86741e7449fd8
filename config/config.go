package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	DriverChromedp = "chromedp"
	DriverRod      = "rod"
)

type Config struct {
	StartURL       string        `yaml:"start_url"`
	OutputPath     string        `yaml:"output_path"`
	OutputDir      string        `yaml:"output_dir"`
	Driver         string        `yaml:"driver"`
	Headless       bool          `yaml:"headless"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryBackoff   time.Duration `yaml:"retry_backoff"`
	JitterMin      time.Duration `yaml:"jitter_min"`
	JitterMax      time.Duration `yaml:"jitter_max"`
	PageInterval   time.Duration `yaml:"page_interval"`
	MaxPages       int           `yaml:"max_pages"`
	SessionParams  []string      `yaml:"session_params"`
	SaveHTMLDir    string        `yaml:"save_html_dir"`
	MaxWorkers     int           `yaml:"max_workers"`
	Postgres       Postgres      `yaml:"postgres"`
	Mongo          Mongo         `yaml:"mongo"`
}

type Postgres struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

func (p Postgres) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.Name,
		p.SSLMode,
	)
}

type Mongo struct {
	Enabled    bool   `yaml:"enabled"`
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

func DefaultConfig() *Config {
	return &Config{
		OutputDir:      ".",
		Driver:         DriverChromedp,
		Headless:       true,
		RequestTimeout: 30 * time.Second,
		MaxRetries:     3,
		RetryBackoff:   2 * time.Second,
		SessionParams:  []string{"sk"},
		MaxWorkers:     4,
		Postgres: Postgres{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Name:     "property_parser",
			SSLMode:  "disable",
		},
		Mongo: Mongo{
			URI:        "mongodb://localhost:27017",
			Database:   "property_parser",
			Collection: "listings",
		},
	}
}

// Load builds the config from defaults, then the YAML file at path (if any),
// then a .env file in the working directory, then PP_* environment variables.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("could not parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.StartURL = envString("PP_START_URL", cfg.StartURL)
	cfg.OutputPath = envString("PP_OUTPUT_PATH", cfg.OutputPath)
	cfg.OutputDir = envString("PP_OUTPUT_DIR", cfg.OutputDir)
	cfg.Driver = envString("PP_DRIVER", cfg.Driver)
	cfg.Headless = envBool("PP_HEADLESS", cfg.Headless)
	cfg.RequestTimeout = envDuration("PP_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.MaxRetries = envInt("PP_MAX_RETRIES", cfg.MaxRetries)
	cfg.RetryBackoff = envDuration("PP_RETRY_BACKOFF", cfg.RetryBackoff)
	cfg.JitterMin = envDuration("PP_JITTER_MIN", cfg.JitterMin)
	cfg.JitterMax = envDuration("PP_JITTER_MAX", cfg.JitterMax)
	cfg.PageInterval = envDuration("PP_PAGE_INTERVAL", cfg.PageInterval)
	cfg.MaxPages = envInt("PP_MAX_PAGES", cfg.MaxPages)
	cfg.SaveHTMLDir = envString("PP_SAVE_HTML_DIR", cfg.SaveHTMLDir)
	cfg.MaxWorkers = envInt("PP_MAX_WORKERS", cfg.MaxWorkers)
	if v := envString("PP_SESSION_PARAMS", ""); v != "" {
		cfg.SessionParams = splitList(v)
	}

	cfg.Postgres.Enabled = envBool("PP_PG_ENABLED", cfg.Postgres.Enabled)
	cfg.Postgres.Host = envString("PP_PG_HOST", cfg.Postgres.Host)
	cfg.Postgres.Port = envInt("PP_PG_PORT", cfg.Postgres.Port)
	cfg.Postgres.User = envString("PP_PG_USER", cfg.Postgres.User)
	cfg.Postgres.Password = envString("PP_PG_PASSWORD", cfg.Postgres.Password)
	cfg.Postgres.Name = envString("PP_PG_NAME", cfg.Postgres.Name)
	cfg.Postgres.SSLMode = envString("PP_PG_SSLMODE", cfg.Postgres.SSLMode)

	cfg.Mongo.Enabled = envBool("PP_MONGO_ENABLED", cfg.Mongo.Enabled)
	cfg.Mongo.URI = envString("PP_MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.Database = envString("PP_MONGO_DATABASE", cfg.Mongo.Database)
	cfg.Mongo.Collection = envString("PP_MONGO_COLLECTION", cfg.Mongo.Collection)
}

func (c *Config) Validate() error {
	switch c.Driver {
	case DriverChromedp, DriverRod:
	default:
		return fmt.Errorf("unknown driver %q (want %s or %s)", c.Driver, DriverChromedp, DriverRod)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", c.RequestTimeout)
	}
	if c.RetryBackoff < 0 || c.PageInterval < 0 {
		return errors.New("retry_backoff and page_interval cannot be negative")
	}
	if c.JitterMax > 0 && c.JitterMax < c.JitterMin {
		return fmt.Errorf("jitter_max (%v) is below jitter_min (%v)", c.JitterMax, c.JitterMin)
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max_pages cannot be negative, got %d", c.MaxPages)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be at least 1, got %d", c.MaxWorkers)
	}
	return nil
}

// UseJitter reports whether retries should wait a random window instead of
// the flat backoff.
func (c *Config) UseJitter() bool {
	return c.JitterMax > 0
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
