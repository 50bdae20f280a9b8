package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"creditboard/internal/dashboard/models"
)

// Server captures the BFF server configuration.
type Server struct {
	Addr           string   `yaml:"addr"`
	Environment    string   `yaml:"environment"`
	LogLevel       string   `yaml:"log_level"`
	LogFormat      string   `yaml:"log_format"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	SecureCookie   bool     `yaml:"secure_cookie"`
	Backend        Backend  `yaml:"backend"`
	Sessions       Sessions `yaml:"sessions"`
	Tracing        Tracing  `yaml:"tracing"`
}

// Backend configures the credit backend client.
type Backend struct {
	BaseURL          string        `yaml:"base_url"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold int           `yaml:"breaker_failure_threshold"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown"`
}

// Sessions configures operator sessions and their workers.
type Sessions struct {
	DefaultViewerType models.ViewerType `yaml:"default_viewer_type"`
	// RefreshSchedule is a cron spec; empty disables scheduled refreshes.
	RefreshSchedule  string        `yaml:"refresh_schedule"`
	IdleTTL          time.Duration `yaml:"idle_ttl"`
	EvictionInterval time.Duration `yaml:"eviction_interval"`
}

// Tracing configures span export. An empty endpoint keeps spans in process.
type Tracing struct {
	Endpoint    string  `yaml:"otlp_endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Server {
	return Server{
		Addr:        ":8090",
		Environment: "dev",
		LogLevel:    "info",
		LogFormat:   "json",
		Backend: Backend{
			BaseURL:          "http://localhost:8000",
			Timeout:          15 * time.Second,
			FailureThreshold: 5,
			BreakerCooldown:  30 * time.Second,
		},
		Sessions: Sessions{
			DefaultViewerType: models.DefaultViewerType,
			RefreshSchedule:   "@every 5m",
			IdleTTL:           30 * time.Minute,
			EvictionInterval:  time.Minute,
		},
		Tracing: Tracing{SampleRatio: 1},
	}
}

// FromEnv builds a Server config so main stays lean. Values come from the
// defaults, then the YAML file named by CREDITBOARD_CONFIG, then the
// environment (a .env file in the working directory is loaded first).
func FromEnv() (Server, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CREDITBOARD_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Server{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Server{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c *Server) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Server) applyEnv() error {
	setString(&c.Addr, "CREDITBOARD_ADDR")
	setString(&c.Environment, "ENVIRONMENT")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")
	setString(&c.Backend.BaseURL, "BACKEND_BASE_URL")
	if v := strings.TrimSpace(os.Getenv("DEFAULT_VIEWER_TYPE")); v != "" {
		c.Sessions.DefaultViewerType = models.ViewerType(v)
	}
	// Set but empty is meaningful here: it turns scheduled refreshes off.
	if v, ok := os.LookupEnv("CUSTOMER_REFRESH_SCHEDULE"); ok {
		c.Sessions.RefreshSchedule = strings.TrimSpace(v)
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("SECURE_COOKIE"); v != "" {
		c.SecureCookie = v == "true"
	}

	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"BACKEND_TIMEOUT", &c.Backend.Timeout},
		{"BREAKER_COOLDOWN", &c.Backend.BreakerCooldown},
		{"SESSION_IDLE_TTL", &c.Sessions.IdleTTL},
		{"SESSION_EVICTION_INTERVAL", &c.Sessions.EvictionInterval},
	} {
		if err := setDuration(d.dst, d.key); err != nil {
			return err
		}
	}

	setString(&c.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	if v := os.Getenv("OTEL_SAMPLE_RATIO"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("OTEL_SAMPLE_RATIO: %w", err)
		}
		c.Tracing.SampleRatio = r
	}

	if v := os.Getenv("BREAKER_FAILURE_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BREAKER_FAILURE_THRESHOLD: %w", err)
		}
		c.Backend.FailureThreshold = n
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c Server) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("listen address is required")
	case c.Backend.BaseURL == "":
		return fmt.Errorf("backend base URL is required")
	case c.Backend.Timeout <= 0:
		return fmt.Errorf("backend timeout must be positive")
	case c.Backend.FailureThreshold < 1:
		return fmt.Errorf("breaker failure threshold must be at least 1")
	case !c.Sessions.DefaultViewerType.IsValid():
		return fmt.Errorf("unsupported default viewer type %q", c.Sessions.DefaultViewerType)
	case c.Sessions.IdleTTL <= 0 || c.Sessions.EvictionInterval <= 0:
		return fmt.Errorf("session idle ttl and eviction interval must be positive")
	case c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1:
		return fmt.Errorf("trace sample ratio must be between 0 and 1")
	}
	return nil
}

// DefaultQuery is the filter state new sessions start with.
func (c Server) DefaultQuery() models.DashboardQuery {
	return models.DashboardQuery{ViewerType: c.Sessions.DefaultViewerType}.Normalize()
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
