package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP    HTTPConfig
	Graph   GraphConfig
	Path    PathConfig
	Logging LoggingConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int `validate:"min=1,max=65535"`
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MetricsEnabled    bool
	AllowedOriginsCSV string
}

// GraphConfig describes connectivity to the graph database (Neo4j or Spanner Graph).
type GraphConfig struct {
	Backend        string `validate:"oneof=neo4j spanner"`
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
	Spanner        SpannerConfig
}

// SpannerConfig locates a Cloud Spanner database holding a property graph.
type SpannerConfig struct {
	ProjectID  string
	InstanceID string `validate:"required"`
	DatabaseID string `validate:"required"`
	GraphName  string `validate:"required,identifier"`
}

// DatabasePath returns the fully qualified Spanner database name.
func (c SpannerConfig) DatabasePath() string {
	return fmt.Sprintf("projects/%s/instances/%s/databases/%s", c.ProjectID, c.InstanceID, c.DatabaseID)
}

// PathConfig bounds the segmented shortest-path pipeline.
type PathConfig struct {
	// MaxHop is the largest hop count a single store query may traverse.
	MaxHop int `validate:"min=1"`
	// LengthCap bounds the total-length probe and must be at least MaxHop.
	LengthCap      int           `validate:"min=1,gtefield=MaxHop"`
	ResolveTimeout time.Duration `validate:"gte=0"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	Colored       bool
	IncludeCaller bool
	File          string
	MaxSizeMB     int `validate:"gte=0"`
	MaxAgeDays    int `validate:"gte=0"`
	MaxBackups    int `validate:"gte=0"`
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 35 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultLogMaxSizeMB     = 100
	defaultLogMaxAgeDays    = 14
	defaultGraphBackend     = "neo4j"
	defaultGraphMaxSessions = 10
	defaultSpannerInstance  = "jblab"
	defaultSpannerDatabase  = "jblab"
	defaultSpannerGraph     = "INVENTARIO2"
	defaultMaxHop           = 20
	defaultLengthCap        = 100
	defaultResolveTimeout   = 30 * time.Second
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Host:            valueOrDefault("SERVER_HOST", defaultHost),
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			Colored:       parseBoolWithDefault("LOG_COLOR", false),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
			File:          os.Getenv("LOG_FILE"),
			MaxSizeMB:     parseIntWithDefault("LOG_MAX_SIZE_MB", defaultLogMaxSizeMB),
			MaxAgeDays:    parseIntWithDefault("LOG_MAX_AGE_DAYS", defaultLogMaxAgeDays),
			MaxBackups:    parseIntWithDefault("LOG_MAX_BACKUPS", 0),
		},
		Graph: GraphConfig{
			Backend:        strings.ToLower(valueOrDefault("GRAPH_BACKEND", defaultGraphBackend)),
			URI:            os.Getenv("GRAPH_URI"),
			Database:       valueOrDefault("GRAPH_DATABASE", ""),
			Username:       os.Getenv("GRAPH_USERNAME"),
			Password:       os.Getenv("GRAPH_PASSWORD"),
			MaxConnections: parseIntWithDefault("GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions),
			Spanner: SpannerConfig{
				ProjectID:  valueOrDefault("SPANNER_PROJECT_ID", os.Getenv("GOOGLE_CLOUD_PROJECT")),
				InstanceID: valueOrDefault("SPANNER_INSTANCE_ID", defaultSpannerInstance),
				DatabaseID: valueOrDefault("SPANNER_DATABASE_ID", defaultSpannerDatabase),
				GraphName:  valueOrDefault("SPANNER_GRAPH_NAME", defaultSpannerGraph),
			},
		},
		Path: PathConfig{
			MaxHop:         parseIntWithDefault("PATH_MAX_HOP", defaultMaxHop),
			LengthCap:      parseIntWithDefault("PATH_LENGTH_CAP", defaultLengthCap),
			ResolveTimeout: defaultResolveTimeout,
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	if os.Getenv("SERVER_PORT") == "" {
		// Cloud Run style deployments only set PORT.
		if port, err = parsePort("PORT", defaultPort); err != nil {
			return Config{}, err
		}
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"PATH_RESOLVE_TIMEOUT", &cfg.Path.ResolveTimeout},
	}
	for _, d := range durations {
		if err := parseDuration(d.key, d.dst); err != nil {
			return Config{}, err
		}
	}

	cfg.HTTP.MetricsEnabled = parseBoolWithDefault("SERVER_METRICS_ENABLED", false)
	cfg.HTTP.AllowedOriginsCSV = os.Getenv("SERVER_ALLOWED_ORIGINS")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return identifierPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks field constraints. The Spanner section is only checked when
// the spanner backend is selected.
func (c Config) Validate() error {
	if err := validate.Struct(c.HTTP); err != nil {
		return fmt.Errorf("invalid http config: %w", err)
	}
	if err := validate.StructExcept(c.Graph, "Spanner"); err != nil {
		return fmt.Errorf("invalid graph config: %w", err)
	}
	if c.Graph.Backend == "spanner" {
		if c.Graph.Spanner.ProjectID == "" {
			return ErrMissingProject
		}
		if err := validate.Struct(c.Graph.Spanner); err != nil {
			return fmt.Errorf("invalid spanner config: %w", err)
		}
	}
	if err := validate.Struct(c.Path); err != nil {
		return fmt.Errorf("invalid path config: %w", err)
	}
	if err := validate.Struct(c.Logging); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}
	return nil
}

// ErrMissingProject is returned when the spanner backend has no project id.
var ErrMissingProject = errors.New("SPANNER_PROJECT_ID or GOOGLE_CLOUD_PROJECT is required for the spanner backend")

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
