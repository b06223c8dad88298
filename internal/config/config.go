package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP    HTTPConfig
	Store   StoreConfig
	Graph   GraphConfig
	Routing RoutingConfig
	Logging LoggingConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
	AllowedOrigins  []string // CORS is off when empty
	AllowedHeaders  []string
}

// Store drivers.
const (
	DriverNeo4j  = "neo4j"
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// StoreConfig selects where campus nodes and edges are loaded from.
type StoreConfig struct {
	Driver      string
	SQLitePath  string
	DatasetPath string // JSON dataset for the file driver
}

// GraphConfig describes connectivity to the Neo4j graph database.
type GraphConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// RoutingConfig controls how each snapshot is built.
type RoutingConfig struct {
	TablePath     string // optional serialized route table; wins over Precompute
	Precompute    bool
	AllColumns    bool
	Workers       int
	WatchTable    bool
	ReloadTimeout time.Duration
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultReloadTimeout    = 2 * time.Minute
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10
	defaultRoutingWorkers   = 4
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Host:           valueOrDefault("SERVER_HOST", defaultHost),
			MetricsEnabled: parseBoolWithDefault("SERVER_METRICS_ENABLED", false),
			AllowedOrigins: parseList("SERVER_ALLOWED_ORIGINS", nil),
			AllowedHeaders: parseList("SERVER_ALLOWED_HEADERS", defaultAllowedHeaders),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(valueOrDefault("STORE_DRIVER", DriverNeo4j)),
			SQLitePath:  os.Getenv("SQLITE_PATH"),
			DatasetPath: os.Getenv("DATASET_PATH"),
		},
		Graph: GraphConfig{
			URI:            os.Getenv("GRAPH_URI"),
			Database:       valueOrDefault("GRAPH_DATABASE", ""),
			Username:       os.Getenv("GRAPH_USERNAME"),
			Password:       os.Getenv("GRAPH_PASSWORD"),
			MaxConnections: parseIntWithDefault("GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions),
		},
		Routing: RoutingConfig{
			TablePath:  os.Getenv("ROUTING_TABLE_PATH"),
			Precompute: parseBoolWithDefault("ROUTING_PRECOMPUTE", false),
			AllColumns: parseBoolWithDefault("ROUTING_ALL_COLUMNS", false),
			Workers:    parseIntWithDefault("ROUTING_WORKERS", defaultRoutingWorkers),
			WatchTable: parseBoolWithDefault("ROUTING_WATCH_TABLE", false),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", defaultReadTimeout, &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", defaultWriteTimeout, &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", defaultIdleTimeout, &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout, &cfg.HTTP.ShutdownTimeout},
		{"ROUTING_RELOAD_TIMEOUT", defaultReloadTimeout, &cfg.Routing.ReloadTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = parseDuration(d.key, d.fallback); err != nil {
			return Config{}, err
		}
	}

	if cfg.Routing.Workers <= 0 {
		cfg.Routing.Workers = defaultRoutingWorkers
	}

	if err := cfg.validateStore(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Request headers the campus map client sends on cross-origin calls.
var defaultAllowedHeaders = []string{
	"Content-Type", "Authorization", "ngrok-skip-browser-warning", "token",
	"lat", "long", "start", "end", "is_group",
}

var errMissingSetting = errors.New("required setting is empty")

func (c Config) validateStore() error {
	switch c.Store.Driver {
	case DriverNeo4j:
		if c.Graph.URI == "" {
			return fmt.Errorf("GRAPH_URI: %w", errMissingSetting)
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH: %w", errMissingSetting)
		}
	case DriverFile:
		if c.Store.DatasetPath == "" {
			return fmt.Errorf("DATASET_PATH: %w", errMissingSetting)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want neo4j, sqlite or file)", c.Store.Driver)
	}
	return nil
}

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

// parseList splits a comma separated variable, dropping empty items.
func parseList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return append([]string(nil), fallback...)
	}
	var items []string
	for _, part := range strings.Split(v, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
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
