package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GRAPH_URI", "bolt://localhost:7687")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTP.Port != defaultPort {
		t.Errorf("expected port %d, got %d", defaultPort, cfg.HTTP.Port)
	}
	if cfg.Store.Driver != DriverNeo4j {
		t.Errorf("expected neo4j driver, got %q", cfg.Store.Driver)
	}
	if cfg.Routing.Workers != defaultRoutingWorkers {
		t.Errorf("expected %d workers, got %d", defaultRoutingWorkers, cfg.Routing.Workers)
	}
	if cfg.Routing.ReloadTimeout != defaultReloadTimeout {
		t.Errorf("expected reload timeout %s, got %s", defaultReloadTimeout, cfg.Routing.ReloadTimeout)
	}
	if len(cfg.HTTP.AllowedOrigins) != 0 {
		t.Errorf("expected no allowed origins, got %v", cfg.HTTP.AllowedOrigins)
	}
	if got := strings.Join(cfg.HTTP.AllowedHeaders, ","); !strings.Contains(got, "ngrok-skip-browser-warning") || !strings.Contains(got, "is_group") {
		t.Errorf("expected map client headers by default, got %v", cfg.HTTP.AllowedHeaders)
	}
}

func TestLoadCORSLists(t *testing.T) {
	t.Setenv("GRAPH_URI", "bolt://localhost:7687")
	t.Setenv("SERVER_ALLOWED_ORIGINS", " http://localhost:4200, ,https://langtowl.com")
	t.Setenv("SERVER_ALLOWED_HEADERS", "Content-Type,token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := strings.Join(cfg.HTTP.AllowedOrigins, "|"); got != "http://localhost:4200|https://langtowl.com" {
		t.Errorf("unexpected origins %q", got)
	}
	if got := strings.Join(cfg.HTTP.AllowedHeaders, "|"); got != "Content-Type|token" {
		t.Errorf("unexpected headers %q", got)
	}
}

func TestLoadRoutingOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/campus.db")
	t.Setenv("ROUTING_TABLE_PATH", "dijkstra.msgpack")
	t.Setenv("ROUTING_ALL_COLUMNS", "true")
	t.Setenv("ROUTING_WORKERS", "-2")
	t.Setenv("ROUTING_RELOAD_TIMEOUT", "45s")
	t.Setenv("SERVER_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.SQLitePath != "/tmp/campus.db" {
		t.Errorf("unexpected store config %+v", cfg.Store)
	}
	if !cfg.Routing.AllColumns || cfg.Routing.TablePath != "dijkstra.msgpack" {
		t.Errorf("unexpected routing config %+v", cfg.Routing)
	}
	if cfg.Routing.Workers != defaultRoutingWorkers {
		t.Errorf("non-positive workers should fall back, got %d", cfg.Routing.Workers)
	}
	if cfg.Routing.ReloadTimeout != 45*time.Second || cfg.HTTP.ShutdownTimeout != 3*time.Second {
		t.Errorf("durations not applied: %+v %+v", cfg.Routing, cfg.HTTP)
	}
}

func TestLoadStoreValidation(t *testing.T) {
	t.Setenv("STORE_DRIVER", "file")
	if _, err := Load(); !errors.Is(err, errMissingSetting) {
		t.Fatalf("expected missing DATASET_PATH, got %v", err)
	}

	t.Setenv("STORE_DRIVER", "postgres")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "STORE_DRIVER") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("GRAPH_URI", "bolt://localhost:7687")

	t.Setenv("SERVER_PORT", "70000")
	if _, err := Load(); err == nil {
		t.Fatalf("expected port range error")
	}

	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "SERVER_READ_TIMEOUT") {
		t.Fatalf("expected duration error, got %v", err)
	}
}
