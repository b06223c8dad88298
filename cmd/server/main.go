package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ExclusiveDisjunction/sse-back/internal/config"
	"github.com/ExclusiveDisjunction/sse-back/internal/logging"
	"github.com/ExclusiveDisjunction/sse-back/internal/repository"
	"github.com/ExclusiveDisjunction/sse-back/internal/server"
	"github.com/ExclusiveDisjunction/sse-back/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	source, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err, "driver", cfg.Store.Driver)
		os.Exit(1)
	}
	defer func() {
		if err := source.Close(context.Background()); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	routes := service.NewRouteService(source, cfg.Routing, logger, service.NewMetrics(registry))

	if _, err := routes.Reload(ctx); err != nil {
		logger.Error("initial snapshot failed", "error", err)
		os.Exit(1)
	}

	if cfg.Routing.WatchTable && cfg.Routing.TablePath != "" {
		watcher, err := service.NewTableWatcher(cfg.Routing.TablePath, func(ctx context.Context) error {
			_, err := routes.Reload(ctx)
			return err
		}, logger)
		if err != nil {
			logger.Error("failed to watch route table", "error", err)
			os.Exit(1)
		}
		defer watcher.Close()
		watcher.Start(ctx)
	}

	deps := server.RouterDependencies{
		Health: routes,
		API:    server.NewAPIHandlers(logger, routes),
		CORS: server.CORSPolicy{
			Origins:     cfg.HTTP.AllowedOrigins,
			Headers:     cfg.HTTP.AllowedHeaders,
			Credentials: true,
		},
	}
	if cfg.HTTP.MetricsEnabled {
		deps.Metrics = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	srv := server.New(logger, cfg.HTTP, server.NewRouter(logger, deps))
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped unexpectedly", "error", err)
		os.Exit(1)
	}
}
