package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vanshika/graphpath/internal/config"
	"github.com/vanshika/graphpath/internal/graph"
	"github.com/vanshika/graphpath/internal/logging"
	"github.com/vanshika/graphpath/internal/repository"
	"github.com/vanshika/graphpath/internal/server"
	"github.com/vanshika/graphpath/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	graphClient, dialect, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if graphClient != nil {
			if err := graphClient.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		}
	}()

	repo := repository.New(graphClient, dialect)
	pathService := service.NewPathService(repo, service.Options{
		MaxHop:    cfg.Path.MaxHop,
		LengthCap: cfg.Path.LengthCap,
		Timeout:   cfg.Path.ResolveTimeout,
		Logger:    logger.With("component", "paths"),
	})
	apiHandlers := server.NewAPIHandlers(logger, pathService)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.GraphHealthService{Client: graphClient, Name: cfg.Graph.Backend},
		API:              apiHandlers,
		MetricsEnabled:   cfg.HTTP.MetricsEnabled,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, repository.Dialect, error) {
	switch cfg.Graph.Backend {
	case "spanner":
		dialect, err := repository.SpannerGraph(cfg.Graph.Spanner.GraphName)
		if err != nil {
			return nil, repository.Dialect{}, err
		}
		client, err := graph.NewSpannerClient(ctx, graph.SpannerOptions{
			Database:    cfg.Graph.Spanner.DatabasePath(),
			MaxSessions: cfg.Graph.MaxConnections,
		})
		if err != nil {
			return nil, repository.Dialect{}, err
		}
		logger.Info("connected to graph", "backend", "spanner", "database", cfg.Graph.Spanner.DatabasePath(), "graph", cfg.Graph.Spanner.GraphName)
		return client, dialect, nil
	default:
		if cfg.Graph.URI == "" {
			return nil, repository.Dialect{}, graph.ErrMissingURI
		}
		client, err := graph.NewNeo4jClient(ctx, graph.Options{
			URI:            cfg.Graph.URI,
			Database:       cfg.Graph.Database,
			Username:       cfg.Graph.Username,
			Password:       cfg.Graph.Password,
			MaxConnections: cfg.Graph.MaxConnections,
		})
		if err != nil {
			return nil, repository.Dialect{}, err
		}
		logger.Info("connected to graph", "backend", "neo4j", "uri", cfg.Graph.URI)
		return client, repository.Cypher(), nil
	}
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
