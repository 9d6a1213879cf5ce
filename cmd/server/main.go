package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/vanshika/wormsim/internal/config"
	"github.com/vanshika/wormsim/internal/graph"
	"github.com/vanshika/wormsim/internal/logging"
	"github.com/vanshika/wormsim/internal/repository"
	"github.com/vanshika/wormsim/internal/server"
	"github.com/vanshika/wormsim/internal/service"
	"github.com/vanshika/wormsim/internal/simulation"
	"github.com/vanshika/wormsim/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWithFile(os.Getenv("WORMSIM_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	ledger, err := store.Open(ctx, cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open run ledger", "error", err, "path", cfg.Store.Path)
		os.Exit(1)
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("closing run ledger failed", "error", err)
		}
	}()

	health := server.CompositeHealth{server.LedgerHealthService{Ledger: ledger}}

	var edges service.EdgeSource
	graphClient, err := buildGraphClient(ctx, cfg)
	switch {
	case errors.Is(err, graph.ErrMissingURI):
		logger.Info("graph database not configured; stored networks disabled")
	case err != nil:
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	default:
		defer func() {
			if err := graphClient.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		}()
		edges = repository.New(graphClient)
		health = append(health, server.GraphHealthService{Client: graphClient})
	}

	driver := simulation.NewDriver(logger, simulation.NewLogReporter(logger, 50))
	svc := service.NewSimulationService(driver, edges, ledger, logger)
	apiHandlers := server.NewAPIHandlers(logger, svc, server.APIOptionsFromConfig(cfg))

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:         health,
		API:            apiHandlers,
		AllowedOrigins: cfg.HTTP.AllowedOrigins(),
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
	})

	srv := server.New(logger, cfg.HTTP, router)
	if err := srv.Run(ctx, nil); err != nil {
		logger.Error("server stopped unexpectedly", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func buildGraphClient(ctx context.Context, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, graph.ErrMissingURI
	}
	return graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	})
}
