package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vanshika/wormsim/internal/config"
	"github.com/vanshika/wormsim/internal/domain"
	"github.com/vanshika/wormsim/internal/graph"
	"github.com/vanshika/wormsim/internal/logging"
	"github.com/vanshika/wormsim/internal/network"
	"github.com/vanshika/wormsim/internal/repository"
	"github.com/vanshika/wormsim/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ingest:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <edges.csv>",
		Short: "Load a CSV edge list into Neo4j as a named network",
		Long: `ingest parses the edge list exactly as wormsim does, then MERGEs every host
and link into the graph database in concurrent batches. Simulate against it
with wormsim simulate -n neo4j:<name>.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			workers, _ := cmd.Flags().GetInt("workers")
			batchSize, _ := cmd.Flags().GetInt("batch-size")
			replace, _ := cmd.Flags().GetBool("replace")
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.LoadWithFile(configPath)
			if err != nil {
				return err
			}
			logger := logging.New(cfg.Logging).With("component", "ingest")
			ctx := cmd.Context()

			g, err := network.LoadFile(args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(name) == "" {
				name = networkNameFromPath(args[0])
			}

			client, err := buildGraphClient(ctx, logger, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := client.Close(context.Background()); err != nil {
					logger.Warn("closing graph client failed", "error", err)
				}
			}()

			repo := repository.New(client)
			if err := repo.EnsureSchema(ctx); err != nil {
				return err
			}
			if replace {
				if err := repo.DeleteNetwork(ctx, name); err != nil {
					return err
				}
				logger.Info("existing network removed", "network", name)
			}

			edges := g.Edges()
			importer := service.NewBulkImporter(repo, workers, batchSize, logger)

			start := time.Now()
			logger.Info("ingesting network",
				"network", name,
				"hosts", g.NodeCount(),
				"links", len(edges),
				"workers", workers,
			)
			batches, err := importer.Import(ctx, name, edges)
			if err != nil {
				logger.Error("ingestion failed", "error", err, "batches_imported", batches)
				return err
			}

			hosts, err := repo.CountHosts(ctx, name)
			if err != nil {
				return err
			}
			logger.Info("ingestion complete",
				"network", name,
				"batches", batches,
				"hosts", hosts,
				"duration", time.Since(start).String(),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", service.StoredPrefix, name)
			return nil
		},
	}

	cmd.Flags().String("name", "", "Network name (defaults to the file name without extension)")
	cmd.Flags().Int("workers", 4, "Number of concurrent import workers")
	cmd.Flags().Int("batch-size", 500, "Edges per import batch")
	cmd.Flags().Bool("replace", false, "Delete the existing network of the same name first")
	cmd.Flags().String("config", "", "Config file (.yaml, .yml or .toml)")
	return cmd
}

func networkNameFromPath(path string) string {
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, errors.Wrap(domain.ErrConfiguration, "GRAPH_URI is required for ingestion")
	}
	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	client, err := graph.NewNeo4jClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}
