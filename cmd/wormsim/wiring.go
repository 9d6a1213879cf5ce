package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vanshika/wormsim/internal/config"
	"github.com/vanshika/wormsim/internal/domain"
	"github.com/vanshika/wormsim/internal/graph"
	"github.com/vanshika/wormsim/internal/logging"
	"github.com/vanshika/wormsim/internal/repository"
	"github.com/vanshika/wormsim/internal/service"
	"github.com/vanshika/wormsim/internal/simulation"
	"github.com/vanshika/wormsim/internal/store"
)

// app holds what a command needs once configuration is resolved.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	service *service.SimulationService
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// addSimulationFlags registers the per-run flags shared by simulate and trials.
func addSimulationFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("network", "n", "", "CSV edge list to load, or neo4j:<name> for a stored network")
	cmd.Flags().Float64P("infection-probability", "p", 0.5, "Probability that an infection spreads along one edge")
	cmd.Flags().StringP("first-infected", "f", "random", "Initially infected node, or random")
	cmd.Flags().StringP("inoculator", "i", "", "Initially inoculated node, or random; empty disables inoculation")
	cmd.Flags().Float64P("inoculation-probability", "q", 0.5, "Probability that inoculation spreads along one edge")
	cmd.Flags().Int64("seed", 0, "Random seed; 0 picks one from the clock")
	cmd.Flags().Int("max-rounds", 0, "Stop after this many rounds; 0 means unbounded")
	cmd.Flags().String("store", "", "Run ledger path (overrides STORE_PATH)")
}

// loadConfig applies defaults, the config file, the environment and finally
// any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWithFile(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	sim := &cfg.Simulation
	if flags.Changed("network") {
		sim.Network, _ = flags.GetString("network")
	}
	if flags.Changed("infection-probability") {
		sim.InfectionProb, _ = flags.GetFloat64("infection-probability")
	}
	if flags.Changed("first-infected") {
		sim.FirstInfected, _ = flags.GetString("first-infected")
	}
	if flags.Changed("inoculator") {
		sim.Inoculator, _ = flags.GetString("inoculator")
	}
	if flags.Changed("inoculation-probability") {
		sim.InoculationProb, _ = flags.GetFloat64("inoculation-probability")
	}
	if flags.Changed("seed") {
		sim.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("max-rounds") {
		sim.MaxRounds, _ = flags.GetInt("max-rounds")
	}
	if flags.Changed("store") {
		cfg.Store.Path, _ = flags.GetString("store")
	}
	if flags.Changed("record") {
		cfg.Store.Record, _ = flags.GetBool("record")
	}
	return cfg, nil
}

// newApp wires the service. The ledger is opened only when needLedger is set
// and the graph database only when the network lives there.
func newApp(ctx context.Context, cfg config.Config, needLedger bool) (*app, error) {
	logger := logging.New(cfg.Logging).With("component", "wormsim")
	a := &app{cfg: cfg, logger: logger}

	var edges service.EdgeSource
	if strings.HasPrefix(strings.TrimSpace(cfg.Simulation.Network), service.StoredPrefix) {
		client, err := graph.NewNeo4jClient(ctx, graphOptions(cfg.Graph))
		if errors.Is(err, graph.ErrMissingURI) {
			return nil, errors.Wrap(domain.Classify(domain.ErrConfiguration, err), "stored network needs GRAPH_URI")
		}
		if err != nil {
			return nil, errors.Wrap(domain.Classify(domain.ErrIO, err), "connect graph database")
		}
		a.closers = append(a.closers, func() {
			if err := client.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		})
		edges = repository.New(client)
	}

	var ledger service.RunLedger
	if needLedger {
		runs, err := store.Open(ctx, cfg.Store.Path)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := runs.Close(); err != nil {
				logger.Warn("closing run ledger failed", "error", err)
			}
		})
		ledger = runs
	}

	driver := simulation.NewDriver(logger, nil)
	a.service = service.NewSimulationService(driver, edges, ledger, logger)
	return a, nil
}

func graphOptions(cfg config.GraphConfig) graph.Options {
	return graph.Options{
		URI:            cfg.URI,
		Database:       cfg.Database,
		Username:       cfg.Username,
		Password:       cfg.Password,
		MaxConnections: cfg.MaxConnections,
	}
}
