package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vanshika/wormsim/internal/domain"
	"github.com/vanshika/wormsim/internal/service"
	"github.com/vanshika/wormsim/internal/simulation"
)

func newTrialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trials",
		Short: "Run many independent simulations and summarize their outcomes",
		Long: `trials runs the same configuration repeatedly over one network. Trial i is
seeded with seed+i, so a fixed --seed reproduces the whole batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			trials, _ := cmd.Flags().GetInt("trials")
			workers, _ := cmd.Flags().GetInt("workers")
			if trials <= 0 {
				return errors.Wrap(domain.ErrConfiguration, "--trials must be positive")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Simulation.Network) == "" {
				return errors.Wrap(domain.ErrConfiguration, "--network is required")
			}

			a, err := newApp(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.service.Trials(cmd.Context(), service.TrialsRequest{
				Network: service.ParseNetworkRef(cfg.Simulation.Network),
				Config:  cfg.Simulation.SimulationRun(),
				Options: simulation.TrialOptions{
					Trials:   trials,
					Workers:  workers,
					BaseSeed: cfg.Simulation.Seed,
				},
			})
			var taskErr *domain.TaskError
			if err != nil && !errors.As(err, &taskErr) {
				return err
			}

			if err := printSummary(cmd.OutOrStdout(), summary, jsonOut); err != nil {
				return err
			}
			if taskErr != nil {
				return errors.Wrapf(taskErr, "%d of %d trials did not finish", len(taskErr.Errors), summary.Trials)
			}
			return nil
		},
	}

	addSimulationFlags(cmd)
	cmd.Flags().Int("trials", 100, "Number of independent runs")
	cmd.Flags().Int("workers", 4, "Number of concurrent workers")
	return cmd
}

func printSummary(w io.Writer, summary simulation.TrialSummary, jsonOut bool) error {
	summary.Results = nil
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Fprintf(w, "Trials:      %s (base seed %d)\n", humanize.Comma(int64(summary.Trials)), summary.BaseSeed)
	fmt.Fprintf(w, "Rounds:      min %d, mean %.2f, max %d\n", summary.MinRounds, summary.MeanRounds, summary.MaxRounds)

	outcomes := make([]string, 0, len(summary.Outcomes))
	for outcome := range summary.Outcomes {
		outcomes = append(outcomes, string(outcome))
	}
	sort.Strings(outcomes)
	for _, outcome := range outcomes {
		n := summary.Outcomes[domain.Outcome(outcome)]
		share := 100 * float64(n) / float64(max(summary.Trials, 1))
		fmt.Fprintf(w, "  %-15s %6s  (%.1f%%)\n", outcome, humanize.Comma(int64(n)), share)
	}
	return nil
}
