package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vanshika/wormsim/internal/domain"
	"github.com/vanshika/wormsim/internal/service"
	"github.com/vanshika/wormsim/internal/simulation"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one simulation until the network is fully infected or the worm is eradicated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			showProgress, _ := cmd.Flags().GetBool("progress")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Simulation.Network) == "" {
				return errors.Wrap(domain.ErrConfiguration, "--network is required")
			}

			a, err := newApp(cmd.Context(), cfg, cfg.Store.Record)
			if err != nil {
				return err
			}
			defer a.Close()

			var (
				reporter simulation.Reporter = simulation.NewLogReporter(a.logger, 10)
				progress *simulation.ChannelReporter
				wg       sync.WaitGroup
			)
			if showProgress {
				progress = simulation.NewChannelReporter(256)
				reporter = simulation.MultiReporter{reporter, progress}
				wg.Add(1)
				go func() {
					defer wg.Done()
					printProgress(cmd.ErrOrStderr(), progress.Events())
				}()
			}

			resp, runErr := a.service.Simulate(cmd.Context(), service.SimulateRequest{
				Network:  service.ParseNetworkRef(cfg.Simulation.Network),
				Config:   cfg.Simulation.SimulationRun(),
				Seed:     cfg.Simulation.Seed,
				Record:   cfg.Store.Record,
				Reporter: reporter,
			})
			if progress != nil {
				progress.Close()
				wg.Wait()
				if dropped := progress.Dropped(); dropped > 0 {
					a.logger.Warn("progress events dropped", "count", dropped)
				}
			}

			if resp.Result.Mode == "" {
				return runErr
			}
			if err := printResult(cmd.OutOrStdout(), resp, jsonOut); err != nil {
				return err
			}
			return runErr
		},
	}

	addSimulationFlags(cmd)
	cmd.Flags().Bool("progress", false, "Print per-round progress to stderr")
	cmd.Flags().Bool("record", false, "Save the outcome in the run ledger")
	return cmd
}

func printProgress(w io.Writer, events <-chan domain.Progress) {
	for p := range events {
		fmt.Fprintf(w, "round %d: infected=%d (+%d) inoculated=%d (+%d)\n",
			p.Round, p.InfectedCount, p.NewInfections, p.InoculatedCount, p.NewInoculations)
	}
}

func printResult(w io.Writer, resp service.SimulateResponse, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	run, res := resp.Run, resp.Result
	fmt.Fprintf(w, "Outcome:     %s after %s\n", res.Outcome, pluralRounds(res.Rounds))
	fmt.Fprintf(w, "Network:     %s (%s hosts)\n", run.Network, humanize.Comma(int64(run.NodeCount)))
	fmt.Fprintf(w, "Infected:    %s\n", humanize.Comma(int64(res.InfectedCount)))
	if res.Mode == domain.ModeCompetitive {
		fmt.Fprintf(w, "Inoculated:  %s\n", humanize.Comma(int64(res.InoculatedCount)))
	}
	fmt.Fprintf(w, "First host:  %s\n", res.PatientZero)
	if res.Inoculator != "" {
		fmt.Fprintf(w, "Inoculator:  %s\n", res.Inoculator)
	}
	fmt.Fprintf(w, "Seed:        %d\n", run.Seed)
	if run.ID != "" {
		fmt.Fprintf(w, "Run:         %s\n", run.ID)
	}
	return nil
}

func pluralRounds(n int) string {
	if n == 1 {
		return "1 round"
	}
	return humanize.Comma(int64(n)) + " rounds"
}
