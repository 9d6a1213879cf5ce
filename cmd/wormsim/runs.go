package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vanshika/wormsim/internal/domain"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run ledger",
	}
	cmd.PersistentFlags().String("store", "", "Run ledger path (overrides STORE_PATH)")
	cmd.AddCommand(newRunsListCmd(), newRunsShowCmd())
	return cmd
}

func newRunsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer a.Close()

			runs, err := a.service.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				if runs == nil {
					runs = []domain.RunRecord{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
				return nil
			}
			printRunTable(cmd.OutOrStdout(), runs, time.Now())
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of runs to show")
	return cmd
}

func newRunsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer a.Close()

			run, err := a.service.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(run)
			}
			printRun(cmd.OutOrStdout(), run)
			return nil
		},
	}
}

func printRunTable(w io.Writer, runs []domain.RunRecord, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tNETWORK\tMODE\tOUTCOME\tROUNDS\tHOSTS")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			run.ID,
			humanize.RelTime(run.CreatedAt, now, "ago", "from now"),
			run.Network,
			run.Mode,
			run.Outcome,
			run.Rounds,
			humanize.Comma(int64(run.NodeCount)),
		)
	}
	tw.Flush()
}

func printRun(w io.Writer, run domain.RunRecord) {
	fmt.Fprintf(w, "Run:         %s\n", run.ID)
	fmt.Fprintf(w, "Recorded:    %s\n", run.CreatedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "Network:     %s (%s hosts)\n", run.Network, humanize.Comma(int64(run.NodeCount)))
	fmt.Fprintf(w, "Mode:        %s\n", run.Mode)
	fmt.Fprintf(w, "Outcome:     %s after %s\n", run.Outcome, pluralRounds(run.Rounds))
	fmt.Fprintf(w, "Infection:   p=%.3f, first host %s\n", run.InfectionProb, run.PatientZero)
	if run.Mode == domain.ModeCompetitive {
		fmt.Fprintf(w, "Inoculation: p=%.3f, first host %s\n", run.InoculationProb, run.Inoculator)
	}
	fmt.Fprintf(w, "Final:       infected=%d inoculated=%d\n", run.InfectedCount, run.InoculatedCount)
	fmt.Fprintf(w, "Seed:        %d\n", run.Seed)
	fmt.Fprintf(w, "Duration:    %s\n", run.Duration.Round(time.Microsecond))
}
