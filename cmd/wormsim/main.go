package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vanshika/wormsim/internal/domain"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitUsage      = 2
	exitStagnation = 3
	exitCancelled  = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(stderr, "wormsim:", err)
	return exitCode(err)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wormsim",
		Short: "Simulate a worm spreading through a network",
		Long: `wormsim loads an undirected network from a CSV edge list, infects one
host, and spreads the infection round by round. With an inoculator set, a
cure spreads in competition with the worm and overrides it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newSimulateCmd(),
		newTrialsCmd(),
		newRunsCmd(),
	)
	return rootCmd
}

// exitCode maps a command error onto the process status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return exitCancelled
	case errors.Is(err, domain.ErrStagnation):
		return exitStagnation
	case errors.Is(err, domain.ErrConfiguration),
		errors.Is(err, domain.ErrInputFormat),
		errors.Is(err, domain.ErrUnknownNode),
		errors.Is(err, domain.ErrIO):
		return exitUsage
	default:
		return exitFailure
	}
}
