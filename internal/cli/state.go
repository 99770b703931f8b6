package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aryankumar/dockyard/internal/connection"
	"github.com/aryankumar/dockyard/internal/probe"
	"github.com/aryankumar/dockyard/internal/util"
)

// newStateCmd creates the state command
func newStateCmd() *cobra.Command {
	var (
		all  bool
		wide bool
	)

	cmd := &cobra.Command{
		Use:   "state [name]",
		Short: "Probe the health of service connections",
		Long: `Probe service connections and report their health. A probe never
errors: an unreachable or misconfigured backend simply reports
unhealthy with no version. Pass a connection name to probe one
connection, or --all to probe the whole catalogue concurrently.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				return runStateAll(cmd.Context(), wide)
			}
			if len(args) != 1 {
				return fmt.Errorf("requires a connection name or --all")
			}
			return runState(cmd.Context(), args[0], wide)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "probe every connection in the catalogue")
	cmd.Flags().BoolVar(&wide, "wide", false, "show probe duration and connection id")

	return cmd
}

func runState(ctx context.Context, name string, wide bool) error {
	manager, cfg, err := newManager()
	if err != nil {
		return err
	}

	conn, err := manager.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("%s", util.FriendlyError(err))
	}

	pool := probe.NewPool(1, nil)
	reports := pool.Run(ctx, []connection.Connection{conn})

	return newFormatter(cfg, wide).FormatReports(os.Stdout, reports)
}

func runStateAll(ctx context.Context, wide bool) error {
	manager, cfg, err := newManager()
	if err != nil {
		return err
	}

	conns, err := manager.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list connections: %w", err)
	}

	if len(conns) == 0 {
		fmt.Fprintln(os.Stderr, "No connections in the catalogue")
		return nil
	}

	workers := viper.GetInt("parallel")
	if workers <= 0 {
		workers = cfg.Defaults.Parallel
	}

	pool := probe.NewPool(workers, nil)

	var progress func(completed, total int)
	if outputFormat(cfg) == "table" {
		progress = func(completed, total int) {
			fmt.Fprintf(os.Stderr, "\rProbing connections... %d/%d", completed, total)
			if completed == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	reports := pool.RunWithProgress(ctx, conns, progress)

	return newFormatter(cfg, wide).FormatReports(os.Stdout, reports)
}
