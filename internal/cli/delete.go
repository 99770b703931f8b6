package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aryankumar/dockyard/internal/util"
)

// newDeleteCmd creates the delete command
func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <name>",
		Short:   "Delete a service connection",
		Long:    `Delete a service connection from the catalogue by name.`,
		Aliases: []string{"rm", "remove"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd.Context(), args[0])
		},
	}

	return cmd
}

func runDelete(ctx context.Context, name string) error {
	manager, _, err := newManager()
	if err != nil {
		return err
	}

	conn, err := manager.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("%s", util.FriendlyError(err))
	}

	meta := conn.Meta()
	if err := manager.Delete(ctx, meta.ID); err != nil {
		return fmt.Errorf("%s", util.FriendlyError(err))
	}

	fmt.Fprintf(os.Stdout, "Connection %q deleted\n", meta.Name)
	return nil
}
