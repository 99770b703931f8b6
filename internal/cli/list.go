package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aryankumar/dockyard/internal/connection"
)

// newListCmd creates the list command
func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all service connections",
		Long: `List every service connection in the catalogue across all backend
kinds. Use 'dockyard state --all' to additionally probe their health.`,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context())
		},
	}

	return cmd
}

func runList(ctx context.Context) error {
	manager, _, err := newManager()
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

	switch viper.GetString("output") {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(conns)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		defer encoder.Close()
		return encoder.Encode(conns)
	default:
		return listTable(conns)
	}
}

func listTable(conns []connection.Connection) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Kind", "Local", "ID"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	for _, conn := range conns {
		meta := conn.Meta()
		local := ""
		if meta.Local {
			local = "true"
		}
		table.Append([]string{meta.Name, string(meta.Kind), local, meta.ID})
	}

	table.Render()
	fmt.Fprintf(os.Stdout, "\nTotal connections: %d\n", len(conns))
	return nil
}
