package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aryankumar/dockyard/internal/connection"
)

// newTypesCmd creates the types command
func newTypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List creatable service connection types",
		Long: `List every backend variant this control plane can create connections
for. Each entry names the variant, describes it, and carries the
component identifier a UI uses to render its creation form.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes()
		},
	}

	return cmd
}

func runTypes() error {
	descriptors := connection.Default.Descriptors()

	switch viper.GetString("output") {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(descriptors)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		defer encoder.Close()
		return encoder.Encode(descriptors)
	default:
		return typesTable(descriptors)
	}
}

func typesTable(descriptors []connection.Descriptor) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Kind", "Name", "Component", "Description"})
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

	for _, d := range descriptors {
		table.Append([]string{string(d.Kind), d.DisplayName, d.Component, d.Description})
	}

	table.Render()
	fmt.Fprintf(os.Stdout, "\nTotal types: %d\n", len(descriptors))
	return nil
}
