package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/aryankumar/dockyard/internal/probe"
)

// TableFormatter formats output as a table (kubectl-style)
type TableFormatter struct {
	options *Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(opts *Options) *TableFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &TableFormatter{
		options: opts,
	}
}

// Format outputs a single data item as a table
func (f *TableFormatter) Format(w io.Writer, data interface{}) error {
	table := f.createTable(w)

	// Handle different data types
	switch v := data.(type) {
	case map[string]interface{}:
		return f.formatMap(table, v)
	case []map[string]interface{}:
		return f.formatMapSlice(table, v)
	case string:
		fmt.Fprintln(w, v)
		return nil
	default:
		// Fallback to simple string representation
		fmt.Fprintln(w, v)
		return nil
	}
}

// FormatReports outputs probe reports as a table
func (f *TableFormatter) FormatReports(w io.Writer, reports []probe.Report) error {
	if len(reports) == 0 {
		fmt.Fprintln(w, "No connections")
		return nil
	}

	colors := NewColorScheme(w, f.options.NoColor)
	table := f.createTable(w)

	headers := []string{"NAME", "KIND", "HEALTHY", "VERSION"}
	if f.options.Wide {
		headers = append(headers, "DURATION", "ID")
	}

	if !f.options.NoHeaders {
		if colors.Disabled {
			table.SetHeader(headers)
		} else {
			coloredHeaders := make([]string, len(headers))
			for i, h := range headers {
				coloredHeaders[i] = colors.Header(h)
			}
			table.SetHeader(coloredHeaders)
		}
	}

	for _, report := range reports {
		table.Append(f.formatReportRow(report, colors))
	}

	table.Render()

	f.printSummary(w, reports, colors)

	return nil
}

// formatReportRow formats a single probe report as a table row
func (f *TableFormatter) formatReportRow(report probe.Report, colors *ColorScheme) []string {
	name := report.Name
	if !colors.Disabled {
		name = colors.Name(name)
	}

	healthy := "false"
	if report.State.Healthy {
		healthy = "true"
	}
	if !colors.Disabled {
		healthy = colors.HealthColor(report.State.Healthy)(healthy)
	}

	version := report.State.Version
	if version == "" {
		version = "<unknown>"
	}

	row := []string{name, string(report.Kind), healthy, version}

	if f.options.Wide {
		duration := report.Duration.String()
		if !colors.Disabled {
			duration = colors.Duration(duration)
		}
		row = append(row, duration, report.ID)
	}

	return row
}

// formatMap formats a map as a two-column table (key-value pairs)
func (f *TableFormatter) formatMap(table *tablewriter.Table, data map[string]interface{}) error {
	if !f.options.NoHeaders {
		table.SetHeader([]string{"KEY", "VALUE"})
	}

	for k, v := range data {
		table.Append([]string{k, fmt.Sprintf("%v", v)})
	}

	table.Render()
	return nil
}

// formatMapSlice formats a slice of maps as a table
func (f *TableFormatter) formatMapSlice(table *tablewriter.Table, data []map[string]interface{}) error {
	if len(data) == 0 {
		return nil
	}

	// Extract headers from the first map
	var headers []string
	for k := range data[0] {
		headers = append(headers, strings.ToUpper(k))
	}

	if !f.options.NoHeaders {
		table.SetHeader(headers)
	}

	// Add rows
	for _, item := range data {
		var row []string
		for _, h := range headers {
			key := strings.ToLower(h)
			row = append(row, fmt.Sprintf("%v", item[key]))
		}
		table.Append(row)
	}

	table.Render()
	return nil
}

// createTable creates a new table with kubectl-style configuration
func (f *TableFormatter) createTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)

	// kubectl-style configuration
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t") // Tab-separated like kubectl
	table.SetNoWhiteSpace(true)

	return table
}

// printSummary prints a summary of the probe reports
func (f *TableFormatter) printSummary(w io.Writer, reports []probe.Report, colors *ColorScheme) {
	summary := probe.Summarize(reports)

	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Summary: ")

	healthyText := fmt.Sprintf("%d healthy", summary.Healthy)
	if !colors.Disabled {
		healthyText = colors.Success(healthyText)
	}

	unhealthyText := fmt.Sprintf("%d unhealthy", summary.Unhealthy)
	if !colors.Disabled && summary.Unhealthy > 0 {
		unhealthyText = colors.Error(unhealthyText)
	}

	fmt.Fprintf(w, "%s, %s\n", healthyText, unhealthyText)
}
