// Package output provides formatters for displaying dockyard command results.
//
// The package supports multiple output formats (table, JSON, YAML) and
// provides a unified interface for formatting connection listings and
// health probe reports.
//
// # Basic Usage
//
//	// Create a table formatter
//	formatter := output.NewFormatter(output.FormatTable)
//
//	// Format a single data item
//	data := map[string]interface{}{"key": "value"}
//	formatter.Format(os.Stdout, data)
//
//	// Format probe reports
//	reports := pool.Run(ctx, conns)
//	formatter.FormatReports(os.Stdout, reports)
//
// # Options
//
// Formatters can be configured with functional options:
//
//	formatter := output.NewFormatter(
//	    output.FormatTable,
//	    output.WithNoColor(true),
//	    output.WithWide(true),
//	)
//
// # Color Support
//
// Colors are automatically enabled for TTY outputs and disabled for pipes
// and redirects or with WithNoColor(true). Healthy connections render
// green, unhealthy ones red.
package output
