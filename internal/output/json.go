package output

import (
	"encoding/json"
	"io"

	"github.com/aryankumar/dockyard/internal/probe"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	options *Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(opts *Options) *JSONFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &JSONFormatter{
		options: opts,
	}
}

// Format outputs a single data item as JSON
func (f *JSONFormatter) Format(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// FormatReports outputs probe reports as JSON
func (f *JSONFormatter) FormatReports(w io.Writer, reports []probe.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reportDocs(reports))
}

// reportDocs converts reports to a scripting-friendly structure shared by
// the JSON and YAML formatters
func reportDocs(reports []probe.Report) []map[string]interface{} {
	output := make([]map[string]interface{}, len(reports))

	for i, report := range reports {
		output[i] = map[string]interface{}{
			"id":       report.ID,
			"name":     report.Name,
			"kind":     string(report.Kind),
			"healthy":  report.State.Healthy,
			"version":  report.State.Version,
			"duration": report.Duration.String(),
		}
	}

	return output
}
