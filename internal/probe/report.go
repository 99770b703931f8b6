package probe

import (
	"fmt"
	"time"
)

// CountHealthy returns the number of healthy reports
func CountHealthy(reports []Report) int {
	count := 0
	for _, r := range reports {
		if r.State.Healthy {
			count++
		}
	}
	return count
}

// CountUnhealthy returns the number of unhealthy reports
func CountUnhealthy(reports []Report) int {
	return len(reports) - CountHealthy(reports)
}

// FilterHealthy returns only the healthy reports
func FilterHealthy(reports []Report) []Report {
	filtered := make([]Report, 0, len(reports))
	for _, r := range reports {
		if r.State.Healthy {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// FilterUnhealthy returns only the unhealthy reports
func FilterUnhealthy(reports []Report) []Report {
	filtered := make([]Report, 0, len(reports))
	for _, r := range reports {
		if !r.State.Healthy {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// MaxDuration returns the longest probe duration among the reports
func MaxDuration(reports []Report) time.Duration {
	var max time.Duration
	for _, r := range reports {
		if r.Duration > max {
			max = r.Duration
		}
	}
	return max
}

// Summary aggregates one probe run
type Summary struct {
	Total       int
	Healthy     int
	Unhealthy   int
	MaxDuration time.Duration
}

// Summarize creates a summary of the reports
func Summarize(reports []Report) Summary {
	return Summary{
		Total:       len(reports),
		Healthy:     CountHealthy(reports),
		Unhealthy:   CountUnhealthy(reports),
		MaxDuration: MaxDuration(reports),
	}
}

// String returns a human-readable representation of the summary
func (s Summary) String() string {
	out := fmt.Sprintf("Total: %d, Healthy: %d, Unhealthy: %d", s.Total, s.Healthy, s.Unhealthy)
	if s.Total > 0 {
		out += fmt.Sprintf(", Slowest: %s", s.MaxDuration.Round(time.Millisecond))
	}
	return out
}
