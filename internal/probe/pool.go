package probe

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aryankumar/dockyard/internal/connection"
)

// Report is the outcome of probing one connection.
type Report struct {
	// ID is the probed connection's identifier
	ID string `json:"id" yaml:"id"`

	// Name is the probed connection's unique name
	Name string `json:"name" yaml:"name"`

	// Kind is the connection's backend family
	Kind connection.Kind `json:"kind" yaml:"kind"`

	// State is the health result of this probe
	State connection.HealthState `json:"state" yaml:"state"`

	// Duration is how long the probe took
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Pool probes connections with bounded concurrency. A Pool holds no
// per-run state and may be reused.
type Pool struct {
	workers int
	logger  *slog.Logger
}

// NewPool creates a probe pool with the given worker count.
// workers must be > 0, otherwise it defaults to 1.
func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{workers: workers, logger: logger}
}

// Workers returns the pool's concurrency bound.
func (p *Pool) Workers() int { return p.workers }

// Run probes every connection and returns one report per connection, in
// input order.
func (p *Pool) Run(ctx context.Context, conns []connection.Connection) []Report {
	return p.RunWithProgress(ctx, conns, nil)
}

// RunWithProgress probes every connection, invoking progressFn after each
// probe completes with (completed, total) counts. A cancelled context
// stops issuing new probes; connections never probed report unhealthy,
// so the caller always receives len(conns) reports.
func (p *Pool) RunWithProgress(ctx context.Context, conns []connection.Connection, progressFn func(completed, total int)) []Report {
	total := len(conns)
	if total == 0 {
		return []Report{}
	}

	p.logger.Debug("starting probes", "workers", p.workers, "connections", total)
	start := time.Now()

	type indexed struct {
		conn  connection.Connection
		index int
	}

	taskCh := make(chan indexed, total)
	reports := make([]Report, total)

	var completed atomic.Int32

	workerCount := p.workers
	if workerCount > total {
		workerCount = total
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				select {
				case <-ctx.Done():
					// Drain remaining tasks as unprobed.
					reports[task.index] = skipped(task.conn)
				default:
					reports[task.index] = p.probe(ctx, task.conn)
				}

				done := completed.Add(1)
				if progressFn != nil {
					progressFn(int(done), total)
				}
			}
		}()
	}

	for i, conn := range conns {
		taskCh <- indexed{conn: conn, index: i}
	}
	close(taskCh)
	wg.Wait()

	p.logger.Debug("probes completed",
		"total", total,
		"healthy", CountHealthy(reports),
		"duration", time.Since(start))

	return reports
}

// probe runs one health probe and records its outcome. The probe itself
// is total; a failure shows up as an unhealthy state, never an error.
func (p *Pool) probe(ctx context.Context, conn connection.Connection) Report {
	meta := conn.Meta()
	start := time.Now()

	state := conn.State(ctx)

	report := Report{
		ID:       meta.ID,
		Name:     meta.Name,
		Kind:     meta.Kind,
		State:    state,
		Duration: time.Since(start),
	}

	p.logger.Debug("probed connection",
		"connection", meta.Name,
		"kind", meta.Kind,
		"healthy", state.Healthy,
		"duration", report.Duration)

	return report
}

// skipped reports a connection that was never probed because the run was
// cancelled. Unprobed means unknown health, reported as unhealthy.
func skipped(conn connection.Connection) Report {
	meta := conn.Meta()
	return Report{ID: meta.ID, Name: meta.Name, Kind: meta.Kind}
}
