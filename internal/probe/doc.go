// Package probe runs health probes against many service connections
// concurrently.
//
// The package implements a worker pool with bounded concurrency. Probes
// are stateless one-shot units of work: each probe is independent, holds
// no shared mutable state, and converts every backend failure (including
// a timeout) into an unhealthy report instead of an error, so a run over
// N connections always yields N reports.
//
// # Basic Usage
//
//	pool := probe.NewPool(5, logger)
//	reports := pool.Run(ctx, conns)
//
// # Progress Reporting
//
// Track probe progress with a callback:
//
//	reports := pool.RunWithProgress(ctx, conns, func(completed, total int) {
//	    fmt.Printf("Probed: %d/%d\n", completed, total)
//	})
//
// # Aggregation
//
// Filter and summarize reports:
//
//	healthy := probe.FilterHealthy(reports)
//	summary := probe.Summarize(reports)
//
// # Concurrency Guarantees
//
// The pool guarantees bounded concurrency (at most N workers), no
// goroutine leaks, and a report for every connection even when the
// context is cancelled mid-run. No ordering is guaranteed between
// concurrent probes; reports come back in input order.
package probe
