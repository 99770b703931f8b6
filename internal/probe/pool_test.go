package probe

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aryankumar/dockyard/internal/connection"
)

// stubConnection is a connection whose probe behavior the test controls.
type stubConnection struct {
	connection.Metadata
	state func(ctx context.Context) connection.HealthState
}

func (s *stubConnection) Validate() error { return nil }

func (s *stubConnection) State(ctx context.Context) connection.HealthState {
	if s.state == nil {
		return connection.HealthState{}
	}
	return s.state(ctx)
}

func healthyStub(name, version string) *stubConnection {
	return &stubConnection{
		Metadata: connection.Metadata{ID: "id-" + name, Name: name, Kind: "stub"},
		state: func(ctx context.Context) connection.HealthState {
			return connection.HealthState{Healthy: true, Version: version}
		},
	}
}

func unhealthyStub(name string) *stubConnection {
	return &stubConnection{
		Metadata: connection.Metadata{ID: "id-" + name, Name: name, Kind: "stub"},
	}
}

func TestNewPool(t *testing.T) {
	tests := []struct {
		name            string
		workers         int
		expectedWorkers int
	}{
		{
			name:            "positive workers",
			workers:         5,
			expectedWorkers: 5,
		},
		{
			name:            "zero workers defaults to 1",
			workers:         0,
			expectedWorkers: 1,
		},
		{
			name:            "negative workers defaults to 1",
			workers:         -5,
			expectedWorkers: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewPool(tt.workers, nil)
			if pool == nil {
				t.Fatal("NewPool returned nil")
			}
			if pool.Workers() != tt.expectedWorkers {
				t.Errorf("expected %d workers, got %d", tt.expectedWorkers, pool.Workers())
			}
		})
	}
}

func TestPool_Run(t *testing.T) {
	tests := []struct {
		name            string
		workers         int
		conns           []connection.Connection
		expectedHealthy int
	}{
		{
			name:            "single healthy connection",
			workers:         1,
			conns:           []connection.Connection{healthyStub("engine", "24.0.7")},
			expectedHealthy: 1,
		},
		{
			name:    "more connections than workers",
			workers: 2,
			conns: []connection.Connection{
				healthyStub("a", "1"),
				healthyStub("b", "2"),
				healthyStub("c", "3"),
				healthyStub("d", "4"),
			},
			expectedHealthy: 4,
		},
		{
			name:    "mixed health",
			workers: 3,
			conns: []connection.Connection{
				healthyStub("a", "1"),
				unhealthyStub("b"),
				healthyStub("c", "3"),
			},
			expectedHealthy: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewPool(tt.workers, nil)
			reports := pool.Run(context.Background(), tt.conns)

			if len(reports) != len(tt.conns) {
				t.Fatalf("expected %d reports, got %d", len(tt.conns), len(reports))
			}
			if healthy := CountHealthy(reports); healthy != tt.expectedHealthy {
				t.Errorf("expected %d healthy, got %d", tt.expectedHealthy, healthy)
			}

			// Reports come back in input order regardless of completion order.
			for i, report := range reports {
				if report.Name != tt.conns[i].Meta().Name {
					t.Errorf("report %d: expected %q, got %q", i, tt.conns[i].Meta().Name, report.Name)
				}
			}
		})
	}
}

func TestPool_Run_Empty(t *testing.T) {
	pool := NewPool(5, nil)

	reports := pool.Run(context.Background(), nil)
	if len(reports) != 0 {
		t.Errorf("expected 0 reports, got %d", len(reports))
	}
}

func TestPool_Run_ReportFields(t *testing.T) {
	pool := NewPool(1, nil)

	conn := healthyStub("engine", "24.0.7")
	conn.state = func(ctx context.Context) connection.HealthState {
		time.Sleep(5 * time.Millisecond)
		return connection.HealthState{Healthy: true, Version: "24.0.7"}
	}

	reports := pool.Run(context.Background(), []connection.Connection{conn})
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}

	report := reports[0]
	if report.ID != "id-engine" {
		t.Errorf("expected id id-engine, got %q", report.ID)
	}
	if report.Kind != "stub" {
		t.Errorf("expected kind stub, got %q", report.Kind)
	}
	if report.State.Version != "24.0.7" {
		t.Errorf("expected version 24.0.7, got %q", report.State.Version)
	}
	if report.Duration == 0 {
		t.Error("expected nonzero probe duration")
	}
}

func TestPool_RunWithProgress(t *testing.T) {
	pool := NewPool(2, nil)

	count := 5
	conns := make([]connection.Connection, 0, count)
	for i := 0; i < count; i++ {
		conn := healthyStub(fmt.Sprintf("conn%d", i+1), "1")
		conn.state = func(ctx context.Context) connection.HealthState {
			time.Sleep(10 * time.Millisecond)
			return connection.HealthState{Healthy: true, Version: "1"}
		}
		conns = append(conns, conn)
	}

	var calls atomic.Int32
	var mu sync.Mutex
	updates := make([]struct{ completed, total int }, 0, count)

	reports := pool.RunWithProgress(context.Background(), conns, func(completed, total int) {
		calls.Add(1)
		mu.Lock()
		updates = append(updates, struct{ completed, total int }{completed, total})
		mu.Unlock()
	})

	if len(reports) != count {
		t.Errorf("expected %d reports, got %d", count, len(reports))
	}
	if got := calls.Load(); got != int32(count) {
		t.Errorf("expected %d progress calls, got %d", count, got)
	}

	mu.Lock()
	defer mu.Unlock()
	reachedEnd := false
	for i, update := range updates {
		if update.total != count {
			t.Errorf("update %d: expected total %d, got %d", i, count, update.total)
		}
		if update.completed < 1 || update.completed > count {
			t.Errorf("update %d: completed %d out of range [1, %d]", i, update.completed, count)
		}
		if update.completed == count {
			reachedEnd = true
		}
	}
	if !reachedEnd {
		t.Error("progress never reported full completion")
	}
}

func TestPool_Run_Cancellation(t *testing.T) {
	pool := NewPool(1, nil)

	ctx, cancel := context.WithCancel(context.Background())

	count := 5
	conns := make([]connection.Connection, 0, count)
	for i := 0; i < count; i++ {
		conn := healthyStub(fmt.Sprintf("conn%d", i+1), "1")
		conn.state = func(ctx context.Context) connection.HealthState {
			select {
			case <-time.After(50 * time.Millisecond):
				return connection.HealthState{Healthy: true, Version: "1"}
			case <-ctx.Done():
				return connection.HealthState{}
			}
		}
		conns = append(conns, conn)
	}

	go func() {
		time.Sleep(75 * time.Millisecond)
		cancel()
	}()

	reports := pool.Run(ctx, conns)

	// Cancellation must not lose reports; unprobed connections come back
	// unhealthy.
	if len(reports) != count {
		t.Fatalf("expected %d reports, got %d", count, len(reports))
	}
	if healthy := CountHealthy(reports); healthy >= count {
		t.Errorf("expected some probes to be skipped, got %d healthy", healthy)
	}
	for i, report := range reports {
		if report.Name == "" {
			t.Errorf("report %d lost its metadata", i)
		}
	}
}

func TestPool_Run_Concurrent(t *testing.T) {
	pool := NewPool(5, nil)

	count := 10
	conns := make([]connection.Connection, 0, count)
	for i := 0; i < count; i++ {
		conn := healthyStub(fmt.Sprintf("conn%d", i+1), "1")
		conn.state = func(ctx context.Context) connection.HealthState {
			time.Sleep(50 * time.Millisecond)
			return connection.HealthState{Healthy: true, Version: "1"}
		}
		conns = append(conns, conn)
	}

	start := time.Now()
	reports := pool.Run(context.Background(), conns)
	elapsed := time.Since(start)

	if len(reports) != count {
		t.Fatalf("expected %d reports, got %d", count, len(reports))
	}

	// 10 probes of 50ms on 5 workers should take around 100ms, not 500ms.
	if elapsed > 300*time.Millisecond {
		t.Errorf("probes took %v, expected concurrent execution around 100ms", elapsed)
	}
}
