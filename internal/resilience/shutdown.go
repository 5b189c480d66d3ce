package resilience

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"anamnesis/internal/logging"
)

// Priority orders shutdown callbacks; higher runs first.
type Priority int

const (
	PriorityCritical Priority = 100
	PriorityHigh     Priority = 75
	PriorityNormal   Priority = 50
	PriorityLow      Priority = 25
	PriorityLast     Priority = 0
)

// ShutdownCallback is a registered cleanup hook.
type ShutdownCallback struct {
	Name     string
	Callback func(ctx context.Context) error
	Priority Priority
	Timeout  time.Duration
}

// ShutdownResult records the outcome of one callback.
type ShutdownResult struct {
	Name     string
	Success  bool
	Err      error
	Duration time.Duration
	TimedOut bool
}

// ShutdownReport aggregates every callback's result.
type ShutdownReport struct {
	Results []ShutdownResult
}

// AllSucceeded reports whether every callback completed without error.
func (r ShutdownReport) AllSucceeded() bool {
	for _, res := range r.Results {
		if !res.Success {
			return false
		}
	}
	return true
}

// ShutdownManager is a process-global, priority-ordered registry of
// cleanup callbacks. Its singleton-ness is isolated to this module (spec §9).
type ShutdownManager struct {
	mu        sync.Mutex
	callbacks []ShutdownCallback
	done      bool
	report    ShutdownReport
}

var (
	globalShutdown     *ShutdownManager
	globalShutdownOnce sync.Once
)

// GlobalShutdownManager returns the process-wide singleton instance.
func GlobalShutdownManager() *ShutdownManager {
	globalShutdownOnce.Do(func() {
		globalShutdown = &ShutdownManager{}
	})
	return globalShutdown
}

// Register adds a callback to the registry. Registration after shutdown has
// already run is a no-op.
func (m *ShutdownManager) Register(cb ShutdownCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return
	}
	if cb.Timeout <= 0 {
		cb.Timeout = 10 * time.Second
	}
	m.callbacks = append(m.callbacks, cb)
}

// Shutdown runs every registered callback in descending priority order,
// each bounded by its own timeout. Subsequent calls are no-ops that return
// the report from the first run.
func (m *ShutdownManager) Shutdown(ctx context.Context) ShutdownReport {
	m.mu.Lock()
	if m.done {
		report := m.report
		m.mu.Unlock()
		return report
	}
	m.done = true
	callbacks := make([]ShutdownCallback, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	sort.SliceStable(callbacks, func(i, j int) bool {
		return callbacks[i].Priority > callbacks[j].Priority
	})

	report := ShutdownReport{}
	for _, cb := range callbacks {
		start := time.Now()
		done := make(chan error, 1)
		cbCtx, cancel := context.WithTimeout(ctx, cb.Timeout)

		go func(cb ShutdownCallback) {
			done <- cb.Callback(cbCtx)
		}(cb)

		var res ShutdownResult
		res.Name = cb.Name
		select {
		case err := <-done:
			res.Duration = time.Since(start)
			if err != nil {
				res.Err = err
				logging.Get(logging.CategoryResilience).Warn("shutdown callback %s failed: %v", cb.Name, err)
			} else {
				res.Success = true
			}
		case <-cbCtx.Done():
			res.Duration = time.Since(start)
			res.TimedOut = true
			res.Err = fmt.Errorf("shutdown callback %s timed out after %s", cb.Name, cb.Timeout)
			logging.Get(logging.CategoryResilience).Warn("%v", res.Err)
		}
		cancel()
		report.Results = append(report.Results, res)
	}

	m.mu.Lock()
	m.report = report
	m.mu.Unlock()
	return report
}
