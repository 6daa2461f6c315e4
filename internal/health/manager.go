package health

import (
	"context"
	"sync"
	"time"
)

// Report is the result of one named check
type Report struct {
	Name   string `json:"name" yaml:"name"`
	Result `yaml:",inline"`
}

// Manager coordinates health checks and aggregates results.
// It runs checks in parallel with timeouts and collects all results.
type Manager struct {
	checkers []Checker
	timeout  time.Duration
	mu       sync.RWMutex
}

// NewManager creates a new health check manager with default 5-second timeout.
func NewManager() *Manager {
	return &Manager{
		checkers: make([]Checker, 0),
		timeout:  5 * time.Second,
	}
}

// WithTimeout sets a custom timeout for health checks.
func (m *Manager) WithTimeout(timeout time.Duration) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return m
}

// AddChecker registers a new health checker.
func (m *Manager) AddChecker(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, checker)
}

// Check runs all registered checks in parallel, each with the manager's
// timeout. Reports come back in registration order.
func (m *Manager) Check(ctx context.Context) []Report {
	m.mu.RLock()
	checkers := make([]Checker, len(m.checkers))
	copy(checkers, m.checkers)
	timeout := m.timeout
	m.mu.RUnlock()

	reports := make([]Report, len(checkers))
	var wg sync.WaitGroup

	for i, checker := range checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			result := c.Check(checkCtx)
			if result == nil {
				result = Unhealthy("check returned no result")
			}
			if result.Latency == 0 {
				result.Latency = time.Since(start)
			}

			reports[i] = Report{Name: c.Name(), Result: *result}
		}(i, checker)
	}

	wg.Wait()
	return reports
}

// OverallStatus determines the overall system health based on all check results.
// Returns:
//   - StatusHealthy if all checks are healthy
//   - StatusDegraded if any check is degraded
//   - StatusUnhealthy if any check is unhealthy
func OverallStatus(reports []Report) Status {
	hasDegraded := false
	for _, report := range reports {
		if report.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
		if report.Status == StatusDegraded {
			hasDegraded = true
		}
	}

	if hasDegraded {
		return StatusDegraded
	}

	return StatusHealthy
}

// CheckNames returns the names of all registered checkers.
func (m *Manager) CheckNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.checkers))
	for i, checker := range m.checkers {
		names[i] = checker.Name()
	}
	return names
}
