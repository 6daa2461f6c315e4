// Package health checks the dependencies the client needs: the GraphQL
// endpoint, the credential storage and the stored session.
//
// Checkers are registered with a Manager, which runs them in parallel
// with a per-check timeout:
//
//	manager := health.NewManager()
//	manager.AddChecker(health.NewAPIChecker(client))
//	manager.AddChecker(health.NewDirChecker("storage", dir))
//
//	for _, report := range manager.Check(ctx) {
//	    logger.Info("health check", "name", report.Name, "status", report.Status)
//	}
package health

import (
	"context"
	"time"
)

// Checker verifies one dependency.
type Checker interface {
	// Name is lowercase with hyphens, e.g. "api" or "credential-storage".
	Name() string

	// Check must respect the context deadline.
	Check(ctx context.Context) *Result
}

// Status represents the health check status.
type Status string

const (
	// StatusHealthy indicates the checked component is fully operational.
	StatusHealthy Status = "healthy"

	// StatusDegraded means the client works with reduced functionality,
	// e.g. nobody is signed in.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy indicates the component is not working.
	StatusUnhealthy Status = "unhealthy"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Result is the outcome of one check.
type Result struct {
	Status  Status            `json:"status" yaml:"status"`
	Message string            `json:"message" yaml:"message"`
	Details map[string]string `json:"details,omitempty" yaml:"details,omitempty"`
	Latency time.Duration     `json:"latency" yaml:"latency"`
}

// NewResult creates a new health check result with the given status and message.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]string),
	}
}

// WithDetail adds a detail to the result and returns the result for chaining.
func (r *Result) WithDetail(key, value string) *Result {
	r.Details[key] = value
	return r
}

// WithLatency sets the latency and returns the result for chaining.
func (r *Result) WithLatency(latency time.Duration) *Result {
	r.Latency = latency
	return r
}

// Healthy creates a healthy result with the given message.
func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

// Degraded creates a degraded result with the given message.
func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

// Unhealthy creates an unhealthy result with the given message.
func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
