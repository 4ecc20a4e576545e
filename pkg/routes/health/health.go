package health

import (
	"context"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
)

// Check is one named dependency probe. Optional checks degrade rather than fail the service.
type Check struct {
	Name     string
	Optional bool
	Ping     func(ctx context.Context) error
}

// Checker handles health check endpoints
type Checker struct {
	checks    []Check
	version   string
	startTime time.Time
	ready     atomic.Bool
}

// NewChecker creates a new health checker
func NewChecker(version string, checks ...Check) *Checker {
	return &Checker{
		checks:    checks,
		version:   version,
		startTime: time.Now(),
	}
}

// SetReady sets the readiness state
func (c *Checker) SetReady(ready bool) {
	c.ready.Store(ready)
}

// RegisterRoutes registers health check endpoints
func (c *Checker) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/health", c.Health)
	e.GET("/api/v1/health/live", c.Live)
	e.GET("/api/v1/health/ready", c.Ready)
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status     string                  `json:"status"`
	Version    string                  `json:"version"`
	Uptime     string                  `json:"uptime"`
	Checks     map[string]*CheckResult `json:"checks,omitempty"`
	ReportedAt time.Time               `json:"reported_at"`
}

// CheckResult represents an individual check result
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Health returns the overall health status
func (c *Checker) Health(ctx echo.Context) error {
	status := c.run(ctx.Request().Context())

	httpStatus := http.StatusOK
	if status.Status == StatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	return ctx.JSON(httpStatus, status)
}

// Live reports that the process is up.
func (c *Checker) Live(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &HealthStatus{
		Status:     StatusHealthy,
		Version:    c.version,
		Uptime:     time.Since(c.startTime).Round(time.Second).String(),
		ReportedAt: time.Now(),
	})
}

// Ready reports whether startup finished and required dependencies answer.
func (c *Checker) Ready(ctx echo.Context) error {
	if !c.ready.Load() {
		return ctx.JSON(http.StatusServiceUnavailable, &HealthStatus{
			Status:  StatusUnhealthy,
			Version: c.version,
			Uptime:  time.Since(c.startTime).Round(time.Second).String(),
			Checks: map[string]*CheckResult{
				"startup": {Status: StatusUnhealthy, Message: "service is still starting up"},
			},
			ReportedAt: time.Now(),
		})
	}

	return c.Health(ctx)
}

func (c *Checker) run(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:     StatusHealthy,
		Version:    c.version,
		Uptime:     time.Since(c.startTime).Round(time.Second).String(),
		Checks:     make(map[string]*CheckResult),
		ReportedAt: time.Now(),
	}

	checks := append([]Check{}, c.checks...)
	sort.SliceStable(checks, func(i, j int) bool { return checks[i].Name < checks[j].Name })

	for _, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		start := time.Now()
		err := check.Ping(checkCtx)
		latency := time.Since(start)
		cancel()

		if err == nil {
			status.Checks[check.Name] = &CheckResult{Status: StatusHealthy, Latency: latency.String()}
			continue
		}

		result := &CheckResult{Status: StatusUnhealthy, Message: err.Error(), Latency: latency.String()}
		if check.Optional {
			result.Status = StatusDegraded
			if status.Status == StatusHealthy {
				status.Status = StatusDegraded
			}
		} else {
			status.Status = StatusUnhealthy
		}
		status.Checks[check.Name] = result
	}

	return status
}
