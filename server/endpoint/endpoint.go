// Package endpoint serves the operational routes every speakerkit binary
// exposes next to its API: liveness, readiness, build info and runtime
// figures.
package endpoint

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/speakerkit/component"
	"github.com/kbukum/speakerkit/version"
)

// HealthChecker returns the health of every registered component.
type HealthChecker func(ctx context.Context) []component.Health

// System holds the handlers for one service.
type System struct {
	service string
	checker HealthChecker
	started time.Time
}

// New creates the handlers. checker may be nil, in which case the service
// is always ready.
func New(service string, checker HealthChecker) *System {
	return &System{service: service, checker: checker, started: time.Now()}
}

func (s *System) uptime() string {
	return time.Since(s.started).Round(time.Second).String()
}

// Liveness answers 200 while the process can serve HTTP at all.
func (s *System) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "alive",
		"service": s.service,
		"uptime":  s.uptime(),
	})
}

// Readiness answers 503 while any component is unhealthy. A degraded
// service keeps taking traffic: identification still works when, say, only
// the transcription producer is down.
func (s *System) Readiness(c *gin.Context) {
	var components []component.Health
	if s.checker != nil {
		components = s.checker(c.Request.Context())
	}
	overall := component.Overall(components)
	status, code := "ready", http.StatusOK
	if overall == component.StatusUnhealthy {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":     status,
		"overall":    overall,
		"service":    s.service,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

// Info reports the build baked into the binary.
func (s *System) Info(c *gin.Context) {
	v := version.GetVersionInfo()
	c.JSON(http.StatusOK, gin.H{
		"service":    s.service,
		"version":    v.Version,
		"git_commit": v.GitCommit,
		"build_time": v.BuildTime,
		"go_version": v.GoVersion,
		"uptime":     s.uptime(),
	})
}

// Runtime reports goroutine and heap figures. Request metrics go out over
// OTLP instead.
func (s *System) Runtime(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	const mb = 1 << 20
	c.JSON(http.StatusOK, gin.H{
		"goroutines":    runtime.NumGoroutine(),
		"heap_alloc_mb": m.HeapAlloc / mb,
		"sys_mb":        m.Sys / mb,
		"gc_runs":       m.NumGC,
	})
}
