package http

import (
	"context"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
)

// Initializable is implemented by every service that needs a key before use.
type Initializable interface {
	Initialized() bool
}

// HealthCheck pings a backing store.
type HealthCheck func(ctx context.Context) error

const readinessTimeout = 2 * time.Second

// serviceStatus reports each service as "initialized" or "uninitialized" and whether any
// of them is uninitialized.
func serviceStatus(services map[string]Initializable) (map[string]string, bool) {
	status := make(map[string]string, len(services))
	degraded := false
	for _, name := range slices.Sorted(maps.Keys(services)) {
		if services[name].Initialized() {
			status[name] = "initialized"
			continue
		}
		status[name] = "uninitialized"
		degraded = true
	}
	return status, degraded
}

// healthHandler reports liveness. A degraded process is still alive; encryption endpoints
// answer 503 until their key is configured.
// GET /health
func (s *Server) healthHandler(c *gin.Context) {
	writeHealth(c, s.services)
}

func writeHealth(c *gin.Context, services map[string]Initializable) {
	status, degraded := serviceStatus(services)

	overall := "healthy"
	if degraded {
		overall = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   overall,
		"degraded": degraded,
		"services": status,
	})
}

// readinessHandler pings every backing store.
// GET /ready
// Returns 503 if any store is unreachable.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	components := make(map[string]string, len(s.checks))
	ready := true
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn("readiness check failed", "component", name, "error", err)
			components[name] = "error"
			ready = false
			continue
		}
		components[name] = "ok"
	}

	services, degraded := serviceStatus(s.services)

	code, status := http.StatusOK, "ready"
	if !ready {
		code, status = http.StatusServiceUnavailable, "not_ready"
	}

	c.JSON(code, gin.H{
		"status":     status,
		"degraded":   degraded,
		"components": components,
		"services":   services,
	})
}
