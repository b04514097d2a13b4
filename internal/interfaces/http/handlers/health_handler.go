package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// readinessTimeout bounds each dependency probe.
const readinessTimeout = 2 * time.Second

// ReadinessCheck probes one dependency; a non-nil error marks the service
// not ready.
type ReadinessCheck func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	version string
	checks  map[string]ReadinessCheck
}

func NewHealthHandler(version string, checks map[string]ReadinessCheck) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

// Healthz is the liveness probe: the process is up.
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

// Readyz probes every registered dependency and reports per-dependency
// status.  Any failure answers 503.
func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			deps[name] = "ok"
		}
	}

	body := gin.H{"status": "ready", "dependencies": deps}
	if status != http.StatusOK {
		body["status"] = "not ready"
	}
	c.JSON(status, body)
}
