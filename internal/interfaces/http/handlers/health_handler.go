package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/types/common"
)

// Pinger is any dependency that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service and dependency health.
type HealthHandler struct {
	components map[string]Pinger
	version    string
}

// NewHealthHandler creates the health handler.  components maps a
// dependency name ("database", "cache") to its pinger; nil pingers are
// skipped.
func NewHealthHandler(version string, components map[string]Pinger) *HealthHandler {
	filtered := make(map[string]Pinger, len(components))
	for name, p := range components {
		if p != nil {
			filtered[name] = p
		}
	}
	return &HealthHandler{components: filtered, version: version}
}

// Live handles GET /healthz — process liveness only.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": common.HealthStatusOK, "version": h.version})
}

// Ready handles GET /readyz — pings every registered dependency.  A single
// failing dependency degrades the report and flips the status code to 503.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	overall := common.HealthStatusOK
	checks := make([]common.ComponentHealth, 0, len(h.components))
	for name, pinger := range h.components {
		started := time.Now()
		check := common.ComponentHealth{Name: name, Status: common.HealthStatusOK}
		if err := pinger.Ping(ctx); err != nil {
			check.Status = common.HealthStatusDown
			check.Message = err.Error()
			overall = common.HealthStatusDegraded
		}
		check.Latency = time.Since(started).String()
		checks = append(checks, check)
	}

	status := http.StatusOK
	if overall != common.HealthStatusOK {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":     overall,
		"version":    h.version,
		"components": checks,
	})
}
