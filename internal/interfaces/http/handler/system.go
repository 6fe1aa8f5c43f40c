package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/erp/fulfillment/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// HealthChecker is a dependency /health probes
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves health and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	checks    map[string]HealthChecker
}

// NewSystemHandler creates a new SystemHandler. checks maps a component
// name ("database", "cache") to its probe.
func NewSystemHandler(name, version string, checks map[string]HealthChecker) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		checks:    checks,
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status     string            `json:"status"`
	Name       string            `json:"name"`
	Version    string            `json:"version"`
	GoVersion  string            `json:"go_version"`
	Uptime     string            `json:"uptime"`
	Components map[string]string `json:"components,omitempty"`
}

// Health probes every dependency; any failure answers 503
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:     "ok",
		Name:       h.name,
		Version:    h.version,
		GoVersion:  runtime.Version(),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Components: make(map[string]string, len(h.checks)),
	}
	status := http.StatusOK
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			resp.Components[name] = "down"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = "up"
	}
	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}

// NoRoute answers unknown paths with the standard envelope
func (h *SystemHandler) NoRoute(c *gin.Context) {
	h.Error(c, dto.ErrCodeRouteNotFound, "Route not found")
}

// NoMethod answers a known path called with the wrong method
func (h *SystemHandler) NoMethod(c *gin.Context) {
	h.Error(c, dto.ErrCodeMethodNotAllowed, "Method not allowed")
}
