// internal/api/handlers/health_handler.go
package handlers

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is any backend that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	service    string
	version    string
	components map[string]Pinger
	timeout    time.Duration
}

func NewHealthHandler(service, version string, components map[string]Pinger) *HealthHandler {
	if components == nil {
		components = map[string]Pinger{}
	}
	return &HealthHandler{
		service:    service,
		version:    version,
		components: components,
		timeout:    3 * time.Second,
	}
}

// Check pings every registered component. Any failure turns the answer into
// 503 "degraded" so load balancers stop routing turns here.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.components))
	for name := range h.components {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "healthy"
	components := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.components[name].Ping(ctx); err != nil {
			components[name] = "down: " + err.Error()
			status = "degraded"
			continue
		}
		components[name] = "up"
	}

	code := fiber.StatusOK
	if status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":     status,
		"service":    h.service,
		"version":    h.version,
		"components": components,
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}
