package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/deskline/support-portal/internal/observability"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness, readiness and the metric counters.
type HealthHandler struct {
	serviceName string
	version     string
	deps        map[string]Pinger
	metrics     *observability.Metrics
	started     time.Time
}

// NewHealthHandler constructs handler. A nil dependency reports as not
// configured and keeps the service unready.
func NewHealthHandler(serviceName, version string, postgres, redis Pinger, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		deps:        map[string]Pinger{"postgres": postgres, "redis": redis},
		metrics:     metrics,
		started:     time.Now(),
	}
}

// Live reports that the process is up.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "ok",
		"service":        h.serviceName,
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

type dependencyStatus struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// Ready pings every dependency in parallel.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report = make(map[string]dependencyStatus, len(h.deps))
		ready  = true
	)
	for name, dep := range h.deps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := probe(ctx, dep)
			mu.Lock()
			defer mu.Unlock()
			report[name] = status
			if status.Status != "ok" {
				ready = false
			}
		}()
	}
	wg.Wait()

	if ready {
		return c.JSON(fiber.Map{"status": "ready", "dependencies": report})
	}
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": report,
		},
	})
}

func probe(ctx context.Context, dep Pinger) dependencyStatus {
	if dep == nil {
		return dependencyStatus{Status: "not configured"}
	}
	start := time.Now()
	err := dep.Ping(ctx)
	status := dependencyStatus{Status: "ok", LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		status.Status = "down"
		status.Error = err.Error()
	}
	return status
}

// Metrics exposes the in-process counters.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(h.metrics.Snapshot())
}
