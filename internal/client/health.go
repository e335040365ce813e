package client

import (
	"context"
	"log/slog"
	"sync"

	"promise-console/internal/models"
)

// HealthMonitor owns the last-known backend health status. Check failures
// are folded into an offline status rather than surfaced as errors, so the
// liveness indicator never blocks the rest of the UI.
type HealthMonitor struct {
	client *OTPClient

	mu          sync.Mutex
	last        models.HealthResponse
	checked     bool
	loggedAlive bool
}

func NewHealthMonitor(c *OTPClient) *HealthMonitor {
	return &HealthMonitor{client: c}
}

// Refresh performs a health check and records the outcome.
func (m *HealthMonitor) Refresh(ctx context.Context) models.HealthResponse {
	health, err := m.client.CheckHealth(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.checked = true

	if err != nil {
		apiErr := asAPIError(err)
		m.last = models.HealthResponse{
			Status:           models.HealthUnhealthy,
			Version:          "unknown",
			ERPNextConnected: false,
			Message:          apiErr.Message,
		}
		slog.Warn("Health check failed", "kind", string(apiErr.Kind), "message", apiErr.Message)
		return m.last
	}

	m.last = *health
	if health.Status == models.HealthHealthy && !m.loggedAlive {
		slog.Info("Backend connected and healthy", "baseURL", m.client.BaseURL(), "version", health.Version)
		m.loggedAlive = true
	}
	return m.last
}

// Online reports whether the backend responded to the most recent check.
// Before any check has run the backend is assumed online.
func (m *HealthMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.checked {
		return true
	}
	return m.last.Status != models.HealthUnhealthy
}

// Last returns the most recent health status and whether a check has run.
func (m *HealthMonitor) Last() (models.HealthResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.checked
}
