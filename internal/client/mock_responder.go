package client

import (
	"context"
	"log/slog"
	"time"

	"promise-console/internal/apierr"
	"promise-console/internal/mockdata"
	"promise-console/internal/models"
)

const (
	mockEvaluateLatency = 800 * time.Millisecond
	mockLookupLatency   = 300 * time.Millisecond
)

// mockResponder substitutes canned responses with injected latency instead
// of performing network I/O. It honors the same contract as the real
// transport, including the never-throws rule for evaluation, so callers
// are mode-agnostic.
type mockResponder struct {
	evaluateLatency time.Duration
	lookupLatency   time.Duration
}

func newMockResponder(latency time.Duration) *mockResponder {
	m := &mockResponder{
		evaluateLatency: mockEvaluateLatency,
		lookupLatency:   mockLookupLatency,
	}
	if latency > 0 {
		m.evaluateLatency = latency
		m.lookupLatency = latency
	}
	return m
}

// sleep waits for the injected latency or the caller's cancellation,
// whichever comes first.
func (m *mockResponder) sleep(ctx context.Context, latency time.Duration) error {
	timer := time.NewTimer(latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockResponder) health(ctx context.Context) (*models.HealthResponse, error) {
	health := mockdata.HealthCheck()
	return &health, nil
}

func (m *mockResponder) evaluate(ctx context.Context, req models.PromiseRequest) models.PromiseResponse {
	slog.Debug("Mock: evaluatePromise", "items", len(req.Items))
	if err := m.sleep(ctx, m.evaluateLatency); err != nil {
		return SynthesizeFailureResponse(apierr.FromTransport(err))
	}
	mode := models.DeliveryMode("")
	if req.Rules != nil {
		mode = req.Rules.DesiredDateMode
	}
	return mockdata.RandomPromiseResponse(mode)
}

func (m *mockResponder) listSalesOrders(ctx context.Context) ([]models.SalesOrderSummary, error) {
	slog.Debug("Mock: listSalesOrders")
	if err := m.sleep(ctx, m.lookupLatency); err != nil {
		return nil, apierr.FromTransport(err)
	}
	return mockdata.SalesOrders(), nil
}

func (m *mockResponder) salesOrderDetails(ctx context.Context, id string) (*models.SalesOrderDetails, error) {
	slog.Debug("Mock: getSalesOrderDetails", "id", id)
	if err := m.sleep(ctx, m.lookupLatency); err != nil {
		return nil, apierr.FromTransport(err)
	}
	details := mockdata.SalesOrderDetails(id)
	return &details, nil
}
