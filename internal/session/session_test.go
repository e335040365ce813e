package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promise-console/internal/audit"
	"promise-console/internal/classify"
	"promise-console/internal/client"
	"promise-console/internal/draft"
	"promise-console/internal/models"
)

func mockSession(t *testing.T) *Session {
	t.Helper()
	return New(Options{
		Client: client.NewOTPClient(client.Options{MockMode: true, MockLatency: time.Millisecond}),
	})
}

// TestBuildRequest_FiltersItems drops blank codes and non-positive quantities
func TestBuildRequest_FiltersItems(t *testing.T) {
	d := draft.NewDraft()
	d.Customer = "  Big Corp  "
	d.Items = []models.LineItem{
		{ItemCode: "  SKU001 ", Qty: 5, Warehouse: "Stores - East"},
		{ItemCode: "   ", Qty: 3},
		{ItemCode: "SKU002", Qty: 0},
		{ItemCode: "SKU003", Qty: 2},
	}
	d.DesiredDate = "2026-02-10"

	req, err := BuildRequest(d)

	require.NoError(t, err)
	assert.Equal(t, "Big Corp", req.Customer)
	require.Len(t, req.Items, 2)
	assert.Equal(t, "SKU001", req.Items[0].ItemCode)
	assert.Equal(t, "Stores - East", req.Items[0].Warehouse)
	assert.Equal(t, "SKU003", req.Items[1].ItemCode)
	assert.Equal(t, d.DefaultWarehouse, req.Items[1].Warehouse, "empty warehouse falls back to the draft default")
}

// TestBuildRequest_NoValidItems returns the sentinel error
func TestBuildRequest_NoValidItems(t *testing.T) {
	d := draft.NewDraft()
	d.Items = []models.LineItem{{ItemCode: "", Qty: 1}, {ItemCode: "SKU001", Qty: 0}}

	_, err := BuildRequest(d)

	assert.ErrorIs(t, err, ErrNoValidItems)
}

// TestBuildRequest_Rules carries the draft settings into the rule set
func TestBuildRequest_Rules(t *testing.T) {
	d := draft.NewDraft()
	d.Items = []models.LineItem{{ItemCode: "SKU001", Qty: 1}}
	d.NoWeekends = false
	d.CutoffTime = "12:30"
	d.CutoffTimezone = "Asia/Riyadh"
	d.BufferDays = 3
	d.DeliveryMode = models.ModeStrictFail
	d.OrderCreatedAt = "2026-01-15T09:00"

	req, err := BuildRequest(d)

	require.NoError(t, err)
	require.NotNil(t, req.Rules)
	assert.False(t, req.Rules.NoWeekends)
	assert.Equal(t, "12:30", req.Rules.CutoffTime)
	assert.Equal(t, "Asia/Riyadh", req.Rules.Timezone)
	assert.Equal(t, 3, req.Rules.LeadTimeBufferDays)
	assert.Equal(t, 1, req.Rules.ProcessingLeadTimeDays)
	assert.Equal(t, models.ModeStrictFail, req.Rules.DesiredDateMode)
	assert.Equal(t, "2026-01-15T09:00", req.Rules.OrderCreatedAt)
}

// TestEvaluate_StoresResult classifies and retains the latest outcome
func TestEvaluate_StoresResult(t *testing.T) {
	s := mockSession(t)
	d := draft.NewDraft()
	d.Items = []models.LineItem{{ItemCode: "SKU001", Qty: 1}}
	d.DeliveryMode = models.ModeStrictFail

	result, err := s.Evaluate(context.Background(), d)

	require.NoError(t, err)
	assert.False(t, result.Stale)
	assert.Equal(t, models.StatusCannotPromiseReliably, result.Response.Status)
	assert.Equal(t, classify.TierBlocked, result.Facts.Tier, "strict-fail fixture has no promise date")

	last := s.LastResult()
	require.NotNil(t, last)
	assert.Equal(t, result.Response.Status, last.Response.Status)
}

// TestEvaluate_AfterCutoffNote appends the cutoff blocker before classification
func TestEvaluate_AfterCutoffNote(t *testing.T) {
	s := mockSession(t)
	d := draft.NewDraft()
	d.Items = []models.LineItem{{ItemCode: "SKU001", Qty: 1}}
	d.OrderCreatedAt = "2026-01-15T15:30"
	d.CutoffTime = "14:00"

	result, err := s.Evaluate(context.Background(), d)

	require.NoError(t, err)
	assert.Contains(t, result.Response.Blockers, AfterCutoffNote)

	found := false
	for _, driver := range result.Facts.Drivers {
		if driver.Text == AfterCutoffNote {
			found = true
			assert.Equal(t, classify.DriverBusinessRules, driver.Category)
		}
	}
	assert.True(t, found, "the cutoff note flows into the drivers")
}

// TestEvaluate_InvalidItemsFailFast: no request leaves the session
func TestEvaluate_InvalidItemsFailFast(t *testing.T) {
	s := mockSession(t)
	d := draft.NewDraft()
	d.Items = nil

	_, err := s.Evaluate(context.Background(), d)

	assert.ErrorIs(t, err, ErrNoValidItems)
	assert.Nil(t, s.LastResult())
}

// TestEvaluate_AppendsAudit records the evaluation in the trail
func TestEvaluate_AppendsAudit(t *testing.T) {
	ctx := context.Background()
	store, err := audit.Open(ctx, filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer store.Close()

	s := New(Options{
		Client: client.NewOTPClient(client.Options{MockMode: true, MockLatency: time.Millisecond}),
		Audits: store,
	})
	d := draft.NewDraft()
	d.Customer = "Big Corp"
	d.Items = []models.LineItem{{ItemCode: "SKU001", Qty: 1}}

	result, err := s.Evaluate(ctx, d)
	require.NoError(t, err)
	require.NotEmpty(t, result.AuditID)

	rec, err := store.Get(ctx, result.AuditID)
	require.NoError(t, err)
	assert.Equal(t, "Big Corp", rec.Customer)
	assert.Equal(t, 1, rec.ItemCount)
	assert.Equal(t, result.Response.Confidence, rec.Confidence)
}

// TestEvaluate_StaleSupersededResult: a response arriving after a newer
// evaluation started is marked stale and not retained
func TestEvaluate_StaleSupersededResult(t *testing.T) {
	s := New(Options{
		Client: client.NewOTPClient(client.Options{MockMode: true, MockLatency: 150 * time.Millisecond}),
	})
	d := draft.NewDraft()
	d.Items = []models.LineItem{{ItemCode: "SKU001", Qty: 1}}
	d.DeliveryMode = models.ModeStrictFail

	type outcome struct {
		result Result
		err    error
	}
	firstDone := make(chan outcome, 1)
	go func() {
		result, err := s.Evaluate(context.Background(), d)
		firstDone <- outcome{result, err}
	}()

	// Start a second evaluation while the first is still in flight.
	time.Sleep(20 * time.Millisecond)
	second, err := s.Evaluate(context.Background(), d)
	require.NoError(t, err)
	assert.False(t, second.Stale, "latest evaluation is authoritative")

	first := <-firstDone
	require.NoError(t, first.err)
	assert.True(t, first.result.Stale, "superseded evaluation comes back stale")
	assert.Empty(t, first.result.AuditID, "stale results are not audited")

	last := s.LastResult()
	require.NotNil(t, last)
	assert.False(t, last.Stale)
}

// TestInvalidateResult clears the stored outcome
func TestInvalidateResult(t *testing.T) {
	s := mockSession(t)
	d := draft.NewDraft()
	d.Items = []models.LineItem{{ItemCode: "SKU001", Qty: 1}}

	_, err := s.Evaluate(context.Background(), d)
	require.NoError(t, err)
	require.NotNil(t, s.LastResult())

	s.InvalidateResult()
	assert.Nil(t, s.LastResult())
}

// TestClearOrder_InvalidatesResult wires the reconciler callback through
func TestClearOrder_InvalidatesResult(t *testing.T) {
	s := mockSession(t)
	d := draft.NewDraft()
	d.Items = []models.LineItem{{ItemCode: "SKU001", Qty: 1}}

	_, err := s.Evaluate(context.Background(), d)
	require.NoError(t, err)
	require.NotNil(t, s.LastResult())

	s.ClearOrder()
	assert.Nil(t, s.LastResult(), "clearing the order discards the result")
}

// TestSortOrders sorts by numeric suffix descending
func TestSortOrders(t *testing.T) {
	orders := []models.SalesOrderSummary{
		{Name: "SO-2026-00002"},
		{Name: "DRAFT"},
		{Name: "SO-2026-00010"},
		{Name: "SO-2025-00100"},
		{Name: "ARCHIVE"},
	}

	SortOrders(orders)

	assert.Equal(t, "SO-2025-00100", orders[0].Name)
	assert.Equal(t, "SO-2026-00010", orders[1].Name)
	assert.Equal(t, "SO-2026-00002", orders[2].Name)
	assert.Equal(t, "ARCHIVE", orders[3].Name, "names without a suffix sort last, alphabetically")
	assert.Equal(t, "DRAFT", orders[4].Name)
}

// TestSelectOrder_CachesDetails: the second selection skips the backend
func TestSelectOrder_CachesDetails(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"name":"SO-1","sales_order_id":"SO-1","customer_name":"Big Corp","delivery_date":"2026-02-01"}`))
	}))
	defer server.Close()

	s := New(Options{Client: client.NewOTPClient(client.Options{BaseURL: server.URL})})
	s.SwitchMode(draft.ModeFromOrder)
	ctx := context.Background()

	require.NoError(t, s.SelectOrder(ctx, "SO-1"))
	assert.Equal(t, "Big Corp", s.Reconciler().Draft(draft.ModeFromOrder).Customer)

	require.NoError(t, s.SelectOrder(ctx, "SO-1"))
	assert.Equal(t, 1, hits, "second lookup served from cache")
}

// TestSelectOrder_LookupErrorPropagates
func TestSelectOrder_LookupErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Sales order not found"}`))
	}))
	defer server.Close()

	s := New(Options{Client: client.NewOTPClient(client.Options{BaseURL: server.URL})})
	err := s.SelectOrder(context.Background(), "SO-404")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Sales order not found")
}

// TestSelectOrder_EmptyClears
func TestSelectOrder_EmptyClears(t *testing.T) {
	s := mockSession(t)
	require.NoError(t, s.SelectOrder(context.Background(), ""))
	assert.Empty(t, s.Reconciler().PendingOrderID())
}
