package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promise-console/internal/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewRouter(NewHandler("0.1.0-test")))
	t.Cleanup(server.Close)
	return server
}

// TestHealth reports the configured version
func TestHealth(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var health models.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, models.HealthHealthy, health.Status)
	assert.Equal(t, "0.1.0-test", health.Version)
	assert.False(t, health.ERPNextConnected)
}

// TestEvaluatePromise_Success returns one of the fixture outcomes
func TestEvaluatePromise_Success(t *testing.T) {
	server := newTestServer(t)

	body, _ := json.Marshal(models.PromiseRequest{
		Customer: "Big Corp",
		Items:    []models.LineItem{{ItemCode: "SKU001", Qty: 5}},
	})
	resp, err := http.Post(server.URL+"/otp/promise", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var promise models.PromiseResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&promise))
	assert.Contains(t, []models.PromiseStatus{
		models.StatusOK, models.StatusCannotFulfill, models.StatusCannotPromiseReliably,
	}, promise.Status)
}

// TestEvaluatePromise_StrictFail always returns the strict-fail fixture
func TestEvaluatePromise_StrictFail(t *testing.T) {
	server := newTestServer(t)

	body, _ := json.Marshal(models.PromiseRequest{
		Items: []models.LineItem{{ItemCode: "SKU001", Qty: 5}},
		Rules: &models.RuleSet{DesiredDateMode: models.ModeStrictFail},
	})
	resp, err := http.Post(server.URL+"/otp/promise", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var promise models.PromiseResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&promise))
	assert.Equal(t, models.StatusCannotPromiseReliably, promise.Status)
	assert.Nil(t, promise.PromiseDate)
}

// TestEvaluatePromise_ValidationError produces the structured 422 body
func TestEvaluatePromise_ValidationError(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/otp/promise", "application/json",
		bytes.NewReader([]byte(`{"customer":"Big Corp","items":[]}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Detail []struct {
			Loc []any  `json:"loc"`
			Msg string `json:"msg"`
		} `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Detail, 1)
	assert.Equal(t, []any{"body", "items"}, body.Detail[0].Loc)
	assert.Equal(t, "At least one item is required", body.Detail[0].Msg)
}

// TestEvaluatePromise_ItemLevelValidation flags each bad line item
func TestEvaluatePromise_ItemLevelValidation(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/otp/promise", "application/json",
		bytes.NewReader([]byte(`{"items":[{"item_code":"","qty":0},{"item_code":"SKU001","qty":1}]}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Detail []struct {
			Loc []any  `json:"loc"`
			Msg string `json:"msg"`
		} `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Detail, 2, "one entry per failed check on the first item")
}

// TestListSalesOrders returns the envelope with all fixtures
func TestListSalesOrders(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/otp/sales-orders")
	require.NoError(t, err)
	defer resp.Body.Close()

	var list models.SalesOrderListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list.SalesOrders, 5)
	assert.Equal(t, 5, list.Total)
}

// TestListSalesOrders_Search filters by name and customer
func TestListSalesOrders_Search(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/otp/sales-orders?search=big")
	require.NoError(t, err)
	defer resp.Body.Close()

	var list models.SalesOrderListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.SalesOrders, 1)
	assert.Equal(t, "Big Corp", list.SalesOrders[0].CustomerName)
}

// TestGetSalesOrderDetails echoes the requested id with defaults
func TestGetSalesOrderDetails(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/otp/sales-orders/SO-2026-00003")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var details models.SalesOrderDetails
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&details))
	assert.Equal(t, "SO-2026-00003", details.SalesOrderID)
	require.NotNil(t, details.Defaults)
	assert.Equal(t, "Stores - SD", details.Defaults.Warehouse)
}

// TestListItems returns the fixture catalog
func TestListItems(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/otp/items")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Items []string `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Items, 5)
}

// TestMethodNotAllowed: the router rejects wrong verbs
func TestMethodNotAllowed(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/otp/promise")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
