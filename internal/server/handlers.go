// Package server implements the standalone mock OTP backend: the same
// endpoints and payload shapes as the real promise engine, answered from
// the canned fixtures. It exists so the console can be exercised end to end
// without an ERPNext installation.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"promise-console/internal/mockdata"
	"promise-console/internal/models"
)

// Handler answers the OTP API endpoints from fixture data.
type Handler struct {
	version string
}

// NewHandler creates a mock backend handler reporting the given version.
func NewHandler(version string) *Handler {
	return &Handler{version: version}
}

// writeJSONResponse is a helper function to write JSON responses
func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// validationDetail is one entry of a 422 validation error body.
type validationDetail struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// writeValidationError writes the 422 body the real backend produces for
// invalid requests: a detail array with per-field locations.
func writeValidationError(w http.ResponseWriter, details []validationDetail) {
	writeJSONResponse(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": details,
	})
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := mockdata.HealthCheck()
	health.Version = h.version
	writeJSONResponse(w, http.StatusOK, health)
}

// EvaluatePromise handles POST /otp/promise
func (h *Handler) EvaluatePromise(w http.ResponseWriter, r *http.Request) {
	var req models.PromiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, []validationDetail{
			{Loc: []any{"body"}, Msg: "Invalid JSON body", Type: "value_error.jsondecode"},
		})
		return
	}

	details := validatePromiseRequest(req)
	if len(details) > 0 {
		slog.Debug("Rejecting invalid promise request", "issues", len(details), "remote_addr", r.RemoteAddr)
		writeValidationError(w, details)
		return
	}

	mode := models.DeliveryMode("")
	if req.Rules != nil {
		mode = req.Rules.DesiredDateMode
	}
	resp := mockdata.RandomPromiseResponse(mode)

	slog.Info("Promise evaluated",
		"customer", req.Customer,
		"items", len(req.Items),
		"status", string(resp.Status),
		"remote_addr", r.RemoteAddr)

	writeJSONResponse(w, http.StatusOK, resp)
}

// validatePromiseRequest applies the request-level checks the real engine
// enforces before evaluating.
func validatePromiseRequest(req models.PromiseRequest) []validationDetail {
	var details []validationDetail

	if len(req.Items) == 0 {
		details = append(details, validationDetail{
			Loc:  []any{"body", "items"},
			Msg:  "At least one item is required",
			Type: "value_error.list.min_items",
		})
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.ItemCode) == "" {
			details = append(details, validationDetail{
				Loc:  []any{"body", "items", float64(i), "item_code"},
				Msg:  "field required",
				Type: "value_error.missing",
			})
		}
		if item.Qty < 1 {
			details = append(details, validationDetail{
				Loc:  []any{"body", "items", float64(i), "qty"},
				Msg:  "ensure this value is greater than or equal to 1",
				Type: "value_error.number.not_ge",
			})
		}
	}
	return details
}

// ListSalesOrders handles GET /otp/sales-orders
func (h *Handler) ListSalesOrders(w http.ResponseWriter, r *http.Request) {
	orders := mockdata.SalesOrders()

	if search := r.URL.Query().Get("search"); search != "" {
		filtered := orders[:0]
		lower := strings.ToLower(search)
		for _, order := range orders {
			if strings.Contains(strings.ToLower(order.Name), lower) ||
				strings.Contains(strings.ToLower(order.CustomerName), lower) {
				filtered = append(filtered, order)
			}
		}
		orders = filtered
	}

	slog.Debug("Sales orders listed", "count", len(orders), "remote_addr", r.RemoteAddr)
	writeJSONResponse(w, http.StatusOK, models.SalesOrderListResponse{
		SalesOrders: orders,
		Total:       len(orders),
		Limit:       len(orders),
	})
}

// GetSalesOrderDetails handles GET /otp/sales-orders/{orderId}
func (h *Handler) GetSalesOrderDetails(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	orderID := vars["orderId"]
	if orderID == "" {
		writeValidationError(w, []validationDetail{
			{Loc: []any{"path", "orderId"}, Msg: "field required", Type: "value_error.missing"},
		})
		return
	}

	writeJSONResponse(w, http.StatusOK, mockdata.SalesOrderDetails(orderID))
}

// ListItems handles GET /otp/items
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"items": mockdata.ItemCodes(),
	})
}
