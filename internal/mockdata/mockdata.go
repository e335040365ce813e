// Package mockdata holds the canned demo responses used by mock mode and
// the standalone mock backend. The fixtures match the backend response
// schema exactly and cover the interesting outcomes: full stock, partial
// stock with incoming supply, cannot-fulfill, and a strict-fail refusal.
package mockdata

import (
	"math/rand"

	"promise-console/internal/models"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(n int) *int       { return &n }

// SalesOrders returns the fixture order list.
func SalesOrders() []models.SalesOrderSummary {
	return []models.SalesOrderSummary{
		{Name: "SO-2026-00001", CustomerName: "Big Corp", TransactionDate: "2026-01-15", ItemCount: 3},
		{Name: "SO-2026-00002", CustomerName: "Tech Solutions Ltd", TransactionDate: "2026-01-16", ItemCount: 5},
		{Name: "SO-2026-00003", CustomerName: "Global Trade Inc", TransactionDate: "2026-01-17", ItemCount: 2},
		{Name: "SO-2026-00004", CustomerName: "Industrial Partners", TransactionDate: "2026-01-18", ItemCount: 4},
		{Name: "SO-2026-00005", CustomerName: "Retail Network Co", TransactionDate: "2026-01-19", ItemCount: 6},
	}
}

// SalesOrderDetails returns a fixture detail payload for any id.
func SalesOrderDetails(id string) models.SalesOrderDetails {
	return models.SalesOrderDetails{
		Name:         id,
		SalesOrderID: id,
		CustomerName: "Mock Customer",
		Items:        []models.SalesOrderDetailItem{},
		Defaults: &models.SalesOrderDefaults{
			Warehouse:  "Stores - SD",
			NoWeekends: boolPtr(true),
			CutoffTime: "14:00",
		},
	}
}

// ItemCodes returns the fixture item catalog codes.
func ItemCodes() []string {
	return []string{"SKU001", "SKU002", "SKU003", "SKU004", "SKU005"}
}

// PromiseSuccess: all items in stock, on-time delivery.
func PromiseSuccess() models.PromiseResponse {
	return models.PromiseResponse{
		Status:          models.StatusOK,
		PromiseDate:     strPtr("2026-02-10"),
		PromiseDateRaw:  strPtr("2026-02-09"),
		DesiredDate:     strPtr("2026-02-10"),
		DesiredDateMode: models.ModeLatestAcceptable,
		OnTime:          boolPtr(true),
		CanFulfill:      true,
		Confidence:      models.ConfidenceHigh,
		Plan: []models.ItemPlan{
			{
				ItemCode:    "SKU001",
				QtyRequired: 20,
				Fulfillment: []models.FulfillmentLine{
					{Source: models.SourceStock, Qty: 20, AvailableDate: "2026-02-05", ShipReadyDate: "2026-02-05", Warehouse: "Stores - SD"},
				},
				Shortage: intPtr(0),
			},
			{
				ItemCode:    "SKU002",
				QtyRequired: 10,
				Fulfillment: []models.FulfillmentLine{
					{Source: models.SourceStock, Qty: 10, AvailableDate: "2026-02-05", ShipReadyDate: "2026-02-05", Warehouse: "Stores - SD"},
				},
				Shortage: intPtr(0),
			},
		},
		Reasons: []string{
			"All items available in warehouse",
			"Can fulfill by 2026-02-05",
			"Weekend adjustment applied: Sunday delivery allowed",
		},
		Blockers: []string{},
		Options: []models.ActionOption{
			{Type: "expedite_po", Description: "Can deliver 1 day earlier"},
			{Type: "split_shipment", Description: "Split across 2 shipments"},
		},
	}
}

// PromisePartialStock: mix of stock and incoming purchase orders.
func PromisePartialStock() models.PromiseResponse {
	return models.PromiseResponse{
		Status:          models.StatusOK,
		PromiseDate:     strPtr("2026-02-12"),
		PromiseDateRaw:  strPtr("2026-02-10"),
		DesiredDate:     strPtr("2026-02-15"),
		DesiredDateMode: models.ModeLatestAcceptable,
		OnTime:          boolPtr(true),
		CanFulfill:      true,
		Confidence:      models.ConfidenceMedium,
		Plan: []models.ItemPlan{
			{
				ItemCode:    "SKU001",
				QtyRequired: 50,
				Fulfillment: []models.FulfillmentLine{
					{Source: models.SourceStock, Qty: 30, AvailableDate: "2026-02-05", ShipReadyDate: "2026-02-05", Warehouse: "Stores - SD"},
					{Source: models.SourcePurchaseOrder, Qty: 20, AvailableDate: "2026-02-10", ShipReadyDate: "2026-02-12", Warehouse: "Stores - SD", POID: "PO-2026-001", ExpectedDate: "2026-02-10"},
				},
				Shortage: intPtr(0),
			},
		},
		Reasons: []string{
			"30 units available in stock (Stores - SD)",
			"20 units incoming from PO-2026-001 expected 2026-02-10",
			"Full fulfillment possible by 2026-02-12",
		},
		Blockers: []string{},
		Options:  []models.ActionOption{},
	}
}

// PromiseCannotFulfill: insufficient supply.
func PromiseCannotFulfill() models.PromiseResponse {
	return models.PromiseResponse{
		Status:          models.StatusCannotFulfill,
		PromiseDate:     strPtr("2026-03-15"),
		DesiredDate:     strPtr("2026-02-10"),
		DesiredDateMode: models.ModeLatestAcceptable,
		OnTime:          boolPtr(false),
		CanFulfill:      false,
		Confidence:      models.ConfidenceLow,
		Plan:            []models.ItemPlan{},
		Reasons: []string{
			"Insufficient stock: 10 units available, 50 required",
			"No incoming purchase orders for this item",
			"Would require 3+ weeks for new procurement",
		},
		Blockers: []string{
			"SKU005 not available in requested warehouse",
			"Supply chain disruption expected through 2026-02-28",
		},
		Options: []models.ActionOption{
			{Type: "backorder", Description: "Deliver available 10 units now"},
			{Type: "split_shipment", Description: "Split delivery: 10 now, 40 on 2026-03-15"},
			{Type: "alternate_warehouse", Description: "SKU006 is a compatible alternative"},
		},
	}
}

// PromiseStrictFail: reliability check fails under STRICT_FAIL mode.
func PromiseStrictFail() models.PromiseResponse {
	return models.PromiseResponse{
		Status:          models.StatusCannotPromiseReliably,
		PromiseDate:     nil,
		DesiredDate:     strPtr("2026-02-10"),
		DesiredDateMode: models.ModeStrictFail,
		OnTime:          boolPtr(false),
		CanFulfill:      false,
		Confidence:      models.ConfidenceLow,
		Plan:            []models.ItemPlan{},
		Reasons:         []string{},
		Blockers: []string{
			"STRICT_FAIL mode: Cannot promise reliably for desired date",
			"Risk of non-fulfillment exceeds threshold",
		},
		Options: []models.ActionOption{
			{Type: "expedite_po", Description: "Use LATEST_ACCEPTABLE for flexible date"},
			{Type: "backorder", Description: "Pay premium for expedited supply"},
		},
		Error:       "Cannot fulfill with required reliability",
		ErrorDetail: "In STRICT_FAIL mode, we cannot promise this date",
	}
}

// HealthCheck reports healthy with ERPNext disconnected, matching mock mode.
func HealthCheck() models.HealthResponse {
	return models.HealthResponse{
		Status:           models.HealthHealthy,
		Version:          "0.1.0",
		ERPNextConnected: false,
		Message:          "Mock mode active - backend data not connected",
	}
}

// RandomPromiseResponse picks among the demo outcomes. STRICT_FAIL requests
// always get the strict-fail fixture so the mode is demonstrable.
func RandomPromiseResponse(mode models.DeliveryMode) models.PromiseResponse {
	if mode == models.ModeStrictFail {
		return PromiseStrictFail()
	}
	switch rand.Intn(3) {
	case 0:
		return PromiseSuccess()
	case 1:
		return PromisePartialStock()
	default:
		return PromiseCannotFulfill()
	}
}
