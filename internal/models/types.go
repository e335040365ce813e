package models

// Enumerations shared across the OTP wire contract
type PromiseStatus string

const (
	StatusOK                    PromiseStatus = "OK"
	StatusCannotFulfill         PromiseStatus = "CANNOT_FULFILL"
	StatusCannotPromiseReliably PromiseStatus = "CANNOT_PROMISE_RELIABLY"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

type DeliveryMode string

const (
	ModeLatestAcceptable DeliveryMode = "LATEST_ACCEPTABLE"
	ModeNoEarlyDelivery  DeliveryMode = "NO_EARLY_DELIVERY"
	ModeStrictFail       DeliveryMode = "STRICT_FAIL"
)

type FulfillmentSource string

const (
	SourceStock         FulfillmentSource = "stock"
	SourcePurchaseOrder FulfillmentSource = "purchase_order"
	SourceProduction    FulfillmentSource = "production"
)

type HealthState string

const (
	HealthHealthy   HealthState = "healthy"
	HealthDegraded  HealthState = "degraded"
	HealthUnhealthy HealthState = "unhealthy"
)

// Request types for POST /otp/promise
type PromiseRequest struct {
	Customer     string     `json:"customer,omitempty"`
	Items        []LineItem `json:"items"`
	DesiredDate  string     `json:"desired_date,omitempty"`
	Rules        *RuleSet   `json:"rules,omitempty"`
	SalesOrderID string     `json:"sales_order_id,omitempty"`
}

type LineItem struct {
	ItemCode  string `json:"item_code"`
	Qty       int    `json:"qty"`
	Warehouse string `json:"warehouse,omitempty"`
}

// RuleSet carries the business rules applied by the promise engine.
// The backend substitutes its own defaults for any omitted field.
type RuleSet struct {
	NoWeekends             bool         `json:"no_weekends"`
	CutoffTime             string       `json:"cutoff_time,omitempty"`
	Timezone               string       `json:"timezone,omitempty"`
	LeadTimeBufferDays     int          `json:"lead_time_buffer_days"`
	ProcessingLeadTimeDays int          `json:"processing_lead_time_days"`
	DesiredDateMode        DeliveryMode `json:"desired_date_mode,omitempty"`
	OrderCreatedAt         string       `json:"order_created_at,omitempty"`
}

// Response types for POST /otp/promise
//
// Business infeasibility is still HTTP 200: the status field distinguishes
// OK from CANNOT_FULFILL and CANNOT_PROMISE_RELIABLY. PromiseDate is nil
// only when status is not OK.
type PromiseResponse struct {
	Status                       PromiseStatus  `json:"status"`
	PromiseDate                  *string        `json:"promise_date"`
	PromiseDateRaw               *string        `json:"promise_date_raw,omitempty"`
	DesiredDate                  *string        `json:"desired_date,omitempty"`
	DesiredDateMode              DeliveryMode   `json:"desired_date_mode,omitempty"`
	OnTime                       *bool          `json:"on_time"`
	AdjustedDueToNoEarlyDelivery bool           `json:"adjusted_due_to_no_early_delivery"`
	CanFulfill                   bool           `json:"can_fulfill"`
	Confidence                   Confidence     `json:"confidence"`
	Plan                         []ItemPlan     `json:"plan"`
	Reasons                      []string       `json:"reasons"`
	Blockers                     []string       `json:"blockers"`
	Options                      []ActionOption `json:"options"`
	Error                        string         `json:"error,omitempty"`
	ErrorDetail                  string         `json:"error_detail,omitempty"`
}

type ItemPlan struct {
	ItemCode    string            `json:"item_code"`
	QtyRequired int               `json:"qty_required"`
	Fulfillment []FulfillmentLine `json:"fulfillment"`
	// Shortage is nil when the backend did not state it explicitly;
	// use EffectiveShortage for the derived value.
	Shortage *int `json:"shortage,omitempty"`
}

// EffectiveShortage returns the explicit shortage when the backend provided
// one, otherwise max(0, qty_required - sum of fulfillment quantities).
func (p ItemPlan) EffectiveShortage() int {
	if p.Shortage != nil {
		return *p.Shortage
	}
	fulfilled := 0
	for _, f := range p.Fulfillment {
		fulfilled += f.Qty
	}
	if p.QtyRequired <= fulfilled {
		return 0
	}
	return p.QtyRequired - fulfilled
}

type FulfillmentLine struct {
	Source        FulfillmentSource `json:"source"`
	Qty           int               `json:"qty"`
	AvailableDate string            `json:"available_date,omitempty"`
	ShipReadyDate string            `json:"ship_ready_date,omitempty"`
	Warehouse     string            `json:"warehouse,omitempty"`
	POID          string            `json:"po_id,omitempty"`
	ExpectedDate  string            `json:"expected_date,omitempty"`
}

type ActionOption struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Impact      string `json:"impact,omitempty"`
	POID        string `json:"po_id,omitempty"`
}

// Response type for GET /health
type HealthResponse struct {
	Status           HealthState `json:"status"`
	Version          string      `json:"version"`
	ERPNextConnected bool        `json:"erpnext_connected"`
	Message          string      `json:"message,omitempty"`
}

// Sales order list and detail types for GET /otp/sales-orders
type SalesOrderSummary struct {
	Name            string `json:"name"`
	Customer        string `json:"customer,omitempty"`
	CustomerName    string `json:"customer_name,omitempty"`
	Status          string `json:"status,omitempty"`
	TransactionDate string `json:"transaction_date,omitempty"`
	DeliveryDate    string `json:"delivery_date,omitempty"`
	ItemCount       int    `json:"item_count,omitempty"`
	TotalQty        int    `json:"total_qty,omitempty"`
}

type SalesOrderListResponse struct {
	SalesOrders []SalesOrderSummary `json:"sales_orders"`
	Total       int                 `json:"total"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset,omitempty"`
}

type SalesOrderDetailItem struct {
	ItemCode       string `json:"item_code,omitempty"`
	Qty            int    `json:"qty,omitempty"`
	Warehouse      string `json:"warehouse,omitempty"`
	StockActual    *int   `json:"stock_actual,omitempty"`
	StockReserved  *int   `json:"stock_reserved,omitempty"`
	StockAvailable *int   `json:"stock_available,omitempty"`
}

type SalesOrderDefaults struct {
	Warehouse    string       `json:"warehouse,omitempty"`
	NoWeekends   *bool        `json:"no_weekends,omitempty"`
	CutoffTime   string       `json:"cutoff_time,omitempty"`
	DeliveryMode DeliveryMode `json:"delivery_mode,omitempty"`
}

type SalesOrderDetails struct {
	Name            string                 `json:"name,omitempty"`
	SalesOrderID    string                 `json:"sales_order_id,omitempty"`
	Customer        string                 `json:"customer,omitempty"`
	CustomerName    string                 `json:"customer_name,omitempty"`
	TransactionDate string                 `json:"transaction_date,omitempty"`
	DeliveryDate    string                 `json:"delivery_date,omitempty"`
	Items           []SalesOrderDetailItem `json:"items,omitempty"`
	Defaults        *SalesOrderDefaults    `json:"defaults,omitempty"`
}

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}
