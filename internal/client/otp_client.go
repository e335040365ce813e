// Package client talks to the OTP backend. It issues the three request
// kinds (health check, promise evaluation, sales order lookup) with
// per-operation timeout budgets, and can substitute canned responses in
// mock mode while preserving the exact same contract.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"promise-console/internal/apierr"
	"promise-console/internal/models"
)

const (
	defaultHealthTimeout   = 5 * time.Second
	defaultEvaluateTimeout = 10 * time.Second
	defaultLookupTimeout   = 10 * time.Second
)

// Options configures an OTPClient. Everything is resolved once at
// construction; there is no process-wide state.
type Options struct {
	BaseURL         string
	MockMode        bool
	HealthTimeout   time.Duration
	EvaluateTimeout time.Duration
	LookupTimeout   time.Duration
	// MockLatency overrides the injected delay of mock responses.
	MockLatency time.Duration
	// HTTPClient overrides the underlying client, mainly for tests.
	HTTPClient *http.Client
}

// OTPClient provides methods to interact with the OTP promise API
type OTPClient struct {
	baseURL         string
	mockMode        bool
	baseURLWarning  string
	healthTimeout   time.Duration
	evaluateTimeout time.Duration
	lookupTimeout   time.Duration
	httpClient      *http.Client
	mock            *mockResponder
}

// NewOTPClient creates a new OTP API client
func NewOTPClient(opts Options) *OTPClient {
	c := &OTPClient{
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		mockMode:        opts.MockMode,
		healthTimeout:   opts.HealthTimeout,
		evaluateTimeout: opts.EvaluateTimeout,
		lookupTimeout:   opts.LookupTimeout,
		httpClient:      opts.HTTPClient,
	}
	if c.healthTimeout <= 0 {
		c.healthTimeout = defaultHealthTimeout
	}
	if c.evaluateTimeout <= 0 {
		c.evaluateTimeout = defaultEvaluateTimeout
	}
	if c.lookupTimeout <= 0 {
		c.lookupTimeout = defaultLookupTimeout
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.mockMode {
		c.mock = newMockResponder(opts.MockLatency)
		slog.Info("OTP client running in mock mode")
	} else {
		slog.Info("OTP client connected", "baseURL", c.baseURL)
	}
	c.baseURLWarning = wrongEndpointWarning(c.baseURL)
	return c
}

// BaseURL returns the configured backend endpoint.
func (c *OTPClient) BaseURL() string {
	return c.baseURL
}

// MockMode reports whether canned responses are substituted for network I/O.
func (c *OTPClient) MockMode() bool {
	return c.mockMode
}

// BaseURLWarning returns a non-fatal warning when the configured endpoint
// looks like the wrong service, or empty. It never blocks requests.
func (c *OTPClient) BaseURLWarning() string {
	return c.baseURLWarning
}

// wrongEndpointWarning flags base URLs pointing at known ERPNext ports
// instead of the OTP API.
func wrongEndpointWarning(baseURL string) string {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	port := parsed.Port()
	if port == "8000" || port == "8080" {
		return fmt.Sprintf(
			"You are connected to ERPNext (port %s), not the OTP API. Set OTP_API_BASE_URL to the OTP server address (default: http://127.0.0.1:8001).",
			port)
	}
	return ""
}

// CheckHealth checks backend health and ERPNext connectivity. Failures
// propagate as a normalized error; callers typically fold them into an
// offline indicator rather than surfacing them.
func (c *OTPClient) CheckHealth(ctx context.Context) (*models.HealthResponse, error) {
	if c.mockMode {
		return c.mock.health(ctx)
	}

	var health models.HealthResponse
	if err := c.requestJSON(ctx, http.MethodGet, "/health", nil, c.healthTimeout, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// EvaluatePromise calculates a delivery promise for the given items.
//
// On transport or HTTP failure it does not return an error: it synthesizes
// a low-confidence response carrying the failure as a blocker, because "no
// promise could be computed" is a valid business outcome that must stay
// renderable and auditable.
func (c *OTPClient) EvaluatePromise(ctx context.Context, req models.PromiseRequest) models.PromiseResponse {
	if c.mockMode {
		return c.mock.evaluate(ctx, req)
	}

	var resp models.PromiseResponse
	if err := c.requestJSON(ctx, http.MethodPost, "/otp/promise", req, c.evaluateTimeout, &resp); err != nil {
		apiErr := asAPIError(err)
		slog.Error("Promise evaluation failed", "kind", string(apiErr.Kind), "status", apiErr.StatusCode, "message", apiErr.Message)
		return SynthesizeFailureResponse(apiErr)
	}

	slog.Info("Promise evaluated",
		"status", string(resp.Status),
		"confidence", string(resp.Confidence),
		"promiseDate", stringOrEmpty(resp.PromiseDate))
	return resp
}

// SynthesizeFailureResponse converts a normalized transport error into a
// renderable promise response. Authorization failures map to
// CANNOT_FULFILL; every other failure maps to CANNOT_PROMISE_RELIABLY.
func SynthesizeFailureResponse(apiErr *apierr.Error) models.PromiseResponse {
	status := models.StatusCannotPromiseReliably
	if apiErr.StatusCode == http.StatusForbidden {
		status = models.StatusCannotFulfill
	}
	return models.PromiseResponse{
		Status:      status,
		PromiseDate: nil,
		OnTime:      nil,
		CanFulfill:  false,
		Confidence:  models.ConfidenceLow,
		Plan:        []models.ItemPlan{},
		Reasons:     []string{},
		Blockers:    []string{apiErr.Message},
		Options:     []models.ActionOption{},
		Error:       string(apiErr.Kind),
		ErrorDetail: apiErr.Detail,
	}
}

// ListParams are the supported sales order list filters.
type ListParams struct {
	Limit    int
	Offset   int
	Customer string
	Status   string
	FromDate string
	ToDate   string
	Search   string
}

// ListSalesOrders fetches sales order summaries. Unlike evaluation,
// failures propagate as a normalized error: an empty or missing list is a
// recoverable UI state, not a business outcome to render.
func (c *OTPClient) ListSalesOrders(ctx context.Context, params ListParams) ([]models.SalesOrderSummary, error) {
	if c.mockMode {
		return c.mock.listSalesOrders(ctx)
	}

	query := url.Values{}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		query.Set("offset", strconv.Itoa(params.Offset))
	}
	if params.Customer != "" {
		query.Set("customer", params.Customer)
	}
	if params.Status != "" {
		query.Set("status", params.Status)
	}
	if params.FromDate != "" {
		query.Set("from_date", params.FromDate)
	}
	if params.ToDate != "" {
		query.Set("to_date", params.ToDate)
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}

	path := "/otp/sales-orders"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	body, err := c.requestRaw(ctx, http.MethodGet, path, nil, c.lookupTimeout)
	if err != nil {
		return nil, err
	}
	return decodeSalesOrderList(body)
}

// decodeSalesOrderList accepts the documented envelope, a bare array, or a
// data-wrapped array, mirroring the variations the backend has shipped.
func decodeSalesOrderList(body []byte) ([]models.SalesOrderSummary, error) {
	var envelope models.SalesOrderListResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.SalesOrders != nil {
		return envelope.SalesOrders, nil
	}

	var direct []models.SalesOrderSummary
	if err := json.Unmarshal(body, &direct); err == nil {
		return direct, nil
	}

	var wrapped struct {
		Data []models.SalesOrderSummary `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}

	return []models.SalesOrderSummary{}, nil
}

// GetSalesOrderDetails fetches the full detail of one sales order,
// including line items and server-suggested defaults.
func (c *OTPClient) GetSalesOrderDetails(ctx context.Context, id string) (*models.SalesOrderDetails, error) {
	if c.mockMode {
		return c.mock.salesOrderDetails(ctx, id)
	}

	var details models.SalesOrderDetails
	path := "/otp/sales-orders/" + url.PathEscape(id)
	if err := c.requestJSON(ctx, http.MethodGet, path, nil, c.lookupTimeout, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// requestJSON performs a request and decodes the JSON response into out.
func (c *OTPClient) requestJSON(ctx context.Context, method, path string, payload any, timeout time.Duration, out any) error {
	body, err := c.requestRaw(ctx, method, path, payload, timeout)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &apierr.Error{
			Kind:    apierr.KindUnknown,
			Message: "Backend returned an unreadable response",
			Detail:  err.Error(),
		}
	}
	return nil
}

// requestRaw performs a request under its timeout budget and returns the
// response body. Every failure comes back as *apierr.Error.
func (c *OTPClient) requestRaw(ctx context.Context, method, path string, payload any, timeout time.Duration) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &apierr.Error{
				Kind:    apierr.KindUnknown,
				Message: "Failed to encode request",
				Detail:  err.Error(),
			}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &apierr.Error{
			Kind:    apierr.KindUnknown,
			Message: "Failed to create request",
			Detail:  err.Error(),
		}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierr.FromTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.FromTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apierr.FromResponse(resp.StatusCode, http.StatusText(resp.StatusCode), body)
	}
	return body, nil
}

// asAPIError keeps the normalized type through the never-throw path.
func asAPIError(err error) *apierr.Error {
	if apiErr, ok := err.(*apierr.Error); ok {
		return apiErr
	}
	return &apierr.Error{Kind: apierr.KindUnknown, Message: err.Error()}
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
