// Package session orchestrates one operator workspace: the input drafts,
// promise evaluation against the backend, result classification, the audit
// trail and the sales order lookup flow.
package session

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"promise-console/internal/audit"
	"promise-console/internal/cache"
	"promise-console/internal/calendar"
	"promise-console/internal/classify"
	"promise-console/internal/client"
	"promise-console/internal/draft"
	"promise-console/internal/models"
)

// ErrNoValidItems is returned when no line item survives filtering.
var ErrNoValidItems = errors.New("At least one valid item is required")

// AfterCutoffNote is appended to the evaluation blockers when the order was
// created past the daily cutoff.
const AfterCutoffNote = "After cutoff → processed next business day"

const detailsCacheTTL = 5 * time.Minute

// Result pairs an evaluation response with the facts derived from it.
type Result struct {
	Response    models.PromiseResponse
	Facts       classify.DerivedFacts
	EvaluatedAt time.Time
	AuditID     string
	// Stale marks a result superseded by a newer evaluation; stale results
	// must not be displayed or recorded.
	Stale bool
}

// Session ties the reconciler, transport client and stores together.
type Session struct {
	client  *client.OTPClient
	health  *client.HealthMonitor
	recon   *draft.Reconciler
	audits  *audit.Store
	details *cache.DetailsCache

	evalSeq atomic.Uint64

	mu   sync.Mutex
	last *Result
}

// Options configures a Session. Audits may be nil to disable the audit
// trail; Form may be nil to use an in-memory form.
type Options struct {
	Client *client.OTPClient
	Audits *audit.Store
	Form   draft.Form
}

func New(opts Options) *Session {
	form := opts.Form
	if form == nil {
		form = draft.NewMemoryForm()
	}
	s := &Session{
		client:  opts.Client,
		health:  client.NewHealthMonitor(opts.Client),
		audits:  opts.Audits,
		details: cache.NewDetailsCache(detailsCacheTTL),
	}
	s.recon = draft.New(form, s.InvalidateResult)
	return s
}

// Reconciler exposes the draft reconciler for form wiring.
func (s *Session) Reconciler() *draft.Reconciler {
	return s.recon
}

// Health refreshes and returns the backend health status.
func (s *Session) Health(ctx context.Context) models.HealthResponse {
	return s.health.Refresh(ctx)
}

// Online reports the last-known backend liveness.
func (s *Session) Online() bool {
	return s.health.Online()
}

// BuildRequest assembles the evaluation request from a draft. Line items
// with an empty item code or a non-positive quantity are dropped; at least
// one item must survive.
func BuildRequest(d draft.Draft) (models.PromiseRequest, error) {
	items := make([]models.LineItem, 0, len(d.Items))
	for _, item := range d.Items {
		code := strings.TrimSpace(item.ItemCode)
		if code == "" || item.Qty < 1 {
			continue
		}
		warehouse := item.Warehouse
		if warehouse == "" {
			warehouse = d.DefaultWarehouse
		}
		items = append(items, models.LineItem{
			ItemCode:  code,
			Qty:       item.Qty,
			Warehouse: warehouse,
		})
	}
	if len(items) == 0 {
		return models.PromiseRequest{}, ErrNoValidItems
	}

	return models.PromiseRequest{
		Customer:     strings.TrimSpace(d.Customer),
		Items:        items,
		DesiredDate:  d.DesiredDate,
		SalesOrderID: d.SalesOrderID,
		Rules: &models.RuleSet{
			NoWeekends:             d.NoWeekends,
			CutoffTime:             d.CutoffTime,
			Timezone:               d.CutoffTimezone,
			LeadTimeBufferDays:     d.BufferDays,
			ProcessingLeadTimeDays: 1,
			DesiredDateMode:        d.DeliveryMode,
			OrderCreatedAt:         d.OrderCreatedAt,
		},
	}, nil
}

// Evaluate runs one promise evaluation for the draft. Starting a new
// evaluation supersedes any in-flight one: a response arriving after a newer
// evaluation has started comes back marked stale and is neither stored nor
// audited. Backend failures do not surface as errors; they arrive as a
// synthesized low-confidence response.
func (s *Session) Evaluate(ctx context.Context, d draft.Draft) (Result, error) {
	req, err := BuildRequest(d)
	if err != nil {
		return Result{}, err
	}

	seq := s.evalSeq.Add(1)
	resp := s.client.EvaluatePromise(ctx, req)

	if calendar.IsAfterCutoff(d.OrderCreatedAt, d.CutoffTime) {
		resp.Blockers = append(resp.Blockers, AfterCutoffNote)
	}

	result := Result{
		Response:    resp,
		Facts:       classify.Classify(resp),
		EvaluatedAt: time.Now().UTC(),
	}

	if s.evalSeq.Load() != seq {
		result.Stale = true
		slog.Debug("Discarding stale evaluation result", "seq", seq)
		return result, nil
	}

	result.AuditID = s.recordAudit(ctx, req, resp)

	s.mu.Lock()
	s.last = &result
	s.mu.Unlock()
	return result, nil
}

// recordAudit appends the evaluation to the audit trail. Audit failures are
// logged and swallowed; they never fail the evaluation.
func (s *Session) recordAudit(ctx context.Context, req models.PromiseRequest, resp models.PromiseResponse) string {
	if s.audits == nil {
		return ""
	}
	rec := audit.Record{
		Customer:   req.Customer,
		ItemCount:  len(req.Items),
		Confidence: resp.Confidence,
		OnTime:     resp.OnTime,
		Request:    req,
		Response:   resp,
	}
	if resp.PromiseDate != nil {
		rec.PromiseDate = *resp.PromiseDate
	}
	stored, err := s.audits.Append(ctx, rec)
	if err != nil {
		slog.Warn("Failed to append audit record", "error", err)
		return ""
	}
	return stored.ID
}

// LastResult returns the most recent non-stale evaluation result, or nil.
func (s *Session) LastResult() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// InvalidateResult discards the stored evaluation result. The reconciler
// calls this when the inputs the result was computed from are cleared.
func (s *Session) InvalidateResult() {
	s.mu.Lock()
	s.last = nil
	s.mu.Unlock()
}

// ListOrders fetches sales order summaries sorted by the numeric suffix of
// their names, newest first.
func (s *Session) ListOrders(ctx context.Context, params client.ListParams) ([]models.SalesOrderSummary, error) {
	orders, err := s.client.ListSalesOrders(ctx, params)
	if err != nil {
		return nil, err
	}
	SortOrders(orders)
	return orders, nil
}

var orderSuffix = regexp.MustCompile(`(\d+)$`)

// SortOrders orders summaries by the trailing number of their names in
// descending order, so the most recently created orders come first. Names
// without a numeric suffix sort last, alphabetically.
func SortOrders(orders []models.SalesOrderSummary) {
	sort.SliceStable(orders, func(i, j int) bool {
		ni, oki := orderNumber(orders[i].Name)
		nj, okj := orderNumber(orders[j].Name)
		if oki && okj {
			return ni > nj
		}
		if oki != okj {
			return oki
		}
		return orders[i].Name < orders[j].Name
	})
}

func orderNumber(name string) (int, bool) {
	match := orderSuffix.FindString(name)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SelectOrder records the order selection and loads its details into the
// from-order draft. Details come from the lookup cache when fresh. A lookup
// that resolves after a different order has been selected is discarded by
// the reconciler.
func (s *Session) SelectOrder(ctx context.Context, id string) error {
	s.recon.SelectOrder(id)
	if id == "" {
		return nil
	}

	details, ok := s.details.Get(id)
	if !ok {
		fetched, err := s.client.GetSalesOrderDetails(ctx, id)
		if err != nil {
			return err
		}
		details = *fetched
		s.details.Set(id, details)
	}

	s.recon.ApplyOrderDetails(id, details)
	return nil
}

// ClearOrder resets the order selection and invalidates the current result.
func (s *Session) ClearOrder() {
	s.recon.ClearOrder()
}

// SwitchMode switches the active input draft.
func (s *Session) SwitchMode(mode draft.Mode) {
	s.recon.SwitchMode(mode)
}
