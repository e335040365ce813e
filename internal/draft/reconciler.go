// Package draft owns the two input drafts behind the order form: one for
// manually typed orders and one populated from a looked-up sales order.
// Exactly one draft is bound to the visible form at a time; the form reads
// and writes fields only through the reconciler, never the inactive draft.
package draft

import (
	"log/slog"

	"promise-console/internal/models"
)

// Mode identifies which draft is bound to the form.
type Mode string

const (
	ModeManual    Mode = "manual"
	ModeFromOrder Mode = "from-order"
)

const (
	DefaultWarehouse  = "Stores - SD"
	DefaultCutoffTime = "14:00"
	DefaultTimezone   = "UTC"
	DefaultBufferDays = 1
)

// Draft is the per-mode snapshot of all form fields.
type Draft struct {
	SalesOrderID     string
	Customer         string
	Items            []models.LineItem
	DesiredDate      string
	OrderCreatedAt   string
	DeliveryMode     models.DeliveryMode
	NoWeekends       bool
	CutoffTime       string
	CutoffTimezone   string
	BufferDays       int
	DefaultWarehouse string
}

// NewDraft returns the empty default draft: a single blank line item and
// the standard delivery settings.
func NewDraft() Draft {
	return Draft{
		Items:            []models.LineItem{{ItemCode: "", Qty: 1, Warehouse: DefaultWarehouse}},
		DeliveryMode:     models.ModeLatestAcceptable,
		NoWeekends:       true,
		CutoffTime:       DefaultCutoffTime,
		CutoffTimezone:   DefaultTimezone,
		BufferDays:       DefaultBufferDays,
		DefaultWarehouse: DefaultWarehouse,
	}
}

// clone deep-copies the draft so the two slots never share item slices.
func (d Draft) clone() Draft {
	out := d
	out.Items = make([]models.LineItem, len(d.Items))
	copy(out.Items, d.Items)
	return out
}

// Form is the reconciler's view of the visible form: read all current field
// values, or replace them wholesale.
type Form interface {
	Values() Draft
	Load(Draft)
}

// Reconciler holds the two draft slots and the identity of the most recent
// order lookup, guarding against stale fetches overwriting current state.
type Reconciler struct {
	form           Form
	active         Mode
	drafts         map[Mode]Draft
	pendingOrderID string
	onInvalidate   func()
}

// New creates a reconciler starting in manual mode with both drafts at
// their defaults. onInvalidate is called when a previously computed result
// must be discarded; it may be nil.
func New(form Form, onInvalidate func()) *Reconciler {
	r := &Reconciler{
		form:         form,
		active:       ModeManual,
		onInvalidate: onInvalidate,
		drafts: map[Mode]Draft{
			ModeManual:    NewDraft(),
			ModeFromOrder: NewDraft(),
		},
	}
	form.Load(r.drafts[ModeManual])
	return r
}

// ActiveMode returns the mode currently bound to the form.
func (r *Reconciler) ActiveMode() Mode {
	return r.active
}

// PendingOrderID returns the most recently requested lookup id, or empty.
func (r *Reconciler) PendingOrderID() string {
	return r.pendingOrderID
}

// Draft returns a copy of the stored draft for a mode.
func (r *Reconciler) Draft(mode Mode) Draft {
	return r.drafts[mode].clone()
}

// SwitchMode snapshots the form into the currently active draft, activates
// the target mode and loads its draft into the form. Switching to the mode
// already active is a no-op; the draft not being switched to is never read
// or written.
func (r *Reconciler) SwitchMode(target Mode) {
	if target == r.active {
		return
	}

	r.drafts[r.active] = r.form.Values().clone()
	r.active = target
	if target == ModeManual {
		// Leaving order mode abandons any in-flight lookup.
		r.pendingOrderID = ""
	}
	r.form.Load(r.drafts[target])

	slog.Debug("Input mode switched", "mode", string(target))
}

// SelectOrder records id as the lookup target. An empty id clears the
// current selection. The caller fetches the details and hands them back via
// ApplyOrderDetails.
func (r *Reconciler) SelectOrder(id string) {
	if id == "" {
		r.ClearOrder()
		return
	}
	r.pendingOrderID = id
}

// ApplyOrderDetails merges fetched sales order details into the from-order
// draft. A fetch that no longer corresponds to the most recently requested
// id is discarded; the form is reloaded only while from-order mode is still
// active. Returns whether the details were applied.
func (r *Reconciler) ApplyOrderDetails(id string, details models.SalesOrderDetails) bool {
	if id == "" || id != r.pendingOrderID {
		slog.Debug("Discarding stale sales order details", "id", id, "pending", r.pendingOrderID)
		return false
	}

	current := r.drafts[ModeFromOrder]
	if r.active == ModeFromOrder {
		current = r.form.Values()
	}
	updated := normalizeDetails(id, details, current.CutoffTimezone)
	r.drafts[ModeFromOrder] = updated.clone()

	if r.active == ModeFromOrder {
		r.form.Load(updated)
	}
	return true
}

// ClearOrder resets the from-order draft to its empty default and signals
// the caller to discard any promise result computed against the previous
// selection.
func (r *Reconciler) ClearOrder() {
	r.pendingOrderID = ""
	r.drafts[ModeFromOrder] = NewDraft()
	if r.active == ModeFromOrder {
		r.form.Load(r.drafts[ModeFromOrder])
	}
	if r.onInvalidate != nil {
		r.onInvalidate()
	}
}

// normalizeDetails maps a sales order detail payload onto a draft,
// applying the documented fallback chains for missing fields.
func normalizeDetails(requestedID string, details models.SalesOrderDetails, timezone string) Draft {
	defaults := details.Defaults
	if defaults == nil {
		defaults = &models.SalesOrderDefaults{}
	}

	warehouse := defaults.Warehouse
	if warehouse == "" {
		warehouse = DefaultWarehouse
	}
	deliveryMode := defaults.DeliveryMode
	if deliveryMode == "" {
		deliveryMode = models.ModeLatestAcceptable
	}
	cutoff := defaults.CutoffTime
	if cutoff == "" {
		cutoff = DefaultCutoffTime
	}
	noWeekends := true
	if defaults.NoWeekends != nil {
		noWeekends = *defaults.NoWeekends
	}
	if timezone == "" {
		timezone = DefaultTimezone
	}

	return Draft{
		SalesOrderID:     normalizeOrderID(details, requestedID),
		Customer:         normalizeCustomer(details),
		DesiredDate:      normalizeDesiredDate(details),
		OrderCreatedAt:   normalizeOrderCreatedAt(details),
		Items:            normalizeItems(details.Items, warehouse),
		DeliveryMode:     deliveryMode,
		NoWeekends:       noWeekends,
		CutoffTime:       cutoff,
		CutoffTimezone:   timezone,
		BufferDays:       DefaultBufferDays,
		DefaultWarehouse: warehouse,
	}
}

func normalizeOrderID(details models.SalesOrderDetails, fallback string) string {
	if details.SalesOrderID != "" {
		return details.SalesOrderID
	}
	if details.Name != "" {
		return details.Name
	}
	return fallback
}

func normalizeCustomer(details models.SalesOrderDetails) string {
	if details.CustomerName != "" {
		return details.CustomerName
	}
	return details.Customer
}

func normalizeDesiredDate(details models.SalesOrderDetails) string {
	if details.DeliveryDate != "" {
		return details.DeliveryDate
	}
	return details.TransactionDate
}

func normalizeOrderCreatedAt(details models.SalesOrderDetails) string {
	if details.TransactionDate == "" {
		return ""
	}
	return details.TransactionDate + "T00:00"
}

func normalizeItems(items []models.SalesOrderDetailItem, warehouse string) []models.LineItem {
	if len(items) == 0 {
		return []models.LineItem{{ItemCode: "", Qty: 1, Warehouse: warehouse}}
	}
	out := make([]models.LineItem, 0, len(items))
	for _, item := range items {
		qty := item.Qty
		if qty == 0 {
			qty = 1
		}
		itemWarehouse := item.Warehouse
		if itemWarehouse == "" {
			itemWarehouse = warehouse
		}
		out = append(out, models.LineItem{
			ItemCode:  item.ItemCode,
			Qty:       qty,
			Warehouse: itemWarehouse,
		})
	}
	return out
}
