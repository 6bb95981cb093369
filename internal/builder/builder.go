// Package builder implements the order-entry state machine: a mutable list
// of flavour rows with a running total, a preview/confirm flow, and a single
// submission through an OrderPlacer. It has no transport or rendering
// concerns, so the whole flow is unit-testable.
package builder

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"icecream-storefront/internal/catalog"
)

// Phase is the builder's position in the order flow.
type Phase int

const (
	Editing Phase = iota
	Reviewing
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Editing:
		return "editing"
	case Reviewing:
		return "reviewing"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// PhaseError is returned when an operation is attempted outside the phase
// that allows it. Nothing changes when it is returned.
type PhaseError struct {
	Op    string
	Phase Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s not allowed while %s", e.Op, e.Phase)
}

// Row is one line of the in-progress order. UnitPrice is snapshotted from
// the catalog when the flavour is selected and never re-read, so a later
// catalog change cannot alter a row already on the form.
type Row struct {
	Flavour   string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Selected reports whether the row has a flavour picked.
func (r Row) Selected() bool {
	return r.Flavour != ""
}

// Subtotal is unit price × quantity.
func (r Row) Subtotal() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))
}

// Contact identifies the submitter. BusinessID zero means a guest order,
// which must carry name/phone/address instead.
type Contact struct {
	BusinessID   int64
	BusinessName string
	ContactName  string
	Phone        string
	Address      string
}

// PreviewItem is one confirmed-selection line inside a preview.
type PreviewItem struct {
	Flavour   string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Preview is the immutable snapshot shown for confirmation. It is built
// from the rows at review time and is not affected by later edits.
type Preview struct {
	Items   []PreviewItem
	Total   decimal.Decimal
	Contact Contact
}

// LineItem is what gets submitted for one selected row.
type LineItem struct {
	ItemName string
	Quantity int
	Price    decimal.Decimal
}

// OrderPlacer performs the one external call of the flow. Implementations
// must treat any failure as "order not recorded".
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, businessID int64, items []LineItem) (orderID int64, err error)
}

// PlacerFunc adapts a function to the OrderPlacer interface.
type PlacerFunc func(ctx context.Context, businessID int64, items []LineItem) (int64, error)

func (f PlacerFunc) PlaceOrder(ctx context.Context, businessID int64, items []LineItem) (int64, error) {
	return f(ctx, businessID, items)
}

// Builder holds all order-entry state. It is not safe for concurrent use;
// the flow is single-threaded by construction (one user, one form).
type Builder struct {
	phase   Phase
	rows    []Row
	contact Contact
	preview *Preview
	orderID int64
	lastErr error
	priceOf func(string) decimal.Decimal
}

// New returns a Builder in Editing with one empty row, priced from the
// static catalog.
func New() *Builder {
	return NewWithPricer(catalog.PriceOf)
}

// NewWithPricer is New with a custom price lookup, for tests.
func NewWithPricer(priceOf func(string) decimal.Decimal) *Builder {
	return &Builder{
		rows:    []Row{emptyRow()},
		priceOf: priceOf,
	}
}

func emptyRow() Row {
	return Row{Quantity: 1, UnitPrice: decimal.Zero}
}

// Phase returns the current phase.
func (b *Builder) Phase() Phase {
	return b.phase
}

// Rows returns a copy of the current row list in display order.
func (b *Builder) Rows() []Row {
	out := make([]Row, len(b.rows))
	copy(out, b.rows)
	return out
}

// Contact returns the submitter details currently attached to the order.
func (b *Builder) Contact() Contact {
	return b.contact
}

// SetContact attaches submitter details. Allowed while editing only.
func (b *Builder) SetContact(c Contact) error {
	if b.phase != Editing {
		return &PhaseError{Op: "set contact", Phase: b.phase}
	}
	b.contact = c
	return nil
}

// AddRow appends an empty row with quantity 1. There is no upper bound on
// the number of rows.
func (b *Builder) AddRow() error {
	if b.phase != Editing {
		return &PhaseError{Op: "add row", Phase: b.phase}
	}
	b.rows = append(b.rows, emptyRow())
	return nil
}

// RemoveRow deletes the row at i. Removing the last remaining row or an
// out-of-range index is a silent no-op: the form always keeps at least one
// row so the total stays well-defined.
func (b *Builder) RemoveRow(i int) error {
	if b.phase != Editing {
		return &PhaseError{Op: "remove row", Phase: b.phase}
	}
	if len(b.rows) <= 1 || i < 0 || i >= len(b.rows) {
		return nil
	}
	b.rows = append(b.rows[:i], b.rows[i+1:]...)
	return nil
}

// SelectFlavour sets the flavour on row i and re-snapshots its unit price
// from the catalog at this instant. Selecting a name the catalog does not
// know snapshots a zero price rather than failing.
func (b *Builder) SelectFlavour(i int, name string) error {
	if b.phase != Editing {
		return &PhaseError{Op: "select flavour", Phase: b.phase}
	}
	if i < 0 || i >= len(b.rows) {
		return fmt.Errorf("row %d out of range", i)
	}
	b.rows[i].Flavour = name
	b.rows[i].UnitPrice = b.priceOf(name)
	return nil
}

// SetQuantity sets the quantity on row i, clamped to a minimum of 1.
func (b *Builder) SetQuantity(i, qty int) error {
	if b.phase != Editing {
		return &PhaseError{Op: "set quantity", Phase: b.phase}
	}
	if i < 0 || i >= len(b.rows) {
		return fmt.Errorf("row %d out of range", i)
	}
	if qty < 1 {
		qty = 1
	}
	b.rows[i].Quantity = qty
	return nil
}

// Total sums unit price × quantity over the rows that have a selection.
// It is recomputed from the rows on every call, never cached.
func (b *Builder) Total() decimal.Decimal {
	return computeTotal(b.rows)
}

func computeTotal(rows []Row) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		if r.Selected() {
			total = total.Add(r.Subtotal())
		}
	}
	return total
}

// Review validates the draft and, if it passes, transitions Editing →
// Reviewing and captures the preview snapshot. On validation failure the
// builder stays in Editing and the error lists every violated field.
func (b *Builder) Review() (*Preview, error) {
	if b.phase != Editing {
		return nil, &PhaseError{Op: "review", Phase: b.phase}
	}
	if err := Validate(b.rows, b.contact); err != nil {
		return nil, err
	}

	var items []PreviewItem
	for _, r := range b.rows {
		if !r.Selected() {
			continue
		}
		items = append(items, PreviewItem{
			Flavour:   r.Flavour,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
			Subtotal:  r.Subtotal(),
		})
	}
	b.preview = &Preview{
		Items:   items,
		Total:   computeTotal(b.rows),
		Contact: b.contact,
	}
	b.phase = Reviewing
	return b.preview, nil
}

// Preview returns the current snapshot, or nil outside the review flow.
func (b *Builder) Preview() *Preview {
	return b.preview
}

// Dismiss closes the preview without submitting: Reviewing → Editing. The
// snapshot is discarded and the row list is exactly as it was.
func (b *Builder) Dismiss() error {
	if b.phase != Reviewing {
		return &PhaseError{Op: "dismiss", Phase: b.phase}
	}
	b.preview = nil
	b.phase = Editing
	return nil
}

// Submit sends the previewed order through placer: Reviewing → Submitting →
// Succeeded or Failed. The phase guard makes a second confirm while one is
// in flight impossible, so placer is called at most once per confirm.
//
// On success the rows reset to a single empty row and the order ID is
// returned. On failure the rows and the preview survive untouched so the
// user can retry; the error is also retained for LastError.
func (b *Builder) Submit(ctx context.Context, placer OrderPlacer) (int64, error) {
	if b.phase != Reviewing {
		return 0, &PhaseError{Op: "submit", Phase: b.phase}
	}
	b.phase = Submitting

	var items []LineItem
	for _, it := range b.preview.Items {
		items = append(items, LineItem{
			ItemName: it.Flavour,
			Quantity: it.Quantity,
			Price:    it.UnitPrice,
		})
	}

	orderID, err := placer.PlaceOrder(ctx, b.preview.Contact.BusinessID, items)
	if err != nil {
		// No partial effects are assumed: the draft stays intact.
		b.phase = Failed
		b.lastErr = err
		return 0, err
	}

	b.orderID = orderID
	b.lastErr = nil
	b.preview = nil
	b.rows = []Row{emptyRow()}
	b.phase = Succeeded
	return orderID, nil
}

// OrderID returns the identifier of the last successfully placed order.
func (b *Builder) OrderID() int64 {
	return b.orderID
}

// LastError returns the failure of the most recent submission attempt.
func (b *Builder) LastError() error {
	return b.lastErr
}

// Acknowledge leaves a terminal phase. From Succeeded it returns to Editing
// with the fresh empty order; from Failed it returns to Reviewing with the
// preview intact so confirm can simply be clicked again.
func (b *Builder) Acknowledge() error {
	switch b.phase {
	case Succeeded:
		b.phase = Editing
	case Failed:
		b.phase = Reviewing
	default:
		return &PhaseError{Op: "acknowledge", Phase: b.phase}
	}
	return nil
}

// FormatAmount renders a money amount the way the storefront displays it:
// the Nepali rupee glyph followed by two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return "रु" + d.StringFixed(2)
}
