// Package checkout drives a shopper from a filled cart to a placed order
// through the Shipping, Payment and Review stages.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/storefront-cart/internal/shop/core/cart"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/checkout/journal"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/domain/entity"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/ports"
)

var tracer = otel.Tracer("github.com/jcmexdev/storefront-cart/internal/shop/core/checkout")

// Cart is what the flow needs from the cart store.
type Cart interface {
	Snapshot() cart.Snapshot
	ClearOrdered(ctx context.Context, ordered cart.Snapshot) error
}

// Session is a copy of the flow's state at one point in time.
type Session struct {
	ID              string
	Stage           Stage
	ShippingAddress entity.ShippingAddress
	PaymentMethod   entity.PaymentMethod
	OrderID         string
}

type Option func(*Flow)

// WithJournal records every transition of the session in repo.
func WithJournal(repo journal.Repository) Option {
	return func(f *Flow) { f.journal = repo }
}

// WithSessionID overrides the generated session id, which is also the
// idempotency key of the submitted order.
func WithSessionID(id string) Option {
	return func(f *Flow) {
		if id != "" {
			f.session.ID = id
		}
	}
}

type Flow struct {
	cart      Cart
	submitter ports.OrderSubmitter
	journal   journal.Repository

	mu         sync.Mutex
	session    Session
	submitting bool
	closed     bool
}

// NewFlow starts a fresh session in the Shipping stage with PayPal selected.
func NewFlow(ctx context.Context, c Cart, submitter ports.OrderSubmitter, opts ...Option) *Flow {
	f := &Flow{
		cart:      c,
		submitter: submitter,
		session: Session{
			ID:            uuid.NewString(),
			Stage:         StageShipping,
			PaymentMethod: entity.PaymentPayPal,
		},
	}
	for _, opt := range opts {
		opt(f)
	}

	slog.InfoContext(ctx, "checkout started", "session_id", f.session.ID)
	f.record(ctx, journal.EventStarted, StageShipping, "", nil)
	return f
}

func (f *Flow) Stage() Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session.Stage
}

func (f *Flow) Session() Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// OrderID is empty until PlaceOrder succeeds.
func (f *Flow) OrderID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session.OrderID
}

// SubmitShipping stores addr as given and advances to Payment. An address with
// any blank field is rejected and the previous one is kept.
func (f *Flow) SubmitShipping(ctx context.Context, addr entity.ShippingAddress) error {
	if !addr.Complete() {
		return ErrIncompleteAddress
	}

	f.mu.Lock()
	if err := f.mutableLocked(StageShipping); err != nil {
		f.mu.Unlock()
		return err
	}
	f.session.ShippingAddress = addr
	f.session.Stage = StagePayment
	f.mu.Unlock()

	f.record(ctx, journal.EventStageChanged, StagePayment, "", nil)
	return nil
}

// SelectPaymentMethod changes the selection without leaving the Payment stage.
func (f *Flow) SelectPaymentMethod(method entity.PaymentMethod) error {
	if !method.Valid() {
		return ErrInvalidPaymentMethod
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(StagePayment); err != nil {
		return err
	}
	f.session.PaymentMethod = method
	return nil
}

// ConfirmPayment advances to Review. An empty method keeps the current selection.
func (f *Flow) ConfirmPayment(ctx context.Context, method entity.PaymentMethod) error {
	if method != "" && !method.Valid() {
		return ErrInvalidPaymentMethod
	}

	f.mu.Lock()
	if err := f.mutableLocked(StagePayment); err != nil {
		f.mu.Unlock()
		return err
	}
	if method != "" {
		f.session.PaymentMethod = method
	}
	f.session.Stage = StageReview
	f.mu.Unlock()

	f.record(ctx, journal.EventStageChanged, StageReview, "", nil)
	return nil
}

// Back returns to the previous stage, keeping everything entered so far.
func (f *Flow) Back(ctx context.Context) error {
	f.mu.Lock()
	if err := f.mutableLocked(f.session.Stage); err != nil {
		f.mu.Unlock()
		return err
	}
	if f.session.Stage == StageShipping {
		f.mu.Unlock()
		return ErrNoPreviousStage
	}
	f.session.Stage--
	stage := f.session.Stage
	f.mu.Unlock()

	f.record(ctx, journal.EventStageChanged, stage, "", nil)
	return nil
}

// PlaceOrder submits the current cart with a total computed now. On success the
// ordered lines leave the cart and the session closes; on failure the session
// stays in Review with the cart untouched and nothing is retried.
func (f *Flow) PlaceOrder(ctx context.Context) (string, error) {
	f.mu.Lock()
	if err := f.mutableLocked(StageReview); err != nil {
		f.mu.Unlock()
		return "", err
	}

	snap := f.cart.Snapshot()
	if len(snap.Items) == 0 {
		f.mu.Unlock()
		return "", ErrEmptyCart
	}

	req := buildRequest(f.session, snap)
	f.submitting = true
	sessionID := f.session.ID
	f.mu.Unlock()

	ctx, span := tracer.Start(ctx, "checkout.PlaceOrder", trace.WithAttributes(
		attribute.String("checkout.session_id", sessionID),
		attribute.Int("order.items", len(req.Items)),
		attribute.String("order.total", req.TotalPrice.StringFixed(2)),
		attribute.String("order.payment_method", string(req.PaymentMethod)),
	))
	defer span.End()

	f.record(ctx, journal.EventSubmitting, StageReview, requestPayload(req), nil)
	slog.InfoContext(ctx, "submitting order",
		"session_id", sessionID, "items", len(req.Items), "total", req.TotalPrice.StringFixed(2))

	orderID, err := f.submitter.SubmitOrder(ctx, req)
	if err != nil {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()

		span.RecordError(err)
		span.SetStatus(codes.Error, "order submission failed")
		slog.ErrorContext(ctx, "order submission failed", "session_id", sessionID, "error", err)
		f.record(ctx, journal.EventFailed, StageReview, "", []string{err.Error()})
		return "", fmt.Errorf("checkout: place order: %w", err)
	}

	f.mu.Lock()
	f.submitting = false
	f.closed = true
	f.session.OrderID = orderID
	f.mu.Unlock()

	// The order exists server-side at this point; a failed clear does not undo it.
	if err := f.cart.ClearOrdered(ctx, snap); err != nil {
		slog.ErrorContext(ctx, "cart not cleared after order", "session_id", sessionID, "order_id", orderID, "error", err)
	}

	span.SetAttributes(attribute.String("order.id", orderID))
	slog.InfoContext(ctx, "order placed", "session_id", sessionID, "order_id", orderID)
	f.record(ctx, journal.EventPlaced, StageReview, orderID, nil)
	return orderID, nil
}

// mutableLocked checks that the session accepts a transition from want.
func (f *Flow) mutableLocked(want Stage) error {
	switch {
	case f.closed:
		return ErrSessionClosed
	case f.submitting:
		return ErrSubmissionInFlight
	case f.session.Stage != want:
		return fmt.Errorf("checkout: in %s, need %s: %w", f.session.Stage, want, ErrWrongStage)
	}
	return nil
}

// buildRequest copies everything it needs so the request shares no memory with
// the cart or the session.
func buildRequest(s Session, snap cart.Snapshot) *entity.OrderRequest {
	items := make([]entity.OrderItem, 0, len(snap.Items))
	for _, e := range slices.Clone(snap.Items) {
		items = append(items, entity.OrderItem{
			ProductID: e.ProductID,
			Name:      e.Name,
			Quantity:  e.Quantity,
			ImageRef:  e.ImageRef,
			UnitPrice: e.UnitPrice,
		})
	}
	return &entity.OrderRequest{
		Items:           items,
		ShippingAddress: s.ShippingAddress,
		PaymentMethod:   s.PaymentMethod,
		TotalPrice:      snap.Breakdown.TotalPrice,
		IdempotencyKey:  s.ID,
	}
}

func requestPayload(req *entity.OrderRequest) string {
	b, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return string(b)
}

// record appends to the journal when one is configured. Journal failures are
// logged and never fail the checkout.
func (f *Flow) record(ctx context.Context, event journal.Event, stage Stage, payload string, errs []string) {
	if f.journal == nil {
		return
	}
	entry := journal.NewEntry(ctx, f.session.ID, event, stage.String(), payload, errs)
	if err := f.journal.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "failed to write checkout journal", "session_id", entry.SessionID, "event", event, "error", err)
	}
}
