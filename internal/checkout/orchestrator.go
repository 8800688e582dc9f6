// Package checkout orchestrates order submission: precondition gating,
// payment-method pricing estimates, and the call to the backend that creates
// the order and returns the external payment page.
package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront/internal/broker"
	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/session"
	"storefront/internal/storage"
	"storefront/internal/upstream"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State of one session's checkout flow.
type State string

const (
	StateIdle        State = "idle"
	StateSubmitting  State = "submitting"
	StateRedirecting State = "redirecting"
	StateFailed      State = "failed"
)

// Precondition failures, checked before any network call.
var (
	ErrEmptyCart        = errors.New("checkout: cart is empty")
	ErrNotAuthenticated = errors.New("checkout: not authenticated")
	ErrSessionExpired   = errors.New("checkout: session expired")
	ErrInvalidMethod    = errors.New("checkout: unknown payment method")
	ErrAlreadyInFlight  = errors.New("checkout: submission already in progress")
)

// How long the duplicate-submit guard key lives when a crash prevents
// explicit release.
const inFlightTTL = 30 * time.Second

// SubmitError wraps an upstream failure with the user-facing message derived
// from it. The cart is left untouched and the flow may be retried.
type SubmitError struct {
	Err     error
	Message string
}

func (e *SubmitError) Error() string { return e.Err.Error() }

func (e *SubmitError) Unwrap() error { return e.Err }

// Result of a successful submission. PaymentURL must be opened in a new
// browsing context; RedirectTo is where the current context navigates.
type Result struct {
	PaymentURL string `json:"payment_url"`
	RedirectTo string `json:"redirect_to"`
}

// Estimate is the display-only pricing preview per payment method. The
// backend computes the authoritative charge; nothing here is validated
// against it.
type Estimate struct {
	Method         string `json:"method"`
	Total          int64  `json:"total"`
	Display        int64  `json:"display_total"`
	DiscountRate   int    `json:"discount_percent,omitempty"`
	Installments   int    `json:"installments,omitempty"`
	PerInstallment int64  `json:"per_installment,omitempty"`
}

// Orchestrator drives checkout submissions for all sessions.
type Orchestrator struct {
	client       *upstream.Client
	store        storage.Store
	publisher    *broker.EventPublisher
	accountRoute string
	discountPct  int
	installments int
	logger       *zap.Logger

	mu     sync.Mutex
	states map[string]State
}

// NewOrchestrator creates a checkout orchestrator.
func NewOrchestrator(client *upstream.Client, store storage.Store, publisher *broker.EventPublisher, discountPct, installments int, accountRoute string) *Orchestrator {
	return &Orchestrator{
		client:       client,
		store:        store,
		publisher:    publisher,
		accountRoute: accountRoute,
		discountPct:  discountPct,
		installments: installments,
		logger:       util.GetLogger(),
		states:       make(map[string]State),
	}
}

// StateOf returns the session's current checkout state.
func (o *Orchestrator) StateOf(sid string) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.states[sid]; ok {
		return s
	}
	return StateIdle
}

// Estimate computes the displayed total for the chosen payment method:
// pix/boleto shows the configured discount, credit card the full total with
// installment framing.
func (o *Orchestrator) Estimate(eng *cart.Engine, method string) (*Estimate, error) {
	if !models.ValidPaymentMethod(method) {
		return nil, ErrInvalidMethod
	}

	total := eng.Total()
	est := &Estimate{Method: method, Total: total, Display: total}

	switch method {
	case models.PaymentMethodPixBoleto:
		est.DiscountRate = o.discountPct
		est.Display = total - total*int64(o.discountPct)/100
	case models.PaymentMethodCreditCard:
		est.Installments = o.installments
		if o.installments > 0 {
			est.PerInstallment = total / int64(o.installments)
		}
	}
	return est, nil
}

// Submit runs the checkout state machine for one session:
// idle -> submitting -> {redirecting | failed}. On success the cart is
// cleared and the payment URL returned; on any failure the cart is untouched
// and the flow returns to failed, allowing retry.
func (o *Orchestrator) Submit(ctx context.Context, sid string, sess *session.Store, eng *cart.Engine, method string) (*Result, error) {
	ctx, span := util.StartSpan(ctx, "Checkout.Submit")
	defer span.End()

	util.CheckoutAttemptsTotal.Inc()

	if !models.ValidPaymentMethod(method) {
		util.CheckoutFailedTotal.WithLabelValues("invalid_method").Inc()
		return nil, ErrInvalidMethod
	}
	if eng.Count() == 0 {
		util.CheckoutFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}
	user, ok := sess.User()
	if !ok {
		util.CheckoutFailedTotal.WithLabelValues("unauthenticated").Inc()
		return nil, ErrNotAuthenticated
	}
	token := sess.Token()
	if token == "" {
		// Authenticated-looking session without a credential: treat as
		// expired, the caller sends the user back to login.
		util.CheckoutFailedTotal.WithLabelValues("session_expired").Inc()
		return nil, ErrSessionExpired
	}

	if err := o.begin(ctx, sid); err != nil {
		util.CheckoutFailedTotal.WithLabelValues("duplicate_submit").Inc()
		return nil, err
	}
	defer o.release(ctx, sid)

	// One idempotency key per submission attempt; the backend deduplicates.
	key := uuid.New().String()
	req := upstream.CheckoutRequest{
		Cart:           eng.Lines(),
		UserID:         user.ID,
		PaymentMethod:  method,
		IdempotencyKey: key,
	}

	o.logger.Info("Submitting checkout",
		zap.String("session_id", sid),
		zap.Int64("user_id", user.ID),
		zap.String("payment_method", method),
		zap.Int("lines", len(req.Cart)),
		zap.String("idempotency_key", key))

	start := time.Now()
	resp, err := o.client.Checkout(ctx, token, req)
	util.CheckoutLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, o.fail(ctx, sid, err)
	}
	if resp.PaymentURL == "" {
		// A 2xx without a payment URL is still a failure for the user.
		return nil, o.fail(ctx, sid, &upstream.APIError{Status: 502, Message: "missing paymentUrl"})
	}

	total := eng.Total()
	eng.Clear(ctx)
	o.setState(sid, StateRedirecting)
	util.CheckoutSucceededTotal.Inc()

	o.logger.Info("Checkout succeeded",
		zap.String("session_id", sid),
		zap.Int64("user_id", user.ID))

	if err := o.publisher.PublishCheckoutSucceeded(ctx, &models.CheckoutSucceededEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCheckoutSucceeded,
			Timestamp: time.Now(),
		},
		SessionID:     sid,
		UserID:        user.ID,
		Total:         total,
		PaymentMethod: method,
	}); err != nil {
		o.logger.Error("Failed to publish checkout event", zap.Error(err))
	}

	o.setState(sid, StateIdle)
	return &Result{PaymentURL: resp.PaymentURL, RedirectTo: o.accountRoute}, nil
}

// begin transitions the session into submitting, refusing concurrent
// submissions. The storage guard covers multiple service replicas sharing
// one Redis.
func (o *Orchestrator) begin(ctx context.Context, sid string) error {
	o.mu.Lock()
	if o.states[sid] == StateSubmitting {
		o.mu.Unlock()
		return ErrAlreadyInFlight
	}
	o.states[sid] = StateSubmitting
	o.mu.Unlock()

	ok, err := o.store.SetNX(ctx, storage.CheckoutGuardKey(sid), "1", inFlightTTL)
	if err != nil {
		o.logger.Warn("Checkout guard unavailable", zap.Error(err))
		return nil
	}
	if !ok {
		o.setState(sid, StateFailed)
		return ErrAlreadyInFlight
	}
	return nil
}

func (o *Orchestrator) release(ctx context.Context, sid string) {
	_ = o.store.Del(ctx, storage.CheckoutGuardKey(sid))
}

func (o *Orchestrator) setState(sid string, s State) {
	o.mu.Lock()
	o.states[sid] = s
	o.mu.Unlock()
}

// fail records the failure, publishes the event and wraps the upstream error
// with its user-facing message. The cart is deliberately untouched.
func (o *Orchestrator) fail(ctx context.Context, sid string, err error) error {
	o.setState(sid, StateFailed)
	util.CheckoutFailedTotal.WithLabelValues("upstream").Inc()

	message := upstream.FriendlyMessage(err)
	o.logger.Warn("Checkout failed",
		zap.String("session_id", sid),
		zap.Error(err))

	if pubErr := o.publisher.PublishCheckoutFailed(ctx, &models.CheckoutFailedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCheckoutFailed,
			Timestamp: time.Now(),
		},
		SessionID: sid,
		Reason:    err.Error(),
	}); pubErr != nil {
		o.logger.Error("Failed to publish checkout event", zap.Error(pubErr))
	}

	return &SubmitError{Err: err, Message: message}
}
