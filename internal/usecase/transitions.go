package usecase

import (
	"context"
	"fmt"

	"surfcamp-booking/internal/data/entity"
	"surfcamp-booking/internal/data/repository"

	"go.uber.org/zap"
)

// TransitionOutcome reports what an applied event changed and whether the
// event confirms a booking that still needs an external reservation.
type TransitionOutcome struct {
	PaymentStatus    entity.PaymentStatus
	OrderStatus      entity.OrderStatus
	NeedsReservation bool
}

type transitionFunc func(t *TransitionEngine, ctx context.Context, payment *entity.Payment, order *entity.Order, ids ResolvedIDs, out *TransitionOutcome) error

// TransitionEngine applies one webhook event to the matched payment and its
// order. Handlers are registered per event kind; an unregistered kind still
// gets its identifiers merged but changes no status. All status changes are
// monotonic: an event arriving out of order can never move a record
// backwards along its lifecycle.
type TransitionEngine struct {
	repo     *repository.Repository
	log      *zap.Logger
	handlers map[entity.EventKind]transitionFunc
}

func NewTransitionEngine(repo *repository.Repository, log *zap.Logger) *TransitionEngine {
	t := &TransitionEngine{
		repo: repo,
		log:  log.With(zap.String("component", "transitions")),
	}

	t.handlers = map[entity.EventKind]transitionFunc{
		entity.EventPaymentCreated:   (*TransitionEngine).onPaymentCreated,
		entity.EventPaymentUpdated:   (*TransitionEngine).onPaymentUpdated,
		entity.EventPaymentCompleted: (*TransitionEngine).onPaymentCompleted,
		entity.EventPaymentFailed:    (*TransitionEngine).onPaymentFailed,
		entity.EventBookingCreated:   (*TransitionEngine).onBookingConfirmed,
		entity.EventBookingUpdated:   (*TransitionEngine).onBookingConfirmed,
		entity.EventTripConfirmed:    (*TransitionEngine).onBookingConfirmed,
		entity.EventPartialRefund:    (*TransitionEngine).onPartialRefund,
	}

	return t
}

func (t *TransitionEngine) Apply(ctx context.Context, kind entity.EventKind, payment *entity.Payment, order *entity.Order, ids ResolvedIDs) (*TransitionOutcome, error) {
	out := &TransitionOutcome{
		PaymentStatus: payment.Status,
		OrderStatus:   order.Status,
	}

	if delta := bagDelta(ids); len(delta) > 0 {
		if err := t.repo.Payment.MergeProviderData(ctx, payment.ID, delta); err != nil {
			return nil, err
		}
	}

	if ids.OrderID != "" && payment.ProviderOrderID == nil {
		if err := t.repo.Payment.SetProviderOrderID(ctx, payment.ID, ids.OrderID); err != nil {
			return nil, err
		}
	}

	handler, ok := t.handlers[kind]
	if !ok {
		t.log.Info("No transition registered for event kind, identifiers recorded only",
			zap.String("event_type", string(kind)),
			zap.String("payment_id", payment.ID),
		)
		return out, nil
	}

	if err := handler(t, ctx, payment, order, ids, out); err != nil {
		return nil, fmt.Errorf("apply %s to payment %s: %w", string(kind), payment.ID, err)
	}

	return out, nil
}

// bagDelta collects the identifiers worth remembering from this event. The
// merge keeps previously stored values on key collision, so replays and
// out-of-order events cannot erase what an earlier event recorded.
func bagDelta(ids ResolvedIDs) map[string]any {
	delta := make(map[string]any)
	if ids.TripID != "" {
		delta[entity.BagTripID] = ids.TripID
	}
	if ids.MetadataOrderID != "" {
		delta[entity.BagMetadataOrderID] = ids.MetadataOrderID
	}
	if ids.OrderID != "" {
		delta[entity.BagProviderOrderID] = ids.OrderID
	}
	if ids.ProviderPaymentID != "" {
		delta[entity.BagProviderPaymentID] = ids.ProviderPaymentID
	}
	if ids.PaymentURL != "" {
		delta[entity.BagPaymentURL] = ids.PaymentURL
	}
	if len(ids.Metadata) > 0 {
		delta[entity.BagMetadata] = ids.Metadata
	}
	return delta
}

func (t *TransitionEngine) promotePayment(ctx context.Context, payment *entity.Payment, next entity.PaymentStatus, out *TransitionOutcome) error {
	if !payment.Status.CanAdvanceTo(next) {
		t.log.Debug("Payment status promotion skipped",
			zap.String("payment_id", payment.ID),
			zap.String("current", string(payment.Status)),
			zap.String("candidate", string(next)),
		)
		return nil
	}
	if err := t.repo.Payment.UpdateStatus(ctx, payment.ID, next); err != nil {
		return err
	}
	out.PaymentStatus = next
	return nil
}

func (t *TransitionEngine) promoteOrder(ctx context.Context, order *entity.Order, next entity.OrderStatus, out *TransitionOutcome) error {
	if !order.Status.CanAdvanceTo(next) {
		t.log.Debug("Order status promotion skipped",
			zap.String("order_id", order.ID),
			zap.String("current", string(order.Status)),
			zap.String("candidate", string(next)),
		)
		return nil
	}
	if err := t.repo.Order.UpdateStatus(ctx, order.ID, next); err != nil {
		return err
	}
	out.OrderStatus = next
	return nil
}

func (t *TransitionEngine) onPaymentCreated(ctx context.Context, payment *entity.Payment, order *entity.Order, ids ResolvedIDs, out *TransitionOutcome) error {
	// Identifier capture only. The payment link exists but nothing has been
	// paid yet.
	return nil
}

// onPaymentUpdated folds the provider's own status vocabulary into ours.
func (t *TransitionEngine) onPaymentUpdated(ctx context.Context, payment *entity.Payment, order *entity.Order, ids ResolvedIDs, out *TransitionOutcome) error {
	switch ids.Status {
	case "processed", "paid", "completed", "success":
		if err := t.promotePayment(ctx, payment, entity.PaymentStatusCompleted, out); err != nil {
			return err
		}
		return t.promoteOrder(ctx, order, entity.OrderStatusPaid, out)
	case "failed", "expired", "canceled", "cancelled":
		if err := t.promotePayment(ctx, payment, entity.PaymentStatusFailed, out); err != nil {
			return err
		}
		return t.promoteOrder(ctx, order, entity.OrderStatusCancelled, out)
	case "refunded":
		return t.promoteOrder(ctx, order, entity.OrderStatusRefunded, out)
	}

	t.log.Info("Unrecognized provider payment status, no transition",
		zap.String("payment_id", payment.ID),
		zap.String("provider_status", ids.Status),
	)
	return nil
}

func (t *TransitionEngine) onPaymentCompleted(ctx context.Context, payment *entity.Payment, order *entity.Order, ids ResolvedIDs, out *TransitionOutcome) error {
	if err := t.promotePayment(ctx, payment, entity.PaymentStatusCompleted, out); err != nil {
		return err
	}
	return t.promoteOrder(ctx, order, entity.OrderStatusPaid, out)
}

func (t *TransitionEngine) onPaymentFailed(ctx context.Context, payment *entity.Payment, order *entity.Order, ids ResolvedIDs, out *TransitionOutcome) error {
	if err := t.promotePayment(ctx, payment, entity.PaymentStatusFailed, out); err != nil {
		return err
	}
	return t.promoteOrder(ctx, order, entity.OrderStatusCancelled, out)
}

func (t *TransitionEngine) onBookingConfirmed(ctx context.Context, payment *entity.Payment, order *entity.Order, ids ResolvedIDs, out *TransitionOutcome) error {
	if err := t.promotePayment(ctx, payment, entity.PaymentStatusBookingCreated, out); err != nil {
		return err
	}
	if err := t.promoteOrder(ctx, order, entity.OrderStatusBookingCreated, out); err != nil {
		return err
	}

	// A booking confirmation drives reservation creation unless the order
	// already carries a committed reservation.
	out.NeedsReservation = order.Reservation().State != entity.ReservationCommitted
	return nil
}

func (t *TransitionEngine) onPartialRefund(ctx context.Context, payment *entity.Payment, order *entity.Order, ids ResolvedIDs, out *TransitionOutcome) error {
	// Recorded in the event log and the correlation bag; amounts stay as they
	// are until an operator reconciles the partial refund by hand.
	t.log.Info("Partial refund recorded",
		zap.String("payment_id", payment.ID),
		zap.String("order_id", order.ID),
	)
	return nil
}
