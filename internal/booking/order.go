package booking

import (
	"context"
	"errors"
	"time"

	"theater-booking-platform/internal/models"
)

// CustomerInfo is what checkout collects before placement.
type CustomerInfo struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	PaymentMethodID string `json:"payment_method_id"`
}

// PlaceOrder runs the two-step intent/placement flow against the order API
// and records the outcome in the state. Unlike the coupon reconciliation,
// placement failures are surfaced to the user together with the retry
// semantics the error taxonomy dictates.
func (e *Engine) PlaceOrder(ctx context.Context, customer CustomerInfo) (*models.PlacedOrder, error) {
	snapshot := e.Snapshot()
	if snapshot.CurrentStep != StepCheckout {
		return nil, &models.ValidationError{Field: "step", Message: "order placement is only possible at checkout"}
	}
	if snapshot.FlowMode == FlowTickets && snapshot.Reservation == nil {
		return nil, models.ErrNoActiveReservation
	}
	if snapshot.Basket.Breakdown == nil {
		return nil, &models.ValidationError{Field: "basket", Message: "pricing is not available yet"}
	}
	if snapshot.Basket.HasDuplicateCoupons() {
		return nil, models.ErrDuplicateCoupon
	}

	request := &models.OrderRequest{
		SessionID:          snapshot.SessionID,
		LineItems:          models.CloneLineItems(snapshot.Basket.LineItems),
		ExpectedTotalCents: snapshot.Basket.Breakdown.TotalCents,
		PaymentMethodID:    customer.PaymentMethodID,
		CustomerEmail:      customer.Email,
		CustomerName:       customer.Name,
	}
	if snapshot.SelectedShow != nil {
		request.ShowID = snapshot.SelectedShow.ID
	}
	if snapshot.Delivery != nil {
		request.DeliveryOptionID = snapshot.Delivery.ID
	}
	if snapshot.Reservation != nil {
		for _, record := range snapshot.Reservation.Records {
			request.SeatIDs = append(request.SeatIDs, record.SeatID)
		}
	}

	intent, err := e.orders.CreateIntent(ctx, request)
	if err != nil {
		e.notifyOrderFailure(err)
		return nil, err
	}

	placed, err := e.orders.PlaceOrder(ctx, intent.IntentID, intent.Nonce, request)
	if err != nil {
		e.notifyOrderFailure(err)
		return nil, err
	}

	e.Dispatch(OrderPlaced{Order: placed})
	return placed, nil
}

// notifyOrderFailure maps a placement error to a localized, human-readable
// notification. Raw error codes never reach the user.
func (e *Engine) notifyOrderFailure(err error) {
	e.Dispatch(Notify{Kind: models.NotifyError, Message: UserMessage(err)})
}

// UserMessage translates any error of the order taxonomy into the message
// shown to the user.
func UserMessage(err error) string {
	var security *models.SecurityError
	if errors.As(err, &security) {
		switch security.Code {
		case models.SecSeatMismatch:
			return "Your seat selection has changed. Please review your seats and try again."
		case models.SecAmountMismatch:
			return "The order total has changed. Please review your basket and try again."
		case models.SecAlreadyUsed:
			return "This order was already submitted. Please start a new attempt."
		case models.SecSessionRequired, models.SecSessionMismatch:
			return "Your session could not be verified. Please reload the page and try again."
		default:
			return "Your order could not be verified. Please try again."
		}
	}

	var conflict *models.SeatConflictError
	if errors.As(err, &conflict) {
		return "Some of your seats are no longer available. Please select different seats."
	}

	var validation *models.ValidationError
	if errors.As(err, &validation) {
		return "Some of the submitted data is invalid. Please check your input and try again."
	}

	var network *models.NetworkError
	if errors.As(err, &network) {
		return "We could not reach the booking service. Please check your connection and try again."
	}

	return "Something went wrong while placing your order. Please try again."
}

// RetryAdvice describes what a failed placement requires before retrying.
type RetryAdvice struct {
	NeedsFreshIntent     bool `json:"needs_fresh_intent"`
	NeedsSeatReselection bool `json:"needs_seat_reselection"`
	Retryable            bool `json:"retryable"`
}

// AdviseRetry derives the retry semantics for a placement failure.
func AdviseRetry(err error) RetryAdvice {
	var security *models.SecurityError
	if errors.As(err, &security) {
		return RetryAdvice{
			NeedsFreshIntent:     security.NeedsFreshIntent(),
			NeedsSeatReselection: security.NeedsSeatReselection(),
			Retryable:            true,
		}
	}

	var conflict *models.SeatConflictError
	if errors.As(err, &conflict) {
		return RetryAdvice{NeedsFreshIntent: true, NeedsSeatReselection: true, Retryable: true}
	}

	var validation *models.ValidationError
	if errors.As(err, &validation) {
		return RetryAdvice{Retryable: true}
	}

	return RetryAdvice{NeedsFreshIntent: true, Retryable: true}
}

// ExpiresIn is a helper for handlers presenting the countdown.
func (s *State) ExpiresIn(now time.Time) time.Duration {
	if s.Reservation == nil {
		return 0
	}
	return s.Reservation.TimeRemaining(now)
}
