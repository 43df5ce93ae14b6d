package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theater-booking-platform/internal/models"
)

// enterCheckout drives the engine to the checkout step with a reserved
// seat and a delivery option picked.
func enterCheckout(t *testing.T, env *testEnv) State {
	t.Helper()
	enterWarenkorb(t, env)
	env.engine.Dispatch(SetDeliveryOption{OptionID: "do-digital"})
	state := env.engine.Dispatch(GoToNextStep{})
	require.Equal(t, StepCheckout, state.CurrentStep)
	return state
}

func testCustomer() CustomerInfo {
	return CustomerInfo{
		Email:           "besucher@example.com",
		Name:            "Maria Muster",
		PaymentMethodID: "pm-card",
	}
}

func TestEnginePlaceOrder(t *testing.T) {
	t.Run("successful placement advances to payment", func(t *testing.T) {
		env := newTestEnv(t)
		enterCheckout(t, env)

		order, err := env.engine.PlaceOrder(context.Background(), testCustomer())
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.NotEmpty(t, order.OrderNumber)

		snapshot := env.engine.Snapshot()
		assert.Equal(t, StepZahlung, snapshot.CurrentStep)
		assert.Equal(t, order.OrderNumber, snapshot.PlacedOrderNumber)
		assert.Nil(t, snapshot.Reservation)

		// The hold was consumed by the order, not given back.
		env.engine.asyncEffects.Wait()
		_, _, releases := env.reservations.counts()
		assert.Zero(t, releases)
	})

	t.Run("only possible at checkout", func(t *testing.T) {
		env := newTestEnv(t)
		enterWarenkorb(t, env)

		_, err := env.engine.PlaceOrder(context.Background(), testCustomer())
		var validation *models.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "step", validation.Field)
	})

	t.Run("tickets flow requires an active reservation", func(t *testing.T) {
		env := newTestEnv(t)
		enterCheckout(t, env)
		env.engine.Dispatch(ReservationExpired{})
		// Expiry forced the flow back to seat selection; pin the step back
		// to checkout to hit the reservation guard in isolation.
		env.engine.mu.Lock()
		env.engine.state.CurrentStep = StepCheckout
		env.engine.mu.Unlock()

		_, err := env.engine.PlaceOrder(context.Background(), testCustomer())
		assert.ErrorIs(t, err, models.ErrNoActiveReservation)
	})

	t.Run("seat conflict surfaces with the conflicting seats", func(t *testing.T) {
		env := newTestEnv(t)
		enterCheckout(t, env)
		env.mockOrders.SetSeatConflict("seat-A1", "booked")

		_, err := env.engine.PlaceOrder(context.Background(), testCustomer())

		var conflict *models.SeatConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, []string{"seat-A1"}, conflict.BookedSeats)

		// The failure reaches the user as a notification and the state
		// stays at checkout.
		snapshot := env.engine.Snapshot()
		assert.Equal(t, StepCheckout, snapshot.CurrentStep)
		var notified bool
		for _, n := range snapshot.Notifications {
			if n.Kind == models.NotifyError {
				notified = true
			}
		}
		assert.True(t, notified)
	})

	t.Run("voucher flow places without a reservation", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.engine.SelectShow(context.Background(), "show-faust")
		require.NoError(t, err)
		env.engine.Dispatch(SwitchFlowMode{Mode: FlowVouchers})
		env.engine.Dispatch(ReferenceDataLoaded{Bundle: testBundle()})
		env.engine.Dispatch(AddLineItems{Items: []models.LineItem{
			{ID: "v1", Type: models.LineItemCrossSelling, Name: "Gutschein 50 €", Quantity: 1, TotalCents: 5000, Currency: "EUR"},
		}})
		state := env.engine.Dispatch(GoToNextStep{})
		require.Equal(t, StepCheckout, state.CurrentStep)

		order, err := env.engine.PlaceOrder(context.Background(), testCustomer())
		require.NoError(t, err)
		assert.NotEmpty(t, order.OrderNumber)
		assert.Equal(t, StepZahlung, env.engine.Snapshot().CurrentStep)
	})
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"seat mismatch", &models.SecurityError{Code: models.SecSeatMismatch}, "seat selection has changed"},
		{"amount mismatch", &models.SecurityError{Code: models.SecAmountMismatch}, "total has changed"},
		{"already used", &models.SecurityError{Code: models.SecAlreadyUsed}, "already submitted"},
		{"session", &models.SecurityError{Code: models.SecSessionMismatch}, "session could not be verified"},
		{"seat conflict", &models.SeatConflictError{BookedSeats: []string{"s1"}}, "no longer available"},
		{"validation", &models.ValidationError{Field: "email", Message: "bad"}, "check your input"},
		{"network", &models.NetworkError{Op: "placeOrder", Err: assert.AnError}, "could not reach"},
		{"unknown", assert.AnError, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, UserMessage(tt.err), tt.contains)
		})
	}
}

func TestAdviseRetry(t *testing.T) {
	t.Run("nonce and intent failures need a fresh intent", func(t *testing.T) {
		advice := AdviseRetry(&models.SecurityError{Code: models.SecInvalidNonce})
		assert.True(t, advice.NeedsFreshIntent)
		assert.False(t, advice.NeedsSeatReselection)
		assert.True(t, advice.Retryable)
	})

	t.Run("seat mismatch needs reselection", func(t *testing.T) {
		advice := AdviseRetry(&models.SecurityError{Code: models.SecSeatMismatch})
		assert.True(t, advice.NeedsFreshIntent)
		assert.True(t, advice.NeedsSeatReselection)
	})

	t.Run("seat conflict needs both", func(t *testing.T) {
		advice := AdviseRetry(&models.SeatConflictError{})
		assert.True(t, advice.NeedsFreshIntent)
		assert.True(t, advice.NeedsSeatReselection)
	})

	t.Run("validation errors are plainly retryable", func(t *testing.T) {
		advice := AdviseRetry(&models.ValidationError{Field: "email"})
		assert.False(t, advice.NeedsFreshIntent)
		assert.True(t, advice.Retryable)
	})
}
