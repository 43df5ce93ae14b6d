package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theater-booking-platform/internal/models"
)

func testShow() *models.Show {
	return &models.Show{
		ID:       "show-1",
		Slug:     "faust-derniere",
		SeasonID: "season-2026",
		Title:    "Faust I",
		SeatGroups: []models.SeatGroup{
			{
				ID: "sg-parkett",
				Seats: []models.Seat{
					{ID: "seat-A1", SeatNumber: "A1", Row: "A"},
					{ID: "seat-A2", SeatNumber: "A2", Row: "A"},
				},
				PriceCategories: []models.PriceCategory{
					{ID: "pc-1", Name: "Kategorie 1", PriceCents: 4900, Currency: "EUR", VATRateBps: 700},
				},
			},
			{
				ID:            "sg-galerie",
				FreeSelection: true,
				PriceCategories: []models.PriceCategory{
					{ID: "pc-3", Name: "Kategorie 3", PriceCents: 2500, Currency: "EUR", VATRateBps: 700},
				},
			},
		},
	}
}

func testBundle() *models.SeasonBundle {
	return &models.SeasonBundle{
		SeasonID: "season-2026",
		DeliveryOptions: []models.DeliveryOption{
			{ID: "do-digital", Name: "print@home", FeeCents: 0, Digital: true},
			{ID: "do-post", Name: "Postversand", FeeCents: 390},
		},
		FeeConfig: models.OrganizerFeeConfig{FlatCents: 150, PercentBps: 250},
	}
}

func testReservation(expiresAt time.Time) *models.Reservation {
	return &models.Reservation{
		ShowID:    "show-1",
		ExpiresAt: expiresAt,
		CanExtend: true,
		Records: []models.ReservationRecord{
			{ID: "r1", ShowID: "show-1", SeatID: "seat-A1", PriceCategoryID: "pc-1"},
		},
	}
}

func ticketItem(id, seatNumber string) models.LineItem {
	return models.LineItem{
		ID: id, Type: models.LineItemTicket, Name: "Faust I – Kategorie 1",
		Quantity: 1, UnitPriceCents: 4900, TotalCents: 4900, Currency: "EUR",
		VATRateBps: 700, SeatID: "seat-" + seatNumber, SeatNumber: seatNumber,
		SeatGroupID: "sg-parkett", PriceCategoryID: "pc-1",
	}
}

// stateAtWarenkorb builds a state the way the flow actually reaches the
// basket step: show selected, reference data loaded, seats reserved.
func stateAtWarenkorb(now time.Time) State {
	s := NewState("session-1")
	s = Reduce(s, SelectShow{Show: testShow()})
	s = Reduce(s, ReferenceDataLoaded{Bundle: testBundle()})
	s = Reduce(s, ReservationCreated{Reservation: testReservation(now.Add(15 * time.Minute)), Now: now})
	s = Reduce(s, AddLineItems{Items: []models.LineItem{ticketItem("t1", "A1")}})
	s.CurrentStep = StepWarenkorb
	return s
}

func TestReduceSelectShow(t *testing.T) {
	t.Run("pins the show", func(t *testing.T) {
		s := Reduce(NewState("s"), SelectShow{Show: testShow()})
		require.NotNil(t, s.SelectedShow)
		assert.Equal(t, "show-1", s.SelectedShow.ID)
	})

	t.Run("switching to a different show clears basket and reservation", func(t *testing.T) {
		now := time.Now()
		s := stateAtWarenkorb(now)

		other := testShow()
		other.ID = "show-2"
		s = Reduce(s, SelectShow{Show: other})

		assert.Empty(t, s.Basket.LineItems)
		assert.Nil(t, s.Reservation)
		assert.Equal(t, "show-2", s.SelectedShow.ID)
	})

	t.Run("re-selecting the same show keeps everything", func(t *testing.T) {
		now := time.Now()
		s := stateAtWarenkorb(now)
		s = Reduce(s, SelectShow{Show: testShow()})

		assert.Len(t, s.Basket.LineItems, 1)
		assert.NotNil(t, s.Reservation)
	})
}

func TestReduceReferenceData(t *testing.T) {
	t.Run("backfills the breakdown for existing items", func(t *testing.T) {
		s := NewState("s")
		s = Reduce(s, AddLineItems{Items: []models.LineItem{ticketItem("t1", "A1")}})
		assert.Nil(t, s.Basket.Breakdown)

		s = Reduce(s, ReferenceDataLoaded{Bundle: testBundle()})
		require.NotNil(t, s.Basket.Breakdown)
		assert.Equal(t, int64(4900), s.Basket.Breakdown.SubtotalCents)
	})
}

func TestReduceBasketActions(t *testing.T) {
	t.Run("duplicate seat is skipped with a warning", func(t *testing.T) {
		s := NewState("s")
		s = Reduce(s, AddLineItems{Items: []models.LineItem{ticketItem("t1", "A1")}})
		s = Reduce(s, AddLineItems{Items: []models.LineItem{ticketItem("t2", "A1")}})

		assert.Len(t, s.Basket.LineItems, 1)
		require.Len(t, s.Notifications, 1)
		assert.Equal(t, models.NotifyWarning, s.Notifications[0].Kind)
	})

	t.Run("delivery option is resolved from reference data", func(t *testing.T) {
		s := Reduce(NewState("s"), ReferenceDataLoaded{Bundle: testBundle()})
		s = Reduce(s, SetDeliveryOption{OptionID: "do-post"})

		require.NotNil(t, s.Delivery)
		assert.Equal(t, int64(390), s.Delivery.FeeCents)
		assert.Equal(t, int64(390), s.Basket.Breakdown.DeliveryFeeCents)
	})

	t.Run("unknown delivery option clears the selection", func(t *testing.T) {
		s := Reduce(NewState("s"), ReferenceDataLoaded{Bundle: testBundle()})
		s = Reduce(s, SetDeliveryOption{OptionID: "do-post"})
		s = Reduce(s, SetDeliveryOption{OptionID: "do-gone"})

		assert.Nil(t, s.Delivery)
	})

	t.Run("reduce does not mutate its input", func(t *testing.T) {
		before := NewState("s")
		before = Reduce(before, AddLineItems{Items: []models.LineItem{ticketItem("t1", "A1")}})
		itemsBefore := len(before.Basket.LineItems)

		Reduce(before, AddLineItems{Items: []models.LineItem{ticketItem("t2", "A2")}})

		assert.Len(t, before.Basket.LineItems, itemsBefore)
	})
}

func TestReduceReservationLifecycle(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	t.Run("creation records the countdown", func(t *testing.T) {
		s := Reduce(NewState("s"), ReservationCreated{Reservation: testReservation(now.Add(15 * time.Minute)), Now: now})

		require.NotNil(t, s.Reservation)
		assert.Equal(t, 15*time.Minute, s.TimeRemaining)
	})

	t.Run("own extension burns the one-shot flag", func(t *testing.T) {
		s := Reduce(NewState("s"), ReservationCreated{Reservation: testReservation(now.Add(time.Minute)), Now: now})
		s = Reduce(s, ReservationExtended{NewExpiresAt: now.Add(10 * time.Minute), MarkUsed: true, Now: now})

		assert.Equal(t, 10*time.Minute, s.TimeRemaining)
		assert.False(t, s.Reservation.CanExtend)
	})

	t.Run("push-derived extension leaves the flag alone", func(t *testing.T) {
		s := Reduce(NewState("s"), ReservationCreated{Reservation: testReservation(now.Add(time.Minute)), Now: now})
		s = Reduce(s, ReservationExtended{NewExpiresAt: now.Add(10 * time.Minute), Now: now})

		assert.True(t, s.Reservation.CanExtend)
	})

	t.Run("tick counts down and expires at zero", func(t *testing.T) {
		s := Reduce(NewState("s"), ReservationCreated{Reservation: testReservation(now.Add(time.Minute)), Now: now})

		s = Reduce(s, Tick{Now: now.Add(30 * time.Second)})
		assert.Equal(t, 30*time.Second, s.TimeRemaining)

		s = Reduce(s, Tick{Now: now.Add(2 * time.Minute)})
		assert.Nil(t, s.Reservation)
	})
}

func TestReduceExpiry(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	expiredBasket := func() State {
		s := stateAtWarenkorb(now)
		s = Reduce(s, ReplaceLineItems{Items: []models.LineItem{
			ticketItem("t1", "A1"),
			{ID: "a1", Type: models.LineItemCrossSelling, TicketRef: "t1", TotalCents: 1200, Quantity: 1},
			{ID: "a2", Type: models.LineItemCrossSelling, TotalCents: 800, Quantity: 1},
			{ID: "k1", Type: models.LineItemCoupon, CouponCode: "FESTIVAL10", DiscountCents: 1000, TotalCents: -1000},
		}})
		return s
	}

	t.Run("clears reservation-derived basket content", func(t *testing.T) {
		s := Reduce(expiredBasket(), ReservationExpired{})

		assert.Nil(t, s.Reservation)
		require.Len(t, s.Basket.LineItems, 1)
		assert.Equal(t, "a2", s.Basket.LineItems[0].ID)
		assert.Empty(t, s.AppliedCoupons)
	})

	t.Run("forces the flow back to seat selection", func(t *testing.T) {
		s := Reduce(expiredBasket(), ReservationExpired{})
		assert.Equal(t, StepSitzplatz, s.CurrentStep)

		atCheckout := expiredBasket()
		atCheckout.CurrentStep = StepCheckout
		s = Reduce(atCheckout, ReservationExpired{})
		assert.Equal(t, StepSitzplatz, s.CurrentStep)
	})

	t.Run("warns the user exactly once", func(t *testing.T) {
		s := expiredBasket()
		notificationsBefore := len(s.Notifications)

		s = Reduce(s, ReservationExpired{})
		assert.Len(t, s.Notifications, notificationsBefore+1)

		// The racing second trigger is a no-op.
		again := Reduce(s, ReservationExpired{})
		assert.Equal(t, s.Notifications, again.Notifications)
		assert.Equal(t, s.CurrentStep, again.CurrentStep)
	})

	t.Run("does not touch the seat selection step", func(t *testing.T) {
		s := expiredBasket()
		s.CurrentStep = StepSitzplatz
		s = Reduce(s, ReservationExpired{})
		assert.Equal(t, StepSitzplatz, s.CurrentStep)
	})
}

func TestReduceCoupons(t *testing.T) {
	coupon := models.Coupon{Code: "FESTIVAL10", DiscountCents: 1000, Description: "10 € Festivalrabatt"}

	t.Run("apply adds a negative line item and the code", func(t *testing.T) {
		now := time.Now()
		s := Reduce(stateAtWarenkorb(now), ApplyCoupon{Coupon: coupon})

		require.Len(t, s.Basket.LineItems, 2)
		item := s.Basket.LineItems[1]
		assert.Equal(t, models.LineItemCoupon, item.Type)
		assert.Equal(t, int64(-1000), item.TotalCents)
		assert.Equal(t, []string{"FESTIVAL10"}, s.AppliedCoupons)
		assert.Equal(t, int64(1000), s.Basket.Breakdown.DiscountCents)
	})

	t.Run("applying the same code twice is a no-op", func(t *testing.T) {
		now := time.Now()
		s := Reduce(stateAtWarenkorb(now), ApplyCoupon{Coupon: coupon})
		again := Reduce(s, ApplyCoupon{Coupon: coupon})

		assert.Equal(t, s.Basket.LineItems, again.Basket.LineItems)
	})

	t.Run("remove drops item and code together", func(t *testing.T) {
		now := time.Now()
		s := Reduce(stateAtWarenkorb(now), ApplyCoupon{Coupon: coupon})
		s = Reduce(s, RemoveCoupon{Code: "FESTIVAL10"})

		assert.Len(t, s.Basket.LineItems, 1)
		assert.Empty(t, s.AppliedCoupons)
	})

	t.Run("auto-applied codes skip already applied ones", func(t *testing.T) {
		now := time.Now()
		s := Reduce(stateAtWarenkorb(now), ApplyCoupon{Coupon: coupon})
		s = Reduce(s, CouponsAutoApplied{Coupons: []models.Coupon{
			coupon,
			{Code: "AUTOSOMMER", DiscountCents: 490, AutoApplied: true},
		}})

		assert.Equal(t, []string{"FESTIVAL10", "AUTOSOMMER"}, s.AppliedCoupons)
	})

	t.Run("revalidation replaces the coupon set and warns", func(t *testing.T) {
		now := time.Now()
		s := Reduce(stateAtWarenkorb(now), ApplyCoupon{Coupon: coupon})
		s = Reduce(s, RevalidationStarted{Signature: "sig"})
		notificationsBefore := len(s.Notifications)

		s = Reduce(s, RevalidationCompleted{
			Valid:    nil,
			Rejected: []models.RejectedCoupon{{Code: "FESTIVAL10", Reason: "minimum order value not reached"}},
		})

		assert.False(t, s.RevalidationInFlight)
		assert.Empty(t, s.AppliedCoupons)
		assert.Len(t, s.Notifications, notificationsBefore+1)
	})

	t.Run("revalidation failure keeps prior coupons", func(t *testing.T) {
		now := time.Now()
		s := Reduce(stateAtWarenkorb(now), ApplyCoupon{Coupon: coupon})
		s = Reduce(s, RevalidationStarted{Signature: "sig"})
		s = Reduce(s, RevalidationFailed{})

		assert.False(t, s.RevalidationInFlight)
		assert.Equal(t, []string{"FESTIVAL10"}, s.AppliedCoupons)
	})
}

func TestReduceNavigation(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	t.Run("forward needs the guard", func(t *testing.T) {
		s := NewState("s")
		s = Reduce(s, GoToNextStep{})
		assert.Equal(t, StepDatum, s.CurrentStep)

		s = Reduce(s, SelectShow{Show: testShow()})
		s = Reduce(s, GoToNextStep{})
		assert.Equal(t, StepSitzplatz, s.CurrentStep)
	})

	t.Run("forward jumps farther than one step are blocked", func(t *testing.T) {
		s := Reduce(NewState("s"), SelectShow{Show: testShow()})
		s = Reduce(s, GoToStep{Step: StepWarenkorb})
		assert.Equal(t, StepDatum, s.CurrentStep)
	})

	t.Run("back from basket releases locally and regroups", func(t *testing.T) {
		s := stateAtWarenkorb(now)
		s = Reduce(s, ReplaceLineItems{Items: []models.LineItem{
			ticketItem("t1", "A1"),
			{ID: "b1", Type: models.LineItemTicket, SeatNumber: models.BestAvailableSeat,
				SeatGroupID: "sg-galerie", PriceCategoryID: "pc-3", Quantity: 1,
				UnitPriceCents: 2500, TotalCents: 2500},
			{ID: "b2", Type: models.LineItemTicket, SeatNumber: models.BestAvailableSeat,
				SeatGroupID: "sg-galerie", PriceCategoryID: "pc-3", Quantity: 1,
				UnitPriceCents: 2500, TotalCents: 2500},
		}})

		s = Reduce(s, GoToPreviousStep{})

		assert.Equal(t, StepSitzplatz, s.CurrentStep)
		assert.Nil(t, s.Reservation)
		require.Len(t, s.Basket.LineItems, 2)
		assert.Equal(t, "t1", s.Basket.LineItems[0].ID)
		assert.Equal(t, 2, s.Basket.LineItems[1].Quantity)
	})

	t.Run("back to the date step clears the basket", func(t *testing.T) {
		s := stateAtWarenkorb(now)
		s = Reduce(s, GoToStep{Step: StepDatum})

		assert.Equal(t, StepDatum, s.CurrentStep)
		assert.Empty(t, s.Basket.LineItems)
		assert.Nil(t, s.Reservation)
	})

	t.Run("no way back from the payment step", func(t *testing.T) {
		s := stateAtWarenkorb(now)
		s.CurrentStep = StepZahlung
		s = Reduce(s, GoToPreviousStep{})
		assert.Equal(t, StepZahlung, s.CurrentStep)

		s = Reduce(s, GoToStep{Step: StepDatum})
		assert.Equal(t, StepZahlung, s.CurrentStep)
	})
}

func TestReduceFlowSwitch(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	t.Run("switching resets the booking wholesale", func(t *testing.T) {
		s := stateAtWarenkorb(now)
		s = Reduce(s, SetDeliveryOption{OptionID: "do-post"})
		s = Reduce(s, SwitchFlowMode{Mode: FlowVouchers})

		assert.Equal(t, FlowVouchers, s.FlowMode)
		assert.Equal(t, StepGutscheine, s.CurrentStep)
		assert.Empty(t, s.Basket.LineItems)
		assert.Nil(t, s.Reservation)
		assert.Nil(t, s.SelectedShow)
		assert.Nil(t, s.Delivery)
	})

	t.Run("switching to the active mode is a no-op", func(t *testing.T) {
		s := stateAtWarenkorb(now)
		next := Reduce(s, SwitchFlowMode{Mode: FlowTickets})
		assert.Equal(t, s.Basket.LineItems, next.Basket.LineItems)
		assert.Equal(t, s.CurrentStep, next.CurrentStep)
	})

	t.Run("switching back lands on the date step", func(t *testing.T) {
		s := Reduce(NewState("s"), SwitchFlowMode{Mode: FlowVouchers})
		s = Reduce(s, SwitchFlowMode{Mode: FlowTickets})
		assert.Equal(t, StepDatum, s.CurrentStep)
	})
}

func TestReduceOrderPlaced(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	s := stateAtWarenkorb(now)
	s.CurrentStep = StepCheckout
	s = Reduce(s, OrderPlaced{Order: &models.PlacedOrder{OrderNumber: "TF-2026-00001", TotalCents: 4900}})

	assert.Equal(t, StepZahlung, s.CurrentStep)
	assert.Equal(t, "TF-2026-00001", s.PlacedOrderNumber)
	assert.Nil(t, s.Reservation)
	assert.Equal(t, time.Duration(0), s.TimeRemaining)
}

func TestGuards(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	t.Run("basket step needs reservation, time and delivery", func(t *testing.T) {
		s := stateAtWarenkorb(now)
		assert.False(t, CanGoToNextStep(&s))

		s = Reduce(s, SetDeliveryOption{OptionID: "do-digital"})
		assert.True(t, CanGoToNextStep(&s))

		expired := s
		expired.TimeRemaining = 0
		assert.False(t, CanGoToNextStep(&expired))
	})

	t.Run("duplicate coupons block checkout entry", func(t *testing.T) {
		s := stateAtWarenkorb(now)
		s = Reduce(s, SetDeliveryOption{OptionID: "do-digital"})
		s.Basket.LineItems = append(s.Basket.LineItems,
			models.LineItem{ID: "k1", Type: models.LineItemCoupon, CouponCode: "X"},
			models.LineItem{ID: "k2", Type: models.LineItemCoupon, CouponCode: "X"},
		)
		assert.False(t, CanGoToNextStep(&s))
	})

	t.Run("voucher flow needs at least one item", func(t *testing.T) {
		s := Reduce(NewState("s"), SwitchFlowMode{Mode: FlowVouchers})
		assert.False(t, CanGoToNextStep(&s))

		s = Reduce(s, AddLineItems{Items: []models.LineItem{
			{ID: "v1", Type: models.LineItemCrossSelling, Name: "Gutschein 50 €", Quantity: 1, TotalCents: 5000},
		}})
		assert.True(t, CanGoToNextStep(&s))
	})

	t.Run("checkout never advances through the guard", func(t *testing.T) {
		s := stateAtWarenkorb(now)
		s.CurrentStep = StepCheckout
		assert.False(t, CanGoToNextStep(&s))
	})
}

func TestReduceNotifications(t *testing.T) {
	s := Reduce(NewState("s"), Notify{Kind: models.NotifyInfo, Message: "hello", AutoDismissMS: 5000})
	require.Len(t, s.Notifications, 1)

	s = Reduce(s, DismissNotification{ID: s.Notifications[0].ID})
	assert.Empty(t, s.Notifications)
}

func TestReduceBlockedSeats(t *testing.T) {
	s := Reduce(NewState("s"), BlockedSeatsUpdated{SeatIDs: []string{"seat-A1", "seat-B2"}})
	assert.Equal(t, []string{"seat-A1", "seat-B2"}, s.BlockedSeats)

	s = Reduce(s, BlockedSeatsUpdated{SeatIDs: nil})
	assert.Empty(t, s.BlockedSeats)
}
