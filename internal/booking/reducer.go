package booking

import (
	"fmt"

	"github.com/google/uuid"

	"theater-booking-platform/internal/models"
)

// Reduce is the single transition function of the booking state machine.
// It never mutates its input and handles every action of the closed set.
func Reduce(state State, action Action) State {
	s := state.clone()

	switch a := action.(type) {
	case SelectShow:
		if a.Show == nil {
			return state
		}
		if s.SelectedShow != nil && s.SelectedShow.ID != a.Show.ID {
			// A different show invalidates everything selected so far.
			s.Basket.LineItems = nil
			s.BlockedSeats = nil
			s.Reservation = nil
			s.TimeRemaining = 0
		}
		s.SelectedShow = a.Show
		refreshDerived(&s)

	case ReferenceDataLoaded:
		s.ReferenceData = a.Bundle
		// Backfill the breakdown the instant reference data arrives.
		refreshDerived(&s)

	case AddLineItems:
		items, skipped := addItems(s.Basket.LineItems, a.Items)
		s.Basket.LineItems = items
		for _, seat := range skipped {
			notify(&s, models.NotifyWarning, fmt.Sprintf("Seat %s is already in your basket.", seat), 5000)
		}
		refreshDerived(&s)

	case RemoveLineItem:
		s.Basket.LineItems = removeItem(s.Basket.LineItems, a.ID)
		refreshDerived(&s)

	case ReplaceLineItems:
		s.Basket.LineItems = models.CloneLineItems(a.Items)
		refreshDerived(&s)

	case UpdateLineItem:
		s.Basket.LineItems = patchItem(s.Basket.LineItems, a.ID, a.Patch)
		refreshDerived(&s)

	case SetDeliveryOption:
		s.Delivery = nil
		if a.OptionID != "" && s.ReferenceData != nil {
			for i := range s.ReferenceData.DeliveryOptions {
				if s.ReferenceData.DeliveryOptions[i].ID == a.OptionID {
					option := s.ReferenceData.DeliveryOptions[i]
					s.Delivery = &option
					break
				}
			}
		}
		refreshDerived(&s)

	case ReservationCreated:
		if a.Reservation == nil {
			return state
		}
		s.Reservation = a.Reservation
		s.TimeRemaining = a.Reservation.TimeRemaining(a.Now)

	case ReservationAdopted:
		s.FlowMode = FlowTickets
		s.SelectedShow = a.Show
		s.ReferenceData = a.Bundle
		s.Reservation = a.Reservation
		s.TimeRemaining = a.Reservation.TimeRemaining(a.Now)
		s.Basket.LineItems = models.CloneLineItems(a.Items)
		s.CurrentStep = StepWarenkorb
		for _, categoryID := range a.DroppedCategories {
			notify(&s, models.NotifyWarning,
				fmt.Sprintf("A reserved seat could not be restored because price category %s no longer exists.", categoryID), 0)
		}
		refreshDerived(&s)

	case ReservationExtended:
		if s.Reservation == nil {
			return state
		}
		s.Reservation.ExpiresAt = a.NewExpiresAt
		s.TimeRemaining = s.Reservation.TimeRemaining(a.Now)
		if a.MarkUsed {
			s.Reservation.CanExtend = false
		}

	case ReservationExpired:
		return expire(s, state)

	case ReservationReleased:
		if s.Reservation == nil {
			return state
		}
		s.Reservation = nil
		s.TimeRemaining = 0

	case Tick:
		if s.Reservation == nil {
			return state
		}
		remaining := s.Reservation.TimeRemaining(a.Now)
		if remaining == 0 {
			return expire(s, state)
		}
		s.TimeRemaining = remaining

	case ApplyCoupon:
		if couponApplied(&s, a.Coupon.Code) {
			return state
		}
		s.Basket.LineItems = append(s.Basket.LineItems, couponLineItem(a.Coupon, currency(&s)))
		notify(&s, models.NotifySuccess, fmt.Sprintf("Coupon %s applied.", a.Coupon.Code), 5000)
		refreshDerived(&s)

	case RemoveCoupon:
		items := make([]models.LineItem, 0, len(s.Basket.LineItems))
		for _, item := range s.Basket.LineItems {
			if item.Type == models.LineItemCoupon && item.CouponCode == a.Code {
				continue
			}
			items = append(items, item)
		}
		s.Basket.LineItems = items
		refreshDerived(&s)

	case AutoApplyRequested:
		s.LastAutoApplySignature = a.Signature

	case CouponsAutoApplied:
		for _, coupon := range a.Coupons {
			if couponApplied(&s, coupon.Code) {
				continue
			}
			s.Basket.LineItems = append(s.Basket.LineItems, couponLineItem(coupon, currency(&s)))
			notify(&s, models.NotifySuccess, fmt.Sprintf("Coupon %s was applied to your basket.", coupon.Code), 5000)
		}
		refreshDerived(&s)

	case RevalidationStarted:
		s.RevalidationInFlight = true
		s.LastItemSignature = a.Signature

	case RevalidationCompleted:
		s.RevalidationInFlight = false
		s.Basket.LineItems = withoutCoupons(s.Basket.LineItems)
		for _, coupon := range a.Valid {
			s.Basket.LineItems = append(s.Basket.LineItems, couponLineItem(coupon, currency(&s)))
		}
		for _, rejected := range a.Rejected {
			notify(&s, models.NotifyWarning,
				fmt.Sprintf("Coupon %s is no longer valid for your basket and was removed.", rejected.Code), 0)
		}
		refreshDerived(&s)

	case RevalidationFailed:
		s.RevalidationInFlight = false

	case Notify:
		notify(&s, a.Kind, a.Message, a.AutoDismissMS)

	case DismissNotification:
		notifications := make([]models.Notification, 0, len(s.Notifications))
		for _, n := range s.Notifications {
			if n.ID == a.ID {
				continue
			}
			notifications = append(notifications, n)
		}
		s.Notifications = notifications

	case GoToNextStep:
		if !CanGoToNextStep(&s) {
			return state
		}
		steps := s.steps()
		s.CurrentStep = steps[s.stepIndex()+1]

	case GoToPreviousStep:
		if !CanGoToPreviousStep(&s) {
			return state
		}
		steps := s.steps()
		return navigateTo(s, state, steps[s.stepIndex()-1])

	case GoToStep:
		return navigateTo(s, state, a.Step)

	case SwitchFlowMode:
		if a.Mode == s.FlowMode {
			return state
		}
		s.FlowMode = a.Mode
		s.SelectedShow = nil
		s.Basket.LineItems = nil
		s.Reservation = nil
		s.TimeRemaining = 0
		s.BlockedSeats = nil
		s.Delivery = nil
		s.LastItemSignature = ""
		s.LastAutoApplySignature = ""
		s.RevalidationInFlight = false
		if a.Mode == FlowVouchers {
			s.CurrentStep = StepGutscheine
		} else {
			s.CurrentStep = StepDatum
		}
		refreshDerived(&s)

	case BlockedSeatsUpdated:
		s.BlockedSeats = append([]string(nil), a.SeatIDs...)

	case OrderPlaced:
		if a.Order == nil {
			return state
		}
		s.PlacedOrder = a.Order
		s.PlacedOrderNumber = a.Order.OrderNumber
		// The hold is consumed by the order; no countdown remains.
		s.Reservation = nil
		s.TimeRemaining = 0
		s.CurrentStep = StepZahlung

	default:
		return state
	}

	return s
}

// expire is the idempotent expiry transition. Both the local countdown and
// the server push funnel into it; without an active reservation it is a
// no-op, so the second trigger of a race loses cleanly.
func expire(s State, prev State) State {
	if s.Reservation == nil {
		return prev
	}
	s.Reservation = nil
	s.TimeRemaining = 0

	// Reservation-derived basket artifacts: tickets, their add-ons and all
	// coupons. Standalone cross-selling items survive.
	kept := make([]models.LineItem, 0, len(s.Basket.LineItems))
	for _, item := range s.Basket.LineItems {
		if item.Type == models.LineItemCrossSelling && item.TicketRef == "" {
			kept = append(kept, item)
		}
	}
	s.Basket.LineItems = kept
	refreshDerived(&s)

	notify(&s, models.NotifyWarning, "Your seat reservation has expired. Please select your seats again.", 0)

	if s.FlowMode == FlowTickets {
		switch s.CurrentStep {
		case StepWarenkorb, StepCheckout:
			s.CurrentStep = StepSitzplatz
		}
	}
	return s
}

// navigateTo applies the backward-navigation rules: leaving the basket or
// checkout toward seat or date selection first releases the reservation
// locally, and arriving at seat selection regroups the basket. Forward
// jumps are only honored one step at a time through the guard.
func navigateTo(s State, prev State, target Step) State {
	currentIndex := s.stepIndex()
	targetIndex := -1
	for i, step := range s.steps() {
		if step == target {
			targetIndex = i
		}
	}
	if targetIndex == -1 || currentIndex == -1 || targetIndex == currentIndex {
		return prev
	}

	if targetIndex > currentIndex {
		if targetIndex != currentIndex+1 || !CanGoToNextStep(&s) {
			return prev
		}
		s.CurrentStep = target
		return s
	}

	if s.CurrentStep == StepZahlung {
		// The order is placed; there is no way back.
		return prev
	}

	leavingBasket := s.CurrentStep == StepWarenkorb || s.CurrentStep == StepCheckout
	if leavingBasket && (target == StepSitzplatz || target == StepDatum) && s.Reservation != nil {
		s.Reservation = nil
		s.TimeRemaining = 0
	}

	switch target {
	case StepSitzplatz:
		s.Basket.LineItems = regroupForSeatSelection(s.Basket.LineItems)
		refreshDerived(&s)
	case StepDatum:
		s.Basket.LineItems = nil
		s.BlockedSeats = nil
		refreshDerived(&s)
	}

	s.CurrentStep = target
	return s
}

func couponApplied(s *State, code string) bool {
	for _, applied := range s.AppliedCoupons {
		if applied == code {
			return true
		}
	}
	return false
}

func couponLineItem(coupon models.Coupon, currency string) models.LineItem {
	name := coupon.Description
	if name == "" {
		name = "Coupon " + coupon.Code
	}
	return models.LineItem{
		ID:            uuid.New().String(),
		Type:          models.LineItemCoupon,
		Name:          name,
		Quantity:      1,
		TotalCents:    -coupon.DiscountCents,
		Currency:      currency,
		CouponCode:    coupon.Code,
		DiscountCents: coupon.DiscountCents,
	}
}

func currency(s *State) string {
	for _, item := range s.Basket.LineItems {
		if item.Currency != "" {
			return item.Currency
		}
	}
	return DefaultCurrency
}

func notify(s *State, kind models.NotificationKind, message string, autoDismissMS int) {
	s.Notifications = append(s.Notifications, models.Notification{
		ID:            uuid.New().String(),
		Kind:          kind,
		Message:       message,
		AutoDismissMS: autoDismissMS,
	})
}
