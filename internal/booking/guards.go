package booking

import "theater-booking-platform/internal/models"

// CanGoToNextStep gates forward navigation per step. Checkout is terminal
// here: only successful order placement advances to the payment step.
func CanGoToNextStep(s *State) bool {
	switch s.CurrentStep {
	case StepDatum:
		return s.SelectedShow != nil
	case StepSitzplatz:
		return s.Reservation != nil
	case StepWarenkorb:
		return s.Reservation != nil &&
			s.TimeRemaining > 0 &&
			s.Delivery != nil &&
			!s.Basket.HasDuplicateCoupons()
	case StepGutscheine:
		return len(s.Basket.LineItems) > 0
	case StepCheckout, StepZahlung:
		return false
	}
	return false
}

// CanGoToPreviousStep reports whether stepping back is possible. After the
// order is placed there is no way back.
func CanGoToPreviousStep(s *State) bool {
	if s.CurrentStep == StepZahlung {
		return false
	}
	return s.stepIndex() > 0
}

// HasTickets reports whether the basket holds at least one ticket item.
func (b *Basket) HasTickets() bool {
	for _, item := range b.LineItems {
		if item.Type == models.LineItemTicket {
			return true
		}
	}
	return false
}
