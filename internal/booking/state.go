package booking

import (
	"time"

	"theater-booking-platform/internal/models"
)

// Step is one screen of the booking flow. The German names are the domain
// vocabulary of the festival shop and appear verbatim in the API.
type Step string

const (
	StepDatum      Step = "datum"
	StepSitzplatz  Step = "sitzplatz"
	StepWarenkorb  Step = "warenkorb"
	StepCheckout   Step = "checkout"
	StepZahlung    Step = "zahlung"
	StepGutscheine Step = "gutscheine"
)

// FlowMode partitions which step sequence is valid.
type FlowMode string

const (
	FlowTickets  FlowMode = "tickets"
	FlowVouchers FlowMode = "vouchers"
)

var ticketSteps = []Step{StepDatum, StepSitzplatz, StepWarenkorb, StepCheckout, StepZahlung}
var voucherSteps = []Step{StepGutscheine, StepCheckout, StepZahlung}

// Basket is the mutable collection of line items plus the money view
// derived from them. Breakdown stays nil until pricing reference data is
// available.
type Basket struct {
	LineItems []models.LineItem          `json:"line_items"`
	Breakdown *models.FinancialBreakdown `json:"financial_breakdown"`
}

// State is the single aggregate every booking mutation goes through. It is
// only ever changed by Reduce; everything else works on snapshots.
type State struct {
	SessionID   string   `json:"session_id"`
	CurrentStep Step     `json:"current_step"`
	FlowMode    FlowMode `json:"flow_mode"`

	SelectedShow  *models.Show         `json:"selected_show,omitempty"`
	ReferenceData *models.SeasonBundle `json:"reference_data,omitempty"`
	Delivery      *models.DeliveryOption `json:"delivery,omitempty"`

	Basket      Basket              `json:"basket"`
	Reservation *models.Reservation `json:"reservation,omitempty"`
	// TimeRemaining is derived from the reservation expiry, recomputed once
	// per second while a reservation is active.
	TimeRemaining time.Duration `json:"time_remaining"`

	AppliedCoupons []string              `json:"applied_coupons"`
	BlockedSeats   []string              `json:"blocked_seats,omitempty"`
	Notifications  []models.Notification `json:"notifications"`

	PlacedOrderNumber string              `json:"placed_order_number,omitempty"`
	PlacedOrder       *models.PlacedOrder `json:"placed_order,omitempty"`

	// Coupon reconciliation guards. LastItemSignature is the last
	// ticket/cross-selling fingerprint a revalidation ran against;
	// RevalidationInFlight serializes revalidations. LastAutoApplySignature
	// plays the same role for auto-apply.
	LastItemSignature      string `json:"-"`
	RevalidationInFlight   bool   `json:"-"`
	LastAutoApplySignature string `json:"-"`
}

// NewState creates the per-session aggregate at the start of the flow.
func NewState(sessionID string) State {
	return State{
		SessionID:   sessionID,
		CurrentStep: StepDatum,
		FlowMode:    FlowTickets,
	}
}

// clone returns a copy whose slices do not alias the receiver's, so reducer
// output never shares mutable storage with reducer input. Reference data
// pointers (show, season bundle) are treated as immutable and shared.
func (s State) clone() State {
	next := s
	next.Basket.LineItems = models.CloneLineItems(s.Basket.LineItems)
	if s.Basket.Breakdown != nil {
		bd := *s.Basket.Breakdown
		bd.VATAmounts = append([]models.VATAmount(nil), s.Basket.Breakdown.VATAmounts...)
		next.Basket.Breakdown = &bd
	}
	if s.Reservation != nil {
		r := *s.Reservation
		r.Records = append([]models.ReservationRecord(nil), s.Reservation.Records...)
		next.Reservation = &r
	}
	next.AppliedCoupons = append([]string(nil), s.AppliedCoupons...)
	next.BlockedSeats = append([]string(nil), s.BlockedSeats...)
	next.Notifications = append([]models.Notification(nil), s.Notifications...)
	return next
}

// steps returns the step sequence of the active flow.
func (s *State) steps() []Step {
	if s.FlowMode == FlowVouchers {
		return voucherSteps
	}
	return ticketSteps
}

// stepIndex returns the position of the current step in the active flow, or
// -1 when the step does not belong to it.
func (s *State) stepIndex() int {
	for i, step := range s.steps() {
		if step == s.CurrentStep {
			return i
		}
	}
	return -1
}

// CouponCodes returns the codes of all coupon-type line items in insertion
// order. The invariant that this matches AppliedCoupons is re-established by
// the reducer after every item mutation.
func (b *Basket) CouponCodes() []string {
	var codes []string
	for _, item := range b.LineItems {
		if item.Type == models.LineItemCoupon {
			codes = append(codes, item.CouponCode)
		}
	}
	return codes
}

// HasDuplicateCoupons reports whether any coupon code appears on more than
// one coupon line item. Duplicates block progression past the basket step.
func (b *Basket) HasDuplicateCoupons() bool {
	seen := make(map[string]bool)
	for _, item := range b.LineItems {
		if item.Type != models.LineItemCoupon {
			continue
		}
		if seen[item.CouponCode] {
			return true
		}
		seen[item.CouponCode] = true
	}
	return false
}
