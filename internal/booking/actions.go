package booking

import (
	"time"

	"theater-booking-platform/internal/models"
)

// Action is the closed set of events the reducer understands. Timers,
// network callbacks and HTTP handlers all mutate state exclusively by
// dispatching one of these.
type Action interface {
	actionName() string
}

// SelectShow pins the show for the tickets flow.
type SelectShow struct {
	Show *models.Show
}

// ReferenceDataLoaded delivers the season bundle (delivery options, fee
// config, payment methods). If line items already exist with a nil
// breakdown, the reducer backfills it immediately.
type ReferenceDataLoaded struct {
	Bundle *models.SeasonBundle
}

// AddLineItems appends items to the basket. Ticket items whose seat number
// duplicates one already in the basket are skipped.
type AddLineItems struct {
	Items []models.LineItem
}

// RemoveLineItem removes one item by id. Removing a ticket cascades to all
// pre-show cross-selling add-ons referencing it.
type RemoveLineItem struct {
	ID string
}

// ReplaceLineItems swaps the whole item list (bulk cross-selling edits).
type ReplaceLineItems struct {
	Items []models.LineItem
}

// UpdateLineItem shallow-merges a patch onto one item by id.
type UpdateLineItem struct {
	ID    string
	Patch LineItemPatch
}

// LineItemPatch holds the updatable fields; nil means "leave unchanged".
type LineItemPatch struct {
	Quantity       *int
	UnitPriceCents *int64
	TotalCents     *int64
	Name           *string
}

// SetDeliveryOption picks a delivery option by id from the reference data.
type SetDeliveryOption struct {
	OptionID string
}

// ReservationCreated records a successful reservation call.
type ReservationCreated struct {
	Reservation *models.Reservation
	Now         time.Time
}

// ReservationAdopted is dispatched by session recovery when a live,
// unexpired reservation was found for the session and line items were
// reconstructed from it.
type ReservationAdopted struct {
	Show        *models.Show
	Bundle      *models.SeasonBundle
	Reservation *models.Reservation
	Items       []models.LineItem
	// DroppedCategories names price categories that no longer exist in the
	// current pricing structure; their records were dropped with a warning.
	DroppedCategories []string
	Now               time.Time
}

// ReservationExtended updates the expiry. MarkUsed is set by the client's
// own successful extend call and burns the one-shot extension; push-derived
// updates leave the flag alone.
type ReservationExtended struct {
	NewExpiresAt time.Time
	MarkUsed     bool
	Now          time.Time
}

// ReservationExpired fires from the local countdown or an out-of-band push,
// whichever comes first. The reducer treats it idempotently: without an
// active reservation it is a no-op.
type ReservationExpired struct{}

// ReservationReleased transitions the reservation away locally. Informing
// the backend happens outside the reducer and never blocks this.
type ReservationReleased struct{}

// Tick recomputes the remaining reservation time; reaching zero triggers
// the expiry transition.
type Tick struct {
	Now time.Time
}

// ApplyCoupon adds a validated coupon to the basket. Codes already applied
// are ignored.
type ApplyCoupon struct {
	Coupon models.Coupon
}

// RemoveCoupon removes a coupon line item (and its code) by code.
type RemoveCoupon struct {
	Code string
}

// AutoApplyRequested marks the basket fingerprint an auto-apply round was
// started for, so the same basket is not probed twice.
type AutoApplyRequested struct {
	Signature string
}

// CouponsAutoApplied delivers the auto-apply result. Already-applied codes
// are skipped without a duplicate notification.
type CouponsAutoApplied struct {
	Coupons []models.Coupon
}

// RevalidationStarted latches the in-flight flag and the item signature the
// round runs against.
type RevalidationStarted struct {
	Signature string
}

// RevalidationCompleted replaces the applied coupon set with exactly the
// codes the server reported valid and warns about each rejected one.
type RevalidationCompleted struct {
	Valid    []models.Coupon
	Rejected []models.RejectedCoupon
}

// RevalidationFailed clears the in-flight flag; the prior coupon state
// stays untouched.
type RevalidationFailed struct{}

// Notify appends a transient user message.
type Notify struct {
	Kind          models.NotificationKind
	Message       string
	AutoDismissMS int
}

// DismissNotification drops one notification by id.
type DismissNotification struct {
	ID string
}

// GoToNextStep advances if the current step's guard allows it.
type GoToNextStep struct{}

// GoToPreviousStep steps back, releasing the reservation and regrouping the
// basket where the flow requires it.
type GoToPreviousStep struct{}

// GoToStep navigates to an arbitrary step of the active flow, applying the
// same release/regroup rules as GoToPreviousStep for backward moves.
type GoToStep struct {
	Step Step
}

// SwitchFlowMode switches between the tickets and vouchers flows, resetting
// basket, reservation, blocked seats and coupon state wholesale.
type SwitchFlowMode struct {
	Mode FlowMode
}

// BlockedSeatsUpdated replaces the list of seats held by other customers.
type BlockedSeatsUpdated struct {
	SeatIDs []string
}

// OrderPlaced records the outcome of external order placement and advances
// to the payment step.
type OrderPlaced struct {
	Order *models.PlacedOrder
}

func (SelectShow) actionName() string          { return "selectShow" }
func (ReferenceDataLoaded) actionName() string { return "referenceDataLoaded" }
func (AddLineItems) actionName() string        { return "addLineItems" }
func (RemoveLineItem) actionName() string      { return "removeLineItem" }
func (ReplaceLineItems) actionName() string    { return "replaceLineItems" }
func (UpdateLineItem) actionName() string      { return "updateLineItem" }
func (SetDeliveryOption) actionName() string   { return "setDeliveryOption" }
func (ReservationCreated) actionName() string  { return "reservationCreated" }
func (ReservationAdopted) actionName() string  { return "reservationAdopted" }
func (ReservationExtended) actionName() string { return "reservationExtended" }
func (ReservationExpired) actionName() string  { return "reservationExpired" }
func (ReservationReleased) actionName() string { return "reservationReleased" }
func (Tick) actionName() string                { return "tick" }
func (ApplyCoupon) actionName() string         { return "applyCoupon" }
func (RemoveCoupon) actionName() string        { return "removeCoupon" }
func (AutoApplyRequested) actionName() string  { return "autoApplyRequested" }
func (CouponsAutoApplied) actionName() string  { return "couponsAutoApplied" }
func (RevalidationStarted) actionName() string { return "revalidationStarted" }
func (RevalidationCompleted) actionName() string {
	return "revalidationCompleted"
}
func (RevalidationFailed) actionName() string  { return "revalidationFailed" }
func (Notify) actionName() string              { return "notify" }
func (DismissNotification) actionName() string { return "dismissNotification" }
func (GoToNextStep) actionName() string        { return "goToNextStep" }
func (GoToPreviousStep) actionName() string    { return "goToPreviousStep" }
func (GoToStep) actionName() string            { return "goToStep" }
func (SwitchFlowMode) actionName() string      { return "switchFlowMode" }
func (BlockedSeatsUpdated) actionName() string { return "blockedSeatsUpdated" }
func (OrderPlaced) actionName() string         { return "orderPlaced" }
