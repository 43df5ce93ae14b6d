package booking

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"theater-booking-platform/internal/models"
	"theater-booking-platform/internal/services"
)

const effectTimeout = 10 * time.Second

// Engine owns one session's BookingState. All mutation funnels through
// Dispatch, which applies the pure reducer under a single lock and then
// runs the side effects the transition calls for: countdown management,
// best-effort backend release and coupon reconciliation.
type Engine struct {
	mu    sync.Mutex
	state State

	pricing      services.PricingServiceInterface
	reservations services.ReservationServiceInterface
	coupons      services.CouponServiceInterface
	orders       services.OrderServiceInterface

	clock        func() time.Time
	tickInterval time.Duration

	countdown *countdown
	closed    bool
	touched   time.Time

	// asyncEffects tracks in-flight fire-and-forget calls so Close and
	// tests can wait for them.
	asyncEffects sync.WaitGroup
}

// NewEngine creates the engine for one browser session.
func NewEngine(sessionID string,
	pricing services.PricingServiceInterface,
	reservations services.ReservationServiceInterface,
	coupons services.CouponServiceInterface,
	orders services.OrderServiceInterface,
) *Engine {
	return &Engine{
		state:        NewState(sessionID),
		pricing:      pricing,
		reservations: reservations,
		coupons:      coupons,
		orders:       orders,
		clock:        time.Now,
		tickInterval: time.Second,
		touched:      time.Now(),
	}
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Touch records activity for idle eviction.
func (e *Engine) Touch() {
	e.mu.Lock()
	e.touched = e.clock()
	e.mu.Unlock()
}

// IdleSince returns the time of the last activity.
func (e *Engine) IdleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.touched
}

// Dispatch applies one action and runs the resulting side effects. It
// returns the post-transition state snapshot.
func (e *Engine) Dispatch(action Action) State {
	e.mu.Lock()
	if e.closed {
		snapshot := e.state.clone()
		e.mu.Unlock()
		return snapshot
	}
	prev := e.state
	e.state = Reduce(prev, action)
	next := e.state
	e.mu.Unlock()

	e.afterDispatch(prev, next, action)
	return next.clone()
}

// Close cancels the countdown and waits for in-flight effects. Further
// dispatches are no-ops.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	if e.countdown != nil {
		e.countdown.stop()
		e.countdown = nil
	}
	e.mu.Unlock()
	e.asyncEffects.Wait()
}

func (e *Engine) afterDispatch(prev, next State, action Action) {
	e.manageCountdown(next)

	if prev.Reservation != nil && next.Reservation == nil && actionReleasesReservation(action) {
		e.releaseBackend(prev.Reservation.ShowID)
	}

	e.reconcileCoupons(next)
}

// actionReleasesReservation reports whether losing the reservation during
// this action means the user gave it up, in which case the backend is
// informed best-effort. Expiry and order placement must not trigger a
// release call.
func actionReleasesReservation(action Action) bool {
	switch action.(type) {
	case ReservationReleased, GoToPreviousStep, GoToStep, SwitchFlowMode, SelectShow:
		return true
	}
	return false
}

// releaseBackend informs the reservation API that the hold was given up.
// Failure is logged, never surfaced: the local transition already happened
// and navigation is never blocked by a release failure.
func (e *Engine) releaseBackend(showID string) {
	sessionID := e.sessionID()
	e.asyncEffects.Add(1)
	go func() {
		defer e.asyncEffects.Done()
		ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
		defer cancel()
		if err := e.reservations.Release(ctx, sessionID, showID); err != nil {
			log.Printf("Failed to release reservation for session %s: %v", sessionID, err)
		}
	}()
}

func (e *Engine) sessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.SessionID
}

// SelectShow loads the show (by id, falling back to slug) and its season's
// reference data, then pins both in the state.
func (e *Engine) SelectShow(ctx context.Context, idOrSlug string) (State, error) {
	show, err := e.pricing.GetShowByID(ctx, idOrSlug)
	if err != nil {
		show, err = e.pricing.GetShowBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return e.Snapshot(), err
	}

	bundle, err := e.pricing.GetSeasonBundle(ctx, show.SeasonID)
	if err != nil {
		return e.Snapshot(), err
	}

	e.Dispatch(SelectShow{Show: show})
	return e.Dispatch(ReferenceDataLoaded{Bundle: bundle}), nil
}

// ReserveSeats reserves the given seats with the backend and, on success,
// records the reservation and adds the matching ticket line items. The
// price category of every ticket is pinned here and reused verbatim later.
func (e *Engine) ReserveSeats(ctx context.Context, selections []services.SeatSelection) (State, error) {
	snapshot := e.Snapshot()
	if snapshot.SelectedShow == nil {
		return snapshot, models.ErrShowNotFound
	}
	if len(selections) == 0 {
		return snapshot, &models.ValidationError{Field: "seats", Message: "no seats selected"}
	}

	items, err := buildTicketItems(snapshot.SelectedShow, selections)
	if err != nil {
		return snapshot, err
	}

	reservation, err := e.reservations.Create(ctx, snapshot.SessionID, snapshot.SelectedShow.ID, selections)
	if err != nil {
		return e.Snapshot(), err
	}

	e.Dispatch(ReservationCreated{Reservation: reservation, Now: e.clock()})
	return e.Dispatch(AddLineItems{Items: items}), nil
}

// ExtendReservation performs the one-shot extension. A second attempt is
// rejected client-side without a network call.
func (e *Engine) ExtendReservation(ctx context.Context) (State, error) {
	snapshot := e.Snapshot()
	if snapshot.Reservation == nil {
		return snapshot, models.ErrNoActiveReservation
	}
	if !snapshot.Reservation.CanExtend {
		return snapshot, models.ErrExtensionUsed
	}

	newExpiry, err := e.reservations.Extend(ctx, snapshot.SessionID, snapshot.Reservation.ShowID)
	if err != nil {
		return e.Snapshot(), err
	}

	state := e.Dispatch(ReservationExtended{NewExpiresAt: newExpiry, MarkUsed: true, Now: e.clock()})
	e.Dispatch(Notify{Kind: models.NotifySuccess, Message: "Your reservation was extended.", AutoDismissMS: 5000})
	return state, nil
}

// ReleaseReservation gives the hold up explicitly. The local transition
// always happens; the backend call is best-effort.
func (e *Engine) ReleaseReservation() State {
	return e.Dispatch(ReservationReleased{})
}

// HandlePushEvent routes an untrusted push hint into the same idempotent
// transitions the local timer uses.
func (e *Engine) HandlePushEvent(event services.PushEvent) {
	switch event.Type {
	case services.PushReservationExpired:
		e.Dispatch(ReservationExpired{})
	case services.PushReservationExtended:
		e.Dispatch(ReservationExtended{NewExpiresAt: event.ExpiresAt, Now: e.clock()})
	default:
		log.Printf("Ignoring unknown push event type %q for session %s", event.Type, event.SessionID)
	}
}

// Recover adopts a live, unexpired reservation found for this session and
// reconstructs the basket from it. A stale or expired reservation is
// silently ignored and the booking starts fresh; recovery never mutates
// state in that case.
func (e *Engine) Recover(ctx context.Context) error {
	snapshot := e.Snapshot()
	if snapshot.CurrentStep != StepDatum || snapshot.Reservation != nil || len(snapshot.Basket.LineItems) > 0 {
		return nil
	}

	reservation, err := e.reservations.FindBySession(ctx, snapshot.SessionID)
	if err != nil || reservation == nil {
		return err
	}
	if reservation.Expired(e.clock()) {
		return nil
	}

	show, err := e.pricing.GetShowByID(ctx, reservation.ShowID)
	if err != nil {
		return fmt.Errorf("recovering session %s: %w", snapshot.SessionID, err)
	}
	bundle, err := e.pricing.GetSeasonBundle(ctx, show.SeasonID)
	if err != nil {
		return fmt.Errorf("recovering session %s: %w", snapshot.SessionID, err)
	}

	items, dropped := reconstructLineItems(reservation.Records, show)
	e.Dispatch(ReservationAdopted{
		Show:              show,
		Bundle:            bundle,
		Reservation:       reservation,
		Items:             items,
		DroppedCategories: dropped,
		Now:               e.clock(),
	})
	return nil
}

// buildTicketItems turns seat selections into ticket line items using the
// show's pricing structure.
func buildTicketItems(show *models.Show, selections []services.SeatSelection) ([]models.LineItem, error) {
	var items []models.LineItem
	for _, selection := range selections {
		group, category := show.FindPriceCategory(selection.PriceCategoryID)
		if category == nil {
			return nil, &models.ValidationError{Field: "price_category_id", Message: "unknown price category " + selection.PriceCategoryID}
		}

		item := models.LineItem{
			Type:            models.LineItemTicket,
			Name:            show.Title + " – " + category.Name,
			Quantity:        1,
			UnitPriceCents:  category.PriceCents,
			TotalCents:      category.PriceCents,
			Currency:        category.Currency,
			VATRateBps:      category.VATRateBps,
			SeatGroupID:     group.ID,
			PriceCategoryID: category.ID,
		}

		if selection.SeatID == "" {
			qty := selection.Quantity
			if qty <= 0 {
				qty = 1
			}
			item.Quantity = qty
			item.TotalCents = category.PriceCents * int64(qty)
			item.SeatNumber = models.BestAvailableSeat
		} else {
			seatGroup, seat := show.FindSeat(selection.SeatID)
			if seat == nil {
				return nil, &models.ValidationError{Field: "seat_id", Message: "unknown seat " + selection.SeatID}
			}
			if seatGroup.ID != group.ID {
				return nil, &models.ValidationError{Field: "price_category_id", Message: "price category does not belong to the seat's group"}
			}
			item.SeatID = seat.ID
			item.SeatNumber = seat.SeatNumber
			item.SeatRow = seat.Row
		}

		item.ID = newLineItemID()
		items = append(items, item)
	}
	return items, nil
}
