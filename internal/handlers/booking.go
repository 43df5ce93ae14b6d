package handlers

import (
	"encoding/json"
	"net/http"

	"theater-booking-platform/internal/booking"
	"theater-booking-platform/internal/middleware"
	"theater-booking-platform/internal/models"
	"theater-booking-platform/internal/services"
	"theater-booking-platform/internal/session"

	"github.com/go-chi/chi/v5"
)

// BookingHandler exposes the per-session booking engine over HTTP. Every
// endpoint resolves the caller's engine from the session registry,
// dispatches or invokes an operation, and answers with the fresh state
// snapshot.
type BookingHandler struct {
	registry *session.Registry
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(registry *session.Registry) *BookingHandler {
	return &BookingHandler{registry: registry}
}

func (h *BookingHandler) engine(w http.ResponseWriter, r *http.Request) *booking.Engine {
	sessionID := middleware.GetSessionID(r.Context())
	if sessionID == "" {
		writeError(w, &models.SecurityError{Code: models.SecSessionRequired})
		return nil
	}
	return h.registry.GetOrCreate(r.Context(), sessionID)
}

// GetState returns the current booking state snapshot.
func (h *BookingHandler) GetState(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	writeState(w, http.StatusOK, engine.Snapshot())
}

// SelectShow pins a show by id or slug and loads the season reference data.
func (h *BookingHandler) SelectShow(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	var req struct {
		Show string `json:"show"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Show == "" {
		writeError(w, &models.ValidationError{Field: "show", Message: "show id or slug required"})
		return
	}

	state, err := engine.SelectShow(r.Context(), req.Show)
	if err != nil {
		writeError(w, err)
		return
	}
	writeState(w, http.StatusOK, state)
}

// ReserveSeats holds the requested seats and puts the matching ticket line
// items in the basket.
func (h *BookingHandler) ReserveSeats(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	var req struct {
		Selections []services.SeatSelection `json:"selections"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Selections) == 0 {
		writeError(w, &models.ValidationError{Field: "selections", Message: "at least one seat selection required"})
		return
	}
	for _, sel := range req.Selections {
		if sel.PriceCategoryID == "" {
			writeError(w, &models.ValidationError{Field: "price_category_id", Message: "price category required"})
			return
		}
		if sel.SeatID == "" && sel.Quantity <= 0 {
			writeError(w, &models.ValidationError{Field: "quantity", Message: "quantity must be positive for free selection"})
			return
		}
	}

	state, err := engine.ReserveSeats(r.Context(), req.Selections)
	if err != nil {
		writeError(w, err)
		return
	}
	writeState(w, http.StatusOK, state)
}

// ExtendReservation grants the one-shot countdown extension.
func (h *BookingHandler) ExtendReservation(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	state, err := engine.ExtendReservation(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeState(w, http.StatusOK, state)
}

// ReleaseReservation gives the held seats back voluntarily.
func (h *BookingHandler) ReleaseReservation(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	writeState(w, http.StatusOK, engine.ReleaseReservation())
}

// AddItems appends cross-selling or voucher line items to the basket.
// Ticket items can only enter through seat reservation.
func (h *BookingHandler) AddItems(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	var req struct {
		Items []models.LineItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Items) == 0 {
		writeError(w, &models.ValidationError{Field: "items", Message: "at least one item required"})
		return
	}
	for _, item := range req.Items {
		if item.Type == models.LineItemTicket {
			writeError(w, &models.ValidationError{Field: "items", Message: "ticket items are created via seat reservation"})
			return
		}
		if item.Type == models.LineItemCoupon {
			writeError(w, &models.ValidationError{Field: "items", Message: "coupons are applied via the coupon endpoint"})
			return
		}
		if item.Quantity <= 0 {
			writeError(w, &models.ValidationError{Field: "quantity", Message: "quantity must be positive"})
			return
		}
	}

	writeState(w, http.StatusOK, engine.Dispatch(booking.AddLineItems{Items: req.Items}))
}

// ReplaceItems swaps the whole line item list (bulk cross-selling edits).
func (h *BookingHandler) ReplaceItems(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	var req struct {
		Items []models.LineItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &models.ValidationError{Field: "items", Message: "invalid item list"})
		return
	}

	writeState(w, http.StatusOK, engine.Dispatch(booking.ReplaceLineItems{Items: req.Items}))
}

// UpdateItem patches one line item by id.
func (h *BookingHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	itemID := chi.URLParam(r, "itemID")
	var patch booking.LineItemPatch
	var req struct {
		Quantity       *int    `json:"quantity"`
		UnitPriceCents *int64  `json:"unit_price_cents"`
		TotalCents     *int64  `json:"total_cents"`
		Name           *string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &models.ValidationError{Field: "patch", Message: "invalid patch"})
		return
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		writeError(w, &models.ValidationError{Field: "quantity", Message: "quantity must be positive"})
		return
	}
	patch.Quantity = req.Quantity
	patch.UnitPriceCents = req.UnitPriceCents
	patch.TotalCents = req.TotalCents
	patch.Name = req.Name

	writeState(w, http.StatusOK, engine.Dispatch(booking.UpdateLineItem{ID: itemID, Patch: patch}))
}

// RemoveItem removes one line item. Removing a ticket cascades to its
// attached pre-show add-ons.
func (h *BookingHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	itemID := chi.URLParam(r, "itemID")
	writeState(w, http.StatusOK, engine.Dispatch(booking.RemoveLineItem{ID: itemID}))
}

// SetDelivery picks a delivery option from the reference data.
func (h *BookingHandler) SetDelivery(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	var req struct {
		OptionID string `json:"option_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OptionID == "" {
		writeError(w, &models.ValidationError{Field: "option_id", Message: "delivery option required"})
		return
	}

	writeState(w, http.StatusOK, engine.Dispatch(booking.SetDeliveryOption{OptionID: req.OptionID}))
}

// ApplyCoupon validates a user-entered code and applies it when valid.
func (h *BookingHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, &models.ValidationError{Field: "code", Message: "coupon code required"})
		return
	}

	state, err := engine.ValidateCoupon(r.Context(), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeState(w, http.StatusOK, state)
}

// RemoveCoupon drops an applied coupon by code.
func (h *BookingHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	code := chi.URLParam(r, "code")
	writeState(w, http.StatusOK, engine.Dispatch(booking.RemoveCoupon{Code: code}))
}

// NextStep advances the flow when the current step's guard allows it.
func (h *BookingHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	writeState(w, http.StatusOK, engine.Dispatch(booking.GoToNextStep{}))
}

// PreviousStep steps back, releasing the reservation where the flow
// requires it.
func (h *BookingHandler) PreviousStep(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	writeState(w, http.StatusOK, engine.Dispatch(booking.GoToPreviousStep{}))
}

// GoToStep jumps to an arbitrary step of the active flow.
func (h *BookingHandler) GoToStep(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	var req struct {
		Step string `json:"step"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Step == "" {
		writeError(w, &models.ValidationError{Field: "step", Message: "step required"})
		return
	}

	writeState(w, http.StatusOK, engine.Dispatch(booking.GoToStep{Step: booking.Step(req.Step)}))
}

// SwitchFlow switches between the tickets and vouchers flows. The basket
// and reservation reset wholesale.
func (h *BookingHandler) SwitchFlow(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &models.ValidationError{Field: "mode", Message: "flow mode required"})
		return
	}
	mode := booking.FlowMode(req.Mode)
	if mode != booking.FlowTickets && mode != booking.FlowVouchers {
		writeError(w, &models.ValidationError{Field: "mode", Message: "unknown flow mode"})
		return
	}

	writeState(w, http.StatusOK, engine.Dispatch(booking.SwitchFlowMode{Mode: mode}))
}

// DismissNotification drops one transient message by id.
func (h *BookingHandler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	id := chi.URLParam(r, "notificationID")
	writeState(w, http.StatusOK, engine.Dispatch(booking.DismissNotification{ID: id}))
}
