package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"theater-booking-platform/internal/booking"
	"theater-booking-platform/internal/models"
)

// stateResponse is the envelope every booking endpoint answers with: the
// full state snapshot plus the derived bits the UI needs to render the
// current step.
type stateResponse struct {
	State         booking.State `json:"state"`
	CanGoNext     bool          `json:"can_go_next"`
	CanGoPrevious bool          `json:"can_go_previous"`
	ExpiresInMS   int64         `json:"expires_in_ms"`
}

// errorResponse mirrors the upstream API error envelope so the UI handles
// local and proxied failures identically.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code          string               `json:"code"`
	Message       string               `json:"message"`
	Field         string               `json:"field,omitempty"`
	BookedSeats   []string             `json:"booked_seats,omitempty"`
	ReservedSeats []string             `json:"reserved_seats,omitempty"`
	Retry         *booking.RetryAdvice `json:"retry,omitempty"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeState writes the standard state envelope.
func writeState(w http.ResponseWriter, status int, state booking.State) {
	writeJSON(w, status, stateResponse{
		State:         state,
		CanGoNext:     booking.CanGoToNextStep(&state),
		CanGoPrevious: booking.CanGoToPreviousStep(&state),
		ExpiresInMS:   state.ExpiresIn(time.Now()).Milliseconds(),
	})
}

// writeError maps the error taxonomy onto HTTP statuses and the shared
// error envelope. The message is always the localized user-facing one.
func writeError(w http.ResponseWriter, err error) {
	body := errorBody{
		Code:    "INTERNAL_ERROR",
		Message: booking.UserMessage(err),
	}
	status := http.StatusInternalServerError

	var validation *models.ValidationError
	var conflict *models.SeatConflictError
	var security *models.SecurityError
	var network *models.NetworkError

	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		body.Code = "VALIDATION_ERROR"
		body.Field = validation.Field
	case errors.As(err, &conflict):
		status = http.StatusConflict
		body.Code = "SEAT_CONFLICT"
		body.BookedSeats = conflict.BookedSeats
		body.ReservedSeats = conflict.ReservedSeats
	case errors.As(err, &security):
		status = http.StatusForbidden
		body.Code = string(security.Code)
	case errors.As(err, &network):
		status = http.StatusBadGateway
		body.Code = "UPSTREAM_UNAVAILABLE"
	case errors.Is(err, models.ErrShowNotFound),
		errors.Is(err, models.ErrSeasonNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrLineItemNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
	case errors.Is(err, models.ErrDuplicateCoupon),
		errors.Is(err, models.ErrExtensionUsed),
		errors.Is(err, models.ErrSeatAlreadyInBasket):
		status = http.StatusConflict
		body.Code = "CONFLICT"
	case errors.Is(err, models.ErrNoActiveReservation),
		errors.Is(err, models.ErrReservationExpired),
		errors.Is(err, models.ErrReservationNotFound):
		status = http.StatusConflict
		body.Code = "NO_ACTIVE_RESERVATION"
	case errors.Is(err, models.ErrInvalidInput):
		status = http.StatusBadRequest
		body.Code = "INVALID_INPUT"
	}

	writeJSON(w, status, errorResponse{Error: body})
}

// writeOrderError additionally carries the retry advice the checkout UI
// uses to decide between "try again" and "pick new seats".
func writeOrderError(w http.ResponseWriter, err error) {
	advice := booking.AdviseRetry(err)
	body := errorBody{
		Code:    "ORDER_FAILED",
		Message: booking.UserMessage(err),
		Retry:   &advice,
	}
	status := http.StatusBadGateway

	var validation *models.ValidationError
	var conflict *models.SeatConflictError
	var security *models.SecurityError

	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		body.Code = "VALIDATION_ERROR"
		body.Field = validation.Field
	case errors.As(err, &conflict):
		status = http.StatusConflict
		body.Code = "SEAT_CONFLICT"
		body.BookedSeats = conflict.BookedSeats
		body.ReservedSeats = conflict.ReservedSeats
	case errors.As(err, &security):
		status = http.StatusForbidden
		body.Code = string(security.Code)
	}

	writeJSON(w, status, errorResponse{Error: body})
}
