package models

import (
	"errors"
	"fmt"
)

// Common errors used throughout the application
var (
	ErrShowNotFound        = errors.New("show not found")
	ErrSeasonNotFound      = errors.New("season not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationExpired  = errors.New("reservation expired")
	ErrExtensionUsed       = errors.New("reservation was already extended")
	ErrLineItemNotFound    = errors.New("line item not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrSeatAlreadyInBasket = errors.New("seat is already in the basket")
	ErrDuplicateCoupon     = errors.New("duplicate coupon code")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNoActiveReservation = errors.New("no active reservation")
)

// SecurityErrorCode enumerates the structured codes the order API returns
// when an intent, nonce, session, seat set or amount does not match.
type SecurityErrorCode string

const (
	SecSessionRequired SecurityErrorCode = "SESSION_REQUIRED"
	SecInvalidIntent   SecurityErrorCode = "INVALID_INTENT"
	SecInvalidNonce    SecurityErrorCode = "INVALID_NONCE"
	SecSessionMismatch SecurityErrorCode = "SESSION_MISMATCH"
	SecSeatMismatch    SecurityErrorCode = "SEAT_MISMATCH"
	SecAmountMismatch  SecurityErrorCode = "AMOUNT_MISMATCH"
	SecAlreadyUsed     SecurityErrorCode = "ALREADY_USED"
)

// SecurityError is returned by order placement when the intent/nonce/session
// checks fail server-side.
type SecurityError struct {
	Code SecurityErrorCode `json:"code"`
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("security error: %s", e.Code)
}

// NeedsFreshIntent reports whether the caller must obtain a new order intent
// before retrying placement.
func (e *SecurityError) NeedsFreshIntent() bool {
	switch e.Code {
	case SecInvalidIntent, SecInvalidNonce, SecAlreadyUsed, SecSeatMismatch, SecAmountMismatch:
		return true
	}
	return false
}

// NeedsSeatReselection reports whether the user has to go back and pick new
// seats before another placement attempt can succeed.
func (e *SecurityError) NeedsSeatReselection() bool {
	return e.Code == SecSeatMismatch
}

// SeatConflictError is returned when seats are no longer available at order
// time. Booked seats are gone for good, reserved seats are held by others.
type SeatConflictError struct {
	BookedSeats   []string `json:"booked_seats"`
	ReservedSeats []string `json:"reserved_seats"`
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat conflict: %d booked, %d reserved by others",
		len(e.BookedSeats), len(e.ReservedSeats))
}

// ValidationError is returned for malformed or out-of-range submitted data.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// NetworkError wraps a transport-level failure talking to an upstream API.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
