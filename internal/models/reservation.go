package models

import "time"

// ReservationRecord is one server-confirmed seat hold. PriceCategoryID is
// the category selected at reservation time.
type ReservationRecord struct {
	ID              string `json:"id"`
	ShowID          string `json:"show_id"`
	SeatID          string `json:"seat_id"`
	PriceCategoryID string `json:"price_category_id"`
}

// Reservation is the server-issued, time-boxed claim on a set of seats.
type Reservation struct {
	Records   []ReservationRecord `json:"records"`
	ShowID    string              `json:"show_id"`
	ExpiresAt time.Time           `json:"expires_at"`
	CanExtend bool                `json:"can_extend"`
}

// Expired reports whether the reservation is past its expiry at the given
// instant.
func (r *Reservation) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// TimeRemaining returns the milliseconds-resolution duration until expiry,
// floored at zero.
func (r *Reservation) TimeRemaining(now time.Time) time.Duration {
	if remaining := r.ExpiresAt.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}
