package models

import "time"

// OrderIntent is a short-lived, nonce-protected pre-commitment to an
// order's expected seats and total, required before final placement.
type OrderIntent struct {
	IntentID           string    `json:"intent_id"`
	Nonce              string    `json:"nonce"`
	ExpectedTotalCents int64     `json:"expected_total_cents"`
	ExpiresAt          time.Time `json:"expires_at"`
}

// OrderRequest is the data gathered from the booking state for the two-step
// intent/placement flow.
type OrderRequest struct {
	SessionID          string     `json:"session_id"`
	ShowID             string     `json:"show_id"`
	SeatIDs            []string   `json:"seat_ids"`
	LineItems          []LineItem `json:"line_items"`
	DeliveryOptionID   string     `json:"delivery_option_id"`
	PaymentMethodID    string     `json:"payment_method_id"`
	ExpectedTotalCents int64      `json:"expected_total_cents"`
	CustomerEmail      string     `json:"customer_email"`
	CustomerName       string     `json:"customer_name"`
}

// PlacedOrder is the snapshot the reducer records once placement succeeds.
type PlacedOrder struct {
	OrderNumber string     `json:"order_number"`
	ShowID      string     `json:"show_id"`
	LineItems   []LineItem `json:"line_items"`
	TotalCents  int64      `json:"total_cents"`
	Currency    string     `json:"currency"`
	PlacedAt    time.Time  `json:"placed_at"`
}
