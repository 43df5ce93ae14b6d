package models

import "strings"

// Coupon is a discount code together with the line item the coupon API
// computed for the current basket.
type Coupon struct {
	Code          string `json:"code"`
	DiscountCents int64  `json:"discount_cents"`
	Description   string `json:"description"`
	AutoApplied   bool   `json:"auto_applied"`
}

// RejectedCoupon names a code the coupon API refused, with a reason.
type RejectedCoupon struct {
	Code        string `json:"code"`
	Reason      string `json:"reason"`
	AutoApplied bool   `json:"auto_applied"`
}

// CouponContext is what the coupon API needs to decide applicability:
// the basket as it stands plus where in the catalog it was assembled.
type CouponContext struct {
	Currency         string     `json:"currency"`
	LineItems        []LineItem `json:"line_items"`
	SeatGroupIDs     []string   `json:"seat_group_ids"`
	ShowID           string     `json:"show_id"`
	SeriesID         string     `json:"series_id"`
	SeasonID         string     `json:"season_id"`
	DeliveryFeeCents int64      `json:"delivery_fee_cents"`
	CustomerID       string     `json:"customer_id,omitempty"`
}

// IsAutoApplied reports whether a rejected coupon was auto-applied. It
// prefers the explicit flag; when the API did not set one it falls back to
// the historical heuristic (code contains "AUTO", or the rejection reason
// mentions a minimum).
func (rc *RejectedCoupon) IsAutoApplied() bool {
	if rc.AutoApplied {
		return true
	}
	if strings.Contains(strings.ToUpper(rc.Code), "AUTO") {
		return true
	}
	return strings.Contains(strings.ToLower(rc.Reason), "minimum")
}
