package models

// LineItemType discriminates the basket line item variants.
type LineItemType string

const (
	LineItemTicket       LineItemType = "ticket"
	LineItemCrossSelling LineItemType = "crossselling"
	LineItemCoupon       LineItemType = "coupon"
)

// BestAvailableSeat is the sentinel seat number for tickets not bound to a
// specific seat; the actual seat is resolved at fulfillment time.
const BestAvailableSeat = "best_available"

// LineItem is one priced entry in the basket. The Type field selects which
// of the variant fields are meaningful; every consumer switches on it.
type LineItem struct {
	ID             string       `json:"id"`
	Type           LineItemType `json:"type"`
	Name           string       `json:"name"`
	Quantity       int          `json:"quantity"`
	UnitPriceCents int64        `json:"unit_price_cents"`
	TotalCents     int64        `json:"total_cents"`
	Currency       string       `json:"currency"`
	VATRateBps     int          `json:"vat_rate_bps"`

	// Ticket variant. PriceCategoryID is pinned at selection time and is
	// reused verbatim on any later reconstruction, never re-derived.
	SeatID          string `json:"seat_id,omitempty"`
	SeatNumber      string `json:"seat_number,omitempty"`
	SeatRow         string `json:"seat_row,omitempty"`
	SeatGroupID     string `json:"seat_group_id,omitempty"`
	PriceCategoryID string `json:"price_category_id,omitempty"`

	// Cross-selling variant: id of the ticket line item a pre-show add-on
	// is attached to. Empty for standalone add-ons.
	TicketRef string `json:"ticket_ref,omitempty"`

	// Coupon variant
	CouponCode    string `json:"coupon_code,omitempty"`
	DiscountCents int64  `json:"discount_cents,omitempty"`
}

// IsBestAvailable reports whether a ticket line item has no fixed seat.
func (li *LineItem) IsBestAvailable() bool {
	return li.Type == LineItemTicket && (li.SeatNumber == "" || li.SeatNumber == BestAvailableSeat)
}

// CloneLineItems copies a line item slice so reducer output never aliases
// reducer input.
func CloneLineItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
