package models

import "time"

// Show represents a single scheduled performance with its own pricing
// structure and seat map.
type Show struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	SeriesID  string    `json:"series_id"`
	SeasonID  string    `json:"season_id"`
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"starts_at"`
	Venue     string    `json:"venue"`
	SeatGroups []SeatGroup `json:"seat_groups"`
}

// SeatGroup is a named partition of seats sharing a set of price categories.
type SeatGroup struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	FreeSelection   bool            `json:"free_selection"` // no fixed seat map, tickets are best-available
	Seats           []Seat          `json:"seats"`
	PriceCategories []PriceCategory `json:"price_categories"`
}

// Seat is one selectable seat inside a seat group.
type Seat struct {
	ID         string `json:"id"`
	SeatNumber string `json:"seat_number"`
	Row        string `json:"row"`
}

// PriceCategory is a named price tier within a seat group.
type PriceCategory struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
	VATRateBps int    `json:"vat_rate_bps"` // VAT rate in basis points, e.g. 1900 = 19%
}

// Series groups shows of the same production within a season.
type Series struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
}

// DeliveryOption is one way tickets reach the customer.
type DeliveryOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FeeCents int64  `json:"fee_cents"`
	Digital  bool   `json:"digital"`
}

// PaymentMethod is offered at checkout; handled by an external provider.
type PaymentMethod struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OrganizerFeeConfig describes the organizer system fee. Both the flat
// amount and the percentage share may apply at the same time.
type OrganizerFeeConfig struct {
	FlatCents  int64 `json:"flat_cents"`
	PercentBps int   `json:"percent_bps"` // share of the subtotal in basis points
}

// SeasonBundle is everything the pricing provider returns for one season:
// the reference data the basket needs before totals can be computed.
type SeasonBundle struct {
	SeasonID        string             `json:"season_id"`
	Series          []Series           `json:"series"`
	Shows           []Show             `json:"shows"`
	PaymentMethods  []PaymentMethod    `json:"payment_methods"`
	DeliveryOptions []DeliveryOption   `json:"delivery_options"`
	FeeConfig       OrganizerFeeConfig `json:"fee_config"`
}

// FindPriceCategory walks the show's pricing structure for a category id.
// Returns the owning seat group as well.
func (s *Show) FindPriceCategory(categoryID string) (*SeatGroup, *PriceCategory) {
	for gi := range s.SeatGroups {
		group := &s.SeatGroups[gi]
		for ci := range group.PriceCategories {
			if group.PriceCategories[ci].ID == categoryID {
				return group, &group.PriceCategories[ci]
			}
		}
	}
	return nil, nil
}

// FindSeat looks a seat up by id across all seat groups.
func (s *Show) FindSeat(seatID string) (*SeatGroup, *Seat) {
	for gi := range s.SeatGroups {
		group := &s.SeatGroups[gi]
		for si := range group.Seats {
			if group.Seats[si].ID == seatID {
				return group, &group.Seats[si]
			}
		}
	}
	return nil, nil
}
