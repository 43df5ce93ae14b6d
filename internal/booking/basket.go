package booking

import (
	"github.com/google/uuid"

	"theater-booking-platform/internal/models"
)

// newLineItemID mints a line item identity.
func newLineItemID() string {
	return uuid.New().String()
}

// addItems appends items, skipping ticket items whose seat number is
// already occupied in the basket. Best-available tickets carry no seat
// number and are never deduplicated. Returns the skipped seat numbers.
func addItems(existing, incoming []models.LineItem) ([]models.LineItem, []string) {
	taken := make(map[string]bool)
	for _, item := range existing {
		if item.Type == models.LineItemTicket && !item.IsBestAvailable() {
			taken[item.SeatNumber] = true
		}
	}

	out := append([]models.LineItem(nil), existing...)
	var skipped []string
	for _, item := range incoming {
		if item.Type == models.LineItemTicket && !item.IsBestAvailable() {
			if taken[item.SeatNumber] {
				skipped = append(skipped, item.SeatNumber)
				continue
			}
			taken[item.SeatNumber] = true
		}
		out = append(out, item)
	}
	return out, skipped
}

// removeItem removes one item by id. Removing a ticket also removes every
// pre-show cross-selling add-on referencing that ticket, atomically.
func removeItem(items []models.LineItem, id string) []models.LineItem {
	var removedTicket bool
	for _, item := range items {
		if item.ID == id && item.Type == models.LineItemTicket {
			removedTicket = true
			break
		}
	}

	out := make([]models.LineItem, 0, len(items))
	for _, item := range items {
		if item.ID == id {
			continue
		}
		if removedTicket && item.Type == models.LineItemCrossSelling && item.TicketRef == id {
			continue
		}
		out = append(out, item)
	}
	return out
}

// patchItem shallow-merges the patch onto the item with the given id.
func patchItem(items []models.LineItem, id string, patch LineItemPatch) []models.LineItem {
	out := append([]models.LineItem(nil), items...)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if patch.Quantity != nil {
			out[i].Quantity = *patch.Quantity
		}
		if patch.UnitPriceCents != nil {
			out[i].UnitPriceCents = *patch.UnitPriceCents
		}
		if patch.TotalCents != nil {
			out[i].TotalCents = *patch.TotalCents
		}
		if patch.Name != nil {
			out[i].Name = *patch.Name
		}
		break
	}
	return out
}

// refreshDerived re-establishes everything derived from the item list: the
// financial breakdown (or nil while reference data is missing) and the
// applied-coupon set, which by invariant always mirrors the coupon items.
func refreshDerived(s *State) {
	if s.ReferenceData != nil {
		s.Basket.Breakdown = ComputeBreakdown(s.Basket.LineItems, s.ReferenceData.FeeConfig, s.Delivery)
	} else {
		s.Basket.Breakdown = nil
	}
	s.AppliedCoupons = s.Basket.CouponCodes()
}

// withoutCoupons filters coupon line items out.
func withoutCoupons(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, 0, len(items))
	for _, item := range items {
		if item.Type == models.LineItemCoupon {
			continue
		}
		out = append(out, item)
	}
	return out
}
