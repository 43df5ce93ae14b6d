package booking

import (
	"github.com/google/uuid"

	"theater-booking-platform/internal/models"
)

// regroupForSeatSelection rebuilds the basket for a return to seat
// selection. Manual-seat tickets are kept verbatim. Convertible tickets
// (best-available or free-selection origin) are collapsed by seat group and
// price category into counts and reconstituted as fresh best-available
// placeholders, discarding their old identities. Cross-selling add-ons
// survive only if standalone or attached to a kept ticket. Coupons never
// survive.
func regroupForSeatSelection(items []models.LineItem) []models.LineItem {
	type groupKey struct {
		seatGroupID     string
		priceCategoryID string
	}

	kept := make(map[string]bool)
	var manual []models.LineItem
	var order []groupKey
	counts := make(map[groupKey]int)
	prototypes := make(map[groupKey]models.LineItem)

	for _, item := range items {
		if item.Type != models.LineItemTicket {
			continue
		}
		if !item.IsBestAvailable() {
			manual = append(manual, item)
			kept[item.ID] = true
			continue
		}
		key := groupKey{item.SeatGroupID, item.PriceCategoryID}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
			prototypes[key] = item
		}
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		counts[key] += qty
	}

	out := append([]models.LineItem(nil), manual...)
	for _, key := range order {
		proto := prototypes[key]
		count := counts[key]
		out = append(out, models.LineItem{
			ID:              uuid.New().String(),
			Type:            models.LineItemTicket,
			Name:            proto.Name,
			Quantity:        count,
			UnitPriceCents:  proto.UnitPriceCents,
			TotalCents:      proto.UnitPriceCents * int64(count),
			Currency:        proto.Currency,
			VATRateBps:      proto.VATRateBps,
			SeatNumber:      models.BestAvailableSeat,
			SeatGroupID:     key.seatGroupID,
			PriceCategoryID: key.priceCategoryID,
		})
	}

	for _, item := range items {
		if item.Type != models.LineItemCrossSelling {
			continue
		}
		if item.TicketRef == "" || kept[item.TicketRef] {
			out = append(out, item)
		}
	}

	return out
}

// reconstructLineItems re-derives full ticket line items from raw
// reservation records by cross-referencing the show's pricing structure.
// Records whose price category can no longer be found are dropped; their
// category ids are returned so the caller can warn about them.
func reconstructLineItems(records []models.ReservationRecord, show *models.Show) ([]models.LineItem, []string) {
	var items []models.LineItem
	var dropped []string

	for _, record := range records {
		group, category := show.FindPriceCategory(record.PriceCategoryID)
		if category == nil {
			dropped = append(dropped, record.PriceCategoryID)
			continue
		}

		item := models.LineItem{
			ID:              uuid.New().String(),
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
		if _, seat := show.FindSeat(record.SeatID); seat != nil {
			item.SeatID = seat.ID
			item.SeatNumber = seat.SeatNumber
			item.SeatRow = seat.Row
		} else {
			item.SeatNumber = models.BestAvailableSeat
		}
		items = append(items, item)
	}

	return items, dropped
}
