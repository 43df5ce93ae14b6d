package booking

import (
	"sort"

	"theater-booking-platform/internal/models"
)

// DefaultCurrency is assumed when the basket is empty.
const DefaultCurrency = "EUR"

// ComputeBreakdown derives the money view from a line item list. It is a
// pure function: inputs are never mutated and identical inputs produce
// identical output. Prices are gross, so the per-rate VAT amounts are the
// shares contained in the sums, not an addition on top.
func ComputeBreakdown(items []models.LineItem, feeConfig models.OrganizerFeeConfig, delivery *models.DeliveryOption) *models.FinancialBreakdown {
	breakdown := &models.FinancialBreakdown{Currency: DefaultCurrency}

	grossByRate := make(map[int]int64)
	for _, item := range items {
		if breakdown.Currency == DefaultCurrency && item.Currency != "" {
			breakdown.Currency = item.Currency
		}
		switch item.Type {
		case models.LineItemTicket, models.LineItemCrossSelling:
			breakdown.SubtotalCents += item.TotalCents
			grossByRate[item.VATRateBps] += item.TotalCents
		case models.LineItemCoupon:
			breakdown.DiscountCents += item.DiscountCents
		}
	}

	rates := make([]int, 0, len(grossByRate))
	for rate := range grossByRate {
		rates = append(rates, rate)
	}
	sort.Ints(rates)
	for _, rate := range rates {
		gross := grossByRate[rate]
		breakdown.VATAmounts = append(breakdown.VATAmounts, models.VATAmount{
			RateBps:     rate,
			GrossCents:  gross,
			AmountCents: vatShare(gross, rate),
		})
	}

	if delivery != nil {
		breakdown.DeliveryFeeCents = delivery.FeeCents
	}

	breakdown.SystemFeeCents = feeConfig.FlatCents + breakdown.SubtotalCents*int64(feeConfig.PercentBps)/10000

	total := breakdown.SubtotalCents + breakdown.DeliveryFeeCents + breakdown.SystemFeeCents - breakdown.DiscountCents
	if total < 0 {
		total = 0
	}
	breakdown.TotalCents = total

	return breakdown
}

// vatShare extracts the VAT portion from a gross amount at the given rate
// in basis points.
func vatShare(grossCents int64, rateBps int) int64 {
	if rateBps <= 0 {
		return 0
	}
	return grossCents * int64(rateBps) / int64(10000+rateBps)
}
