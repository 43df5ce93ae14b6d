package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theater-booking-platform/internal/models"
)

func TestComputeBreakdown(t *testing.T) {
	feeConfig := models.OrganizerFeeConfig{FlatCents: 150, PercentBps: 250}

	t.Run("empty basket", func(t *testing.T) {
		breakdown := ComputeBreakdown(nil, models.OrganizerFeeConfig{}, nil)

		require.NotNil(t, breakdown)
		assert.Equal(t, "EUR", breakdown.Currency)
		assert.Equal(t, int64(0), breakdown.SubtotalCents)
		assert.Equal(t, int64(0), breakdown.TotalCents)
		assert.Empty(t, breakdown.VATAmounts)
	})

	t.Run("sums tickets and cross-selling into the subtotal", func(t *testing.T) {
		items := []models.LineItem{
			{Type: models.LineItemTicket, TotalCents: 4900, VATRateBps: 700, Currency: "EUR"},
			{Type: models.LineItemTicket, TotalCents: 3900, VATRateBps: 700, Currency: "EUR"},
			{Type: models.LineItemCrossSelling, TotalCents: 1200, VATRateBps: 1900, Currency: "EUR"},
		}

		breakdown := ComputeBreakdown(items, models.OrganizerFeeConfig{}, nil)

		assert.Equal(t, int64(10000), breakdown.SubtotalCents)
		assert.Equal(t, int64(10000), breakdown.TotalCents)
	})

	t.Run("extracts the contained VAT share per rate", func(t *testing.T) {
		items := []models.LineItem{
			{Type: models.LineItemTicket, TotalCents: 10700, VATRateBps: 700},
			{Type: models.LineItemCrossSelling, TotalCents: 1190, VATRateBps: 1900},
		}

		breakdown := ComputeBreakdown(items, models.OrganizerFeeConfig{}, nil)

		// Prices are gross: 10700 at 7% contains exactly 700, 1190 at 19%
		// contains exactly 190.
		require.Len(t, breakdown.VATAmounts, 2)
		assert.Equal(t, 700, breakdown.VATAmounts[0].RateBps)
		assert.Equal(t, int64(10700), breakdown.VATAmounts[0].GrossCents)
		assert.Equal(t, int64(700), breakdown.VATAmounts[0].AmountCents)
		assert.Equal(t, 1900, breakdown.VATAmounts[1].RateBps)
		assert.Equal(t, int64(190), breakdown.VATAmounts[1].AmountCents)
	})

	t.Run("VAT buckets are sorted by rate", func(t *testing.T) {
		items := []models.LineItem{
			{Type: models.LineItemCrossSelling, TotalCents: 1000, VATRateBps: 1900},
			{Type: models.LineItemTicket, TotalCents: 1000, VATRateBps: 700},
			{Type: models.LineItemTicket, TotalCents: 1000, VATRateBps: 0},
		}

		breakdown := ComputeBreakdown(items, models.OrganizerFeeConfig{}, nil)

		require.Len(t, breakdown.VATAmounts, 3)
		assert.Equal(t, 0, breakdown.VATAmounts[0].RateBps)
		assert.Equal(t, 700, breakdown.VATAmounts[1].RateBps)
		assert.Equal(t, 1900, breakdown.VATAmounts[2].RateBps)
		assert.Equal(t, int64(0), breakdown.VATAmounts[0].AmountCents)
	})

	t.Run("applies delivery and system fees", func(t *testing.T) {
		items := []models.LineItem{
			{Type: models.LineItemTicket, TotalCents: 10000, VATRateBps: 700},
		}
		delivery := &models.DeliveryOption{ID: "do-post", FeeCents: 390}

		breakdown := ComputeBreakdown(items, feeConfig, delivery)

		assert.Equal(t, int64(390), breakdown.DeliveryFeeCents)
		// 150 flat + 2.5% of 10000
		assert.Equal(t, int64(400), breakdown.SystemFeeCents)
		assert.Equal(t, int64(10790), breakdown.TotalCents)
	})

	t.Run("coupons reduce the total but not the subtotal", func(t *testing.T) {
		items := []models.LineItem{
			{Type: models.LineItemTicket, TotalCents: 5000, VATRateBps: 700},
			{Type: models.LineItemCoupon, TotalCents: -1000, DiscountCents: 1000},
		}

		breakdown := ComputeBreakdown(items, models.OrganizerFeeConfig{}, nil)

		assert.Equal(t, int64(5000), breakdown.SubtotalCents)
		assert.Equal(t, int64(1000), breakdown.DiscountCents)
		assert.Equal(t, int64(4000), breakdown.TotalCents)
	})

	t.Run("total never goes below zero", func(t *testing.T) {
		items := []models.LineItem{
			{Type: models.LineItemTicket, TotalCents: 1000, VATRateBps: 700},
			{Type: models.LineItemCoupon, TotalCents: -5000, DiscountCents: 5000},
		}

		breakdown := ComputeBreakdown(items, models.OrganizerFeeConfig{}, nil)

		assert.Equal(t, int64(0), breakdown.TotalCents)
	})

	t.Run("picks the currency up from the items", func(t *testing.T) {
		items := []models.LineItem{
			{Type: models.LineItemTicket, TotalCents: 1000, Currency: "CHF"},
		}

		breakdown := ComputeBreakdown(items, models.OrganizerFeeConfig{}, nil)

		assert.Equal(t, "CHF", breakdown.Currency)
	})

	t.Run("is deterministic for identical input", func(t *testing.T) {
		items := []models.LineItem{
			{Type: models.LineItemTicket, TotalCents: 4900, VATRateBps: 700},
			{Type: models.LineItemCoupon, TotalCents: -500, DiscountCents: 500},
		}

		first := ComputeBreakdown(items, feeConfig, nil)
		second := ComputeBreakdown(items, feeConfig, nil)

		assert.Equal(t, first, second)
	})
}
