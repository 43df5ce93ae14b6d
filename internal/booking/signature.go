package booking

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"theater-booking-platform/internal/models"
)

// ItemSignature fingerprints the ticket and cross-selling items of the
// basket. Coupons are excluded so coupon reconciliation cannot re-trigger
// itself through its own mutations. The signature is order-independent and
// covers type, id, quantity and total price.
func ItemSignature(items []models.LineItem) string {
	var parts []string
	for _, item := range items {
		switch item.Type {
		case models.LineItemTicket, models.LineItemCrossSelling:
			parts = append(parts, fmt.Sprintf("%s|%s|%d|%d", item.Type, item.ID, item.Quantity, item.TotalCents))
		case models.LineItemCoupon:
			// excluded by design
		}
	}
	if len(parts) == 0 {
		return ""
	}
	sort.Strings(parts)
	sum := sha256.Sum256([]byte(strings.Join(parts, "\n")))
	return hex.EncodeToString(sum[:])
}
