package models

// VATAmount is the VAT share contained in the gross sums for one rate.
type VATAmount struct {
	RateBps     int   `json:"rate_bps"`
	GrossCents  int64 `json:"gross_cents"`
	AmountCents int64 `json:"amount_cents"`
}

// FinancialBreakdown is the computed money view of the basket. Prices are
// gross; the VAT amounts are informational, not added on top.
type FinancialBreakdown struct {
	Currency         string      `json:"currency"`
	SubtotalCents    int64       `json:"subtotal_cents"`
	VATAmounts       []VATAmount `json:"vat_amounts"`
	DeliveryFeeCents int64       `json:"delivery_fee_cents"`
	SystemFeeCents   int64       `json:"system_fee_cents"`
	DiscountCents    int64       `json:"discount_cents"`
	TotalCents       int64       `json:"total_cents"`
}
