package services

import (
	"context"
	"time"

	"theater-booking-platform/internal/models"
)

// SeatSelection is one seat pick sent to the reservation API. PriceCategoryID
// is pinned at selection time.
type SeatSelection struct {
	SeatID          string `json:"seat_id"`
	PriceCategoryID string `json:"price_category_id"`
	// Quantity is used for best-available selections where SeatID is empty.
	Quantity int `json:"quantity,omitempty"`
}

// PricingServiceInterface defines the show/pricing data provider.
type PricingServiceInterface interface {
	GetShowByID(ctx context.Context, id string) (*models.Show, error)
	GetShowBySlug(ctx context.Context, slug string) (*models.Show, error)
	GetSeasonBundle(ctx context.Context, seasonID string) (*models.SeasonBundle, error)
}

// ReservationServiceInterface defines the reservation API.
type ReservationServiceInterface interface {
	Create(ctx context.Context, sessionID, showID string, seats []SeatSelection) (*models.Reservation, error)
	Extend(ctx context.Context, sessionID, showID string) (time.Time, error)
	Release(ctx context.Context, sessionID, showID string) error
	FindBySession(ctx context.Context, sessionID string) (*models.Reservation, error)
}

// CouponServiceInterface defines the coupon API.
type CouponServiceInterface interface {
	Validate(ctx context.Context, codes []string, couponCtx models.CouponContext) ([]models.Coupon, []models.RejectedCoupon, error)
	AutoApply(ctx context.Context, couponCtx models.CouponContext) ([]models.Coupon, error)
}

// OrderServiceInterface defines the two-step intent/placement order API.
type OrderServiceInterface interface {
	CreateIntent(ctx context.Context, req *models.OrderRequest) (*models.OrderIntent, error)
	PlaceOrder(ctx context.Context, intentID, nonce string, req *models.OrderRequest) (*models.PlacedOrder, error)
}
