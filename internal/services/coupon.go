package services

import (
	"context"
	"net/http"

	"theater-booking-platform/internal/models"
)

// CouponService talks to the coupon API for validation and auto-apply.
type CouponService struct {
	*apiClient
}

// NewCouponService creates a coupon client against the given base URL.
func NewCouponService(baseURL string) *CouponService {
	return &CouponService{apiClient: newAPIClient(baseURL)}
}

type validateCouponsRequest struct {
	Codes   []string             `json:"codes"`
	Context models.CouponContext `json:"context"`
}

type validateCouponsResponse struct {
	Valid    []models.Coupon         `json:"valid"`
	Rejected []models.RejectedCoupon `json:"rejected"`
}

func (s *CouponService) Validate(ctx context.Context, codes []string, couponCtx models.CouponContext) ([]models.Coupon, []models.RejectedCoupon, error) {
	var resp validateCouponsResponse
	req := validateCouponsRequest{Codes: codes, Context: couponCtx}
	if err := s.doJSON(ctx, http.MethodPost, "/coupons/validate", req, &resp); err != nil {
		return nil, nil, err
	}
	return resp.Valid, resp.Rejected, nil
}

type autoApplyResponse struct {
	Coupons []models.Coupon `json:"coupons"`
}

func (s *CouponService) AutoApply(ctx context.Context, couponCtx models.CouponContext) ([]models.Coupon, error) {
	var resp autoApplyResponse
	if err := s.doJSON(ctx, http.MethodPost, "/coupons/auto-apply", couponCtx, &resp); err != nil {
		return nil, err
	}
	return resp.Coupons, nil
}
