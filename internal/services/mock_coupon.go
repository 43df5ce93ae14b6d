package services

import (
	"context"
	"strings"
	"sync"

	"theater-booking-platform/internal/models"
)

// mockCouponRule is one code the mock coupon backend knows.
type mockCouponRule struct {
	Code             string
	Description      string
	FixedCents       int64
	PercentBps       int
	MinSubtotalCents int64
	AutoApplied      bool
}

// MockCouponService validates and auto-applies a fixed set of codes.
type MockCouponService struct {
	mu    sync.Mutex
	rules map[string]mockCouponRule
}

// NewMockCouponService seeds the default codes: FESTIVAL10 (manual, fixed
// discount) and AUTOSOMMER (auto-applied percentage above a minimum).
func NewMockCouponService() *MockCouponService {
	service := &MockCouponService{rules: make(map[string]mockCouponRule)}
	service.AddRule(mockCouponRule{
		Code:             "FESTIVAL10",
		Description:      "10 € Festivalrabatt",
		FixedCents:       1000,
		MinSubtotalCents: 3000,
	})
	service.AddRule(mockCouponRule{
		Code:             "AUTOSOMMER",
		Description:      "Sommeraktion -10%",
		PercentBps:       1000,
		MinSubtotalCents: 5000,
		AutoApplied:      true,
	})
	return service
}

// AddRule registers a coupon code.
func (s *MockCouponService) AddRule(rule mockCouponRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[strings.ToUpper(rule.Code)] = rule
}

func (s *MockCouponService) Validate(ctx context.Context, codes []string, couponCtx models.CouponContext) ([]models.Coupon, []models.RejectedCoupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subtotal := nonCouponSubtotal(couponCtx.LineItems)
	var valid []models.Coupon
	var rejected []models.RejectedCoupon

	for _, code := range codes {
		rule, ok := s.rules[strings.ToUpper(code)]
		if !ok {
			rejected = append(rejected, models.RejectedCoupon{Code: code, Reason: "unknown code"})
			continue
		}
		if subtotal < rule.MinSubtotalCents {
			rejected = append(rejected, models.RejectedCoupon{
				Code:        code,
				Reason:      "minimum order value not reached",
				AutoApplied: rule.AutoApplied,
			})
			continue
		}
		valid = append(valid, rule.toCoupon(subtotal))
	}
	return valid, rejected, nil
}

func (s *MockCouponService) AutoApply(ctx context.Context, couponCtx models.CouponContext) ([]models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subtotal := nonCouponSubtotal(couponCtx.LineItems)
	var coupons []models.Coupon
	for _, rule := range s.rules {
		if rule.AutoApplied && subtotal >= rule.MinSubtotalCents {
			coupons = append(coupons, rule.toCoupon(subtotal))
		}
	}
	return coupons, nil
}

func (r mockCouponRule) toCoupon(subtotalCents int64) models.Coupon {
	discount := r.FixedCents
	if r.PercentBps > 0 {
		discount += subtotalCents * int64(r.PercentBps) / 10000
	}
	return models.Coupon{
		Code:          r.Code,
		Description:   r.Description,
		DiscountCents: discount,
		AutoApplied:   r.AutoApplied,
	}
}

func nonCouponSubtotal(items []models.LineItem) int64 {
	var subtotal int64
	for _, item := range items {
		switch item.Type {
		case models.LineItemTicket, models.LineItemCrossSelling:
			subtotal += item.TotalCents
		case models.LineItemCoupon:
			// discounts do not count toward coupon minimums
		}
	}
	return subtotal
}
