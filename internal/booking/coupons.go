package booking

import (
	"context"
	"log"

	"theater-booking-platform/internal/models"
)

// reconcileCoupons runs after every transition and decides whether the
// basket change warrants an auto-apply probe or a revalidation round. Both
// are fire-and-forget: failures are logged and never disturb the user flow.
// The triggers compare item signatures recorded in the state, so neither
// operation can be re-triggered by the coupon mutations it causes itself.
func (e *Engine) reconcileCoupons(next State) {
	e.maybeAutoApply(next)
	e.maybeRevalidate(next)
}

// maybeAutoApply requests auto-applicable coupons whenever the non-coupon
// basket contents changed while the user reviews the basket and the pricing
// reference data is loaded.
func (e *Engine) maybeAutoApply(s State) {
	if s.CurrentStep != StepWarenkorb || s.SelectedShow == nil || s.ReferenceData == nil {
		return
	}
	signature := ItemSignature(s.Basket.LineItems)
	if signature == "" || signature == s.LastAutoApplySignature {
		return
	}

	e.Dispatch(AutoApplyRequested{Signature: signature})
	couponCtx := buildCouponContext(s)

	e.asyncEffects.Add(1)
	go func() {
		defer e.asyncEffects.Done()
		ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
		defer cancel()
		coupons, err := e.coupons.AutoApply(ctx, couponCtx)
		if err != nil {
			log.Printf("Coupon auto-apply failed for session %s: %v", s.SessionID, err)
			return
		}
		if len(coupons) > 0 {
			e.Dispatch(CouponsAutoApplied{Coupons: coupons})
		}
	}()
}

// maybeRevalidate re-validates all applied codes when the ticket and
// cross-selling signature changed on the basket or checkout step, including
// the case where the signature became empty while coupons remain applied.
// An in-flight round blocks a new one; the signature latch keeps the
// completion from re-firing it.
func (e *Engine) maybeRevalidate(s State) {
	if s.CurrentStep != StepWarenkorb && s.CurrentStep != StepCheckout {
		return
	}
	if len(s.AppliedCoupons) == 0 || s.RevalidationInFlight {
		return
	}
	signature := ItemSignature(s.Basket.LineItems)
	if signature == s.LastItemSignature {
		return
	}

	e.Dispatch(RevalidationStarted{Signature: signature})
	couponCtx := buildCouponContext(s)
	codes := append([]string(nil), s.AppliedCoupons...)

	e.asyncEffects.Add(1)
	go func() {
		defer e.asyncEffects.Done()
		ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
		defer cancel()
		valid, rejected, err := e.coupons.Validate(ctx, codes, couponCtx)
		if err != nil {
			log.Printf("Coupon revalidation failed for session %s: %v", s.SessionID, err)
			e.Dispatch(RevalidationFailed{})
			return
		}
		e.Dispatch(RevalidationCompleted{Valid: valid, Rejected: rejected})
	}()
}

// ValidateCoupon checks one user-entered code against the current basket
// and applies it when valid. Unlike the background reconciliation this is
// user-initiated, so failures are surfaced.
func (e *Engine) ValidateCoupon(ctx context.Context, code string) (State, error) {
	snapshot := e.Snapshot()
	if couponApplied(&snapshot, code) {
		return snapshot, models.ErrDuplicateCoupon
	}

	valid, rejected, err := e.coupons.Validate(ctx, []string{code}, buildCouponContext(snapshot))
	if err != nil {
		return snapshot, err
	}
	for _, r := range rejected {
		if r.Code == code {
			return snapshot, &models.ValidationError{Field: "coupon", Message: r.Reason}
		}
	}
	for _, coupon := range valid {
		if coupon.Code == code {
			return e.Dispatch(ApplyCoupon{Coupon: coupon}), nil
		}
	}
	return snapshot, &models.ValidationError{Field: "coupon", Message: "coupon not applicable"}
}

// buildCouponContext assembles what the coupon API needs to judge
// applicability for the basket as it stands.
func buildCouponContext(s State) models.CouponContext {
	couponCtx := models.CouponContext{
		Currency:  currency(&s),
		LineItems: models.CloneLineItems(s.Basket.LineItems),
	}

	seen := make(map[string]bool)
	for _, item := range s.Basket.LineItems {
		if item.Type == models.LineItemTicket && item.SeatGroupID != "" && !seen[item.SeatGroupID] {
			seen[item.SeatGroupID] = true
			couponCtx.SeatGroupIDs = append(couponCtx.SeatGroupIDs, item.SeatGroupID)
		}
	}
	if s.SelectedShow != nil {
		couponCtx.ShowID = s.SelectedShow.ID
		couponCtx.SeriesID = s.SelectedShow.SeriesID
		couponCtx.SeasonID = s.SelectedShow.SeasonID
	}
	if s.Delivery != nil {
		couponCtx.DeliveryFeeCents = s.Delivery.FeeCents
	}
	return couponCtx
}
