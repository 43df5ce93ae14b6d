package session

import (
	"context"
	"log"
	"sync"
	"time"

	"theater-booking-platform/internal/booking"
	"theater-booking-platform/internal/services"
)

// Registry owns one booking engine per browser session. Engines are
// created lazily on first touch; creation runs session recovery against
// the reservation API, so a returning visitor with a live hold gets their
// basket back.
type Registry struct {
	mu      sync.Mutex
	engines map[string]*booking.Engine

	pricing      services.PricingServiceInterface
	reservations services.ReservationServiceInterface
	coupons      services.CouponServiceInterface
	orders       services.OrderServiceInterface

	idleTimeout time.Duration
}

// NewRegistry wires the engine factory.
func NewRegistry(
	pricing services.PricingServiceInterface,
	reservations services.ReservationServiceInterface,
	coupons services.CouponServiceInterface,
	orders services.OrderServiceInterface,
	idleTimeout time.Duration,
) *Registry {
	return &Registry{
		engines:      make(map[string]*booking.Engine),
		pricing:      pricing,
		reservations: reservations,
		coupons:      coupons,
		orders:       orders,
		idleTimeout:  idleTimeout,
	}
}

// GetOrCreate returns the session's engine, creating it and running
// session recovery on first touch. Recovery failures are logged, never
// surfaced: a fresh booking simply starts at the date step.
func (r *Registry) GetOrCreate(ctx context.Context, sessionID string) *booking.Engine {
	r.mu.Lock()
	engine, exists := r.engines[sessionID]
	if !exists {
		engine = booking.NewEngine(sessionID, r.pricing, r.reservations, r.coupons, r.orders)
		r.engines[sessionID] = engine
	}
	r.mu.Unlock()

	engine.Touch()
	if !exists {
		if err := engine.Recover(ctx); err != nil {
			log.Printf("Session recovery failed for %s: %v", sessionID, err)
		}
	}
	return engine
}

// Route delivers a push event to the engine it belongs to. Events for
// unknown sessions are dropped; pushes are hints, not commands.
func (r *Registry) Route(event services.PushEvent) {
	r.mu.Lock()
	engine, ok := r.engines[event.SessionID]
	r.mu.Unlock()
	if !ok {
		return
	}
	engine.HandlePushEvent(event)
}

// StartEviction closes engines idle longer than the configured timeout.
// Closing cancels their countdown and push handling.
func (r *Registry) StartEviction(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.evictIdle(time.Now())
			}
		}
	}()
}

func (r *Registry) evictIdle(now time.Time) {
	r.mu.Lock()
	var idle []*booking.Engine
	for sessionID, engine := range r.engines {
		if now.Sub(engine.IdleSince()) > r.idleTimeout {
			idle = append(idle, engine)
			delete(r.engines, sessionID)
		}
	}
	r.mu.Unlock()

	for _, engine := range idle {
		engine.Close()
	}
}

// Close shuts every engine down.
func (r *Registry) Close() {
	r.mu.Lock()
	engines := make([]*booking.Engine, 0, len(r.engines))
	for _, engine := range r.engines {
		engines = append(engines, engine)
	}
	r.engines = make(map[string]*booking.Engine)
	r.mu.Unlock()

	for _, engine := range engines {
		engine.Close()
	}
}
