package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"theater-booking-platform/internal/booking"
	"theater-booking-platform/internal/middleware"
	"theater-booking-platform/internal/models"
	"theater-booking-platform/internal/repositories"
	"theater-booking-platform/internal/session"

	"github.com/go-chi/chi/v5"
)

// CheckoutHandler runs order placement and serves placed order lookups.
type CheckoutHandler struct {
	registry *session.Registry
	orders   *repositories.OrderRepository
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(registry *session.Registry, orders *repositories.OrderRepository) *CheckoutHandler {
	return &CheckoutHandler{registry: registry, orders: orders}
}

// PlaceOrder runs the intent/placement flow for the current basket. On
// success the order snapshot is persisted and the state advances to the
// payment step.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	if sessionID == "" {
		writeError(w, &models.SecurityError{Code: models.SecSessionRequired})
		return
	}
	engine := h.registry.GetOrCreate(r.Context(), sessionID)

	var customer booking.CustomerInfo
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		writeError(w, &models.ValidationError{Field: "customer", Message: "invalid customer data"})
		return
	}
	if !strings.Contains(customer.Email, "@") {
		writeError(w, &models.ValidationError{Field: "email", Message: "valid email required"})
		return
	}
	if customer.PaymentMethodID == "" {
		writeError(w, &models.ValidationError{Field: "payment_method_id", Message: "payment method required"})
		return
	}

	order, err := engine.PlaceOrder(r.Context(), customer)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	// The order exists upstream either way; a snapshot write failure must
	// not fail the checkout.
	if err := h.orders.Create(sessionID, order); err != nil {
		log.Printf("Failed to store order snapshot %s: %v", order.OrderNumber, err)
	}

	writeJSON(w, http.StatusCreated, struct {
		Order *models.PlacedOrder `json:"order"`
		State booking.State       `json:"state"`
	}{Order: order, State: engine.Snapshot()})
}

// GetOrder returns one placed order snapshot by order number. Orders are
// only visible to the session that placed them.
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	if sessionID == "" {
		writeError(w, &models.SecurityError{Code: models.SecSessionRequired})
		return
	}

	orderNumber := chi.URLParam(r, "orderNumber")
	order, err := h.orders.GetByOrderNumber(orderNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	mine, err := h.orders.GetBySession(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	for _, o := range mine {
		if o.OrderNumber == order.OrderNumber {
			writeJSON(w, http.StatusOK, order)
			return
		}
	}
	writeError(w, models.ErrOrderNotFound)
}

// ListOrders returns the session's placed orders, newest first.
func (h *CheckoutHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	if sessionID == "" {
		writeError(w, &models.SecurityError{Code: models.SecSessionRequired})
		return
	}

	orders, err := h.orders.GetBySession(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if orders == nil {
		orders = []*models.PlacedOrder{}
	}
	writeJSON(w, http.StatusOK, orders)
}
