package services

import (
	"context"
	"net/http"

	"theater-booking-platform/internal/models"
)

// OrderService talks to the order API: create an intent first, then place
// the order referencing intent id, nonce and session id. The server
// re-validates seats and amounts and answers with structured codes on
// mismatch.
type OrderService struct {
	*apiClient
}

// NewOrderService creates an order client against the given base URL.
func NewOrderService(baseURL string) *OrderService {
	return &OrderService{apiClient: newAPIClient(baseURL)}
}

func (s *OrderService) CreateIntent(ctx context.Context, req *models.OrderRequest) (*models.OrderIntent, error) {
	var intent models.OrderIntent
	if err := s.doJSON(ctx, http.MethodPost, "/orders/intent", req, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

type placeOrderRequest struct {
	IntentID string               `json:"intent_id"`
	Nonce    string               `json:"nonce"`
	Order    *models.OrderRequest `json:"order"`
}

func (s *OrderService) PlaceOrder(ctx context.Context, intentID, nonce string, req *models.OrderRequest) (*models.PlacedOrder, error) {
	var placed models.PlacedOrder
	body := placeOrderRequest{IntentID: intentID, Nonce: nonce, Order: req}
	if err := s.doJSON(ctx, http.MethodPost, "/orders", body, &placed); err != nil {
		return nil, err
	}
	return &placed, nil
}
