package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"theater-booking-platform/internal/models"
)

// MockOrderService implements the two-step intent/placement contract in
// memory. Intents are nonce-protected: the nonce is a signed token binding
// intent id, session, seat set and expected amount, so every mismatch of
// the security taxonomy is reproducible in development and tests.
type MockOrderService struct {
	mu           sync.Mutex
	secret       []byte
	clock        func() time.Time
	intentTTL    time.Duration
	usedIntents  map[string]bool
	conflictSets map[string][]string // seat id -> conflict kind ("booked"/"reserved")
	placed       []*models.PlacedOrder
	sequence     int
}

// NewMockOrderService creates the in-memory order backend.
func NewMockOrderService(secret string) *MockOrderService {
	return &MockOrderService{
		secret:       []byte(secret),
		clock:        time.Now,
		intentTTL:    2 * time.Minute,
		usedIntents:  make(map[string]bool),
		conflictSets: make(map[string][]string),
	}
}

// WithClock overrides the time source; used by tests.
func (s *MockOrderService) WithClock(clock func() time.Time) *MockOrderService {
	s.clock = clock
	return s
}

// SetSeatConflict marks a seat as taken so the next placement touching it
// fails with a seat conflict. Kind is "booked" or "reserved".
func (s *MockOrderService) SetSeatConflict(seatID, kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflictSets[seatID] = append(s.conflictSets[seatID], kind)
}

func (s *MockOrderService) CreateIntent(ctx context.Context, req *models.OrderRequest) (*models.OrderIntent, error) {
	if req.SessionID == "" {
		return nil, &models.SecurityError{Code: models.SecSessionRequired}
	}

	intentID := uuid.New().String()
	expiresAt := s.clock().Add(s.intentTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"intent_id": intentID,
		"session":   req.SessionID,
		"seats":     seatFingerprint(req.SeatIDs),
		"amount":    req.ExpectedTotalCents,
		"exp":       expiresAt.Unix(),
	})
	nonce, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &models.OrderIntent{
		IntentID:           intentID,
		Nonce:              nonce,
		ExpectedTotalCents: req.ExpectedTotalCents,
		ExpiresAt:          expiresAt,
	}, nil
}

func (s *MockOrderService) PlaceOrder(ctx context.Context, intentID, nonce string, req *models.OrderRequest) (*models.PlacedOrder, error) {
	if req.SessionID == "" {
		return nil, &models.SecurityError{Code: models.SecSessionRequired}
	}

	token, err := jwt.Parse(nonce, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, &models.SecurityError{Code: models.SecInvalidNonce}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, &models.SecurityError{Code: models.SecInvalidNonce}
	}

	if claims["intent_id"] != intentID {
		return nil, &models.SecurityError{Code: models.SecInvalidIntent}
	}
	if claims["session"] != req.SessionID {
		return nil, &models.SecurityError{Code: models.SecSessionMismatch}
	}
	if claims["seats"] != seatFingerprint(req.SeatIDs) {
		return nil, &models.SecurityError{Code: models.SecSeatMismatch}
	}
	if amount, ok := claims["amount"].(float64); !ok || int64(amount) != req.ExpectedTotalCents {
		return nil, &models.SecurityError{Code: models.SecAmountMismatch}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usedIntents[intentID] {
		return nil, &models.SecurityError{Code: models.SecAlreadyUsed}
	}

	var booked, reserved []string
	for _, seatID := range req.SeatIDs {
		for _, kind := range s.conflictSets[seatID] {
			if kind == "booked" {
				booked = append(booked, seatID)
			} else {
				reserved = append(reserved, seatID)
			}
		}
	}
	if len(booked)+len(reserved) > 0 {
		return nil, &models.SeatConflictError{BookedSeats: booked, ReservedSeats: reserved}
	}

	s.usedIntents[intentID] = true
	s.sequence++

	placed := &models.PlacedOrder{
		OrderNumber: fmt.Sprintf("TF-%d-%05d", s.clock().Year(), s.sequence),
		ShowID:      req.ShowID,
		LineItems:   models.CloneLineItems(req.LineItems),
		TotalCents:  req.ExpectedTotalCents,
		Currency:    currencyOf(req.LineItems),
		PlacedAt:    s.clock(),
	}
	s.placed = append(s.placed, placed)
	return placed, nil
}

// PlacedOrders returns everything placed so far; used by tests.
func (s *MockOrderService) PlacedOrders() []*models.PlacedOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.PlacedOrder(nil), s.placed...)
}

func seatFingerprint(seatIDs []string) string {
	sorted := append([]string(nil), seatIDs...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	return hex.EncodeToString(sum[:])
}

func currencyOf(items []models.LineItem) string {
	for _, item := range items {
		if item.Currency != "" {
			return item.Currency
		}
	}
	return "EUR"
}
