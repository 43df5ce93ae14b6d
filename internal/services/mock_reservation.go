package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"theater-booking-platform/internal/models"
)

// MockReservationService keeps time-boxed seat holds in memory. It mirrors
// the backend contract closely enough for development and tests: holds
// expire, extension is granted at most once per reservation, and seats held
// by one session conflict with another session's create call.
type MockReservationService struct {
	mu        sync.Mutex
	ttl       time.Duration
	extension time.Duration
	clock     func() time.Time

	bySession map[string]*models.Reservation
	extended  map[string]bool
}

// NewMockReservationService creates the in-memory reservation backend.
func NewMockReservationService(ttl, extension time.Duration) *MockReservationService {
	return &MockReservationService{
		ttl:       ttl,
		extension: extension,
		clock:     time.Now,
		bySession: make(map[string]*models.Reservation),
		extended:  make(map[string]bool),
	}
}

// WithClock overrides the time source; used by tests.
func (s *MockReservationService) WithClock(clock func() time.Time) *MockReservationService {
	s.clock = clock
	return s
}

func (s *MockReservationService) Create(ctx context.Context, sessionID, showID string, seats []SeatSelection) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	s.evictExpired(now)

	// Seats held by another session conflict.
	var conflicts []string
	for otherSession, held := range s.bySession {
		if otherSession == sessionID || held.ShowID != showID {
			continue
		}
		for _, record := range held.Records {
			for _, seat := range seats {
				if seat.SeatID != "" && seat.SeatID == record.SeatID {
					conflicts = append(conflicts, seat.SeatID)
				}
			}
		}
	}
	if len(conflicts) > 0 {
		return nil, &models.SeatConflictError{ReservedSeats: conflicts}
	}

	reservation := &models.Reservation{
		ShowID:    showID,
		ExpiresAt: now.Add(s.ttl),
		CanExtend: true,
	}
	for _, seat := range seats {
		qty := seat.Quantity
		if seat.SeatID != "" || qty <= 0 {
			qty = 1
		}
		for i := 0; i < qty; i++ {
			reservation.Records = append(reservation.Records, models.ReservationRecord{
				ID:              uuid.New().String(),
				ShowID:          showID,
				SeatID:          seat.SeatID,
				PriceCategoryID: seat.PriceCategoryID,
			})
		}
	}

	s.bySession[sessionID] = reservation
	delete(s.extended, sessionID)
	return cloneReservation(reservation), nil
}

func (s *MockReservationService) Extend(ctx context.Context, sessionID, showID string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, ok := s.bySession[sessionID]
	if !ok || reservation.ShowID != showID {
		return time.Time{}, models.ErrReservationNotFound
	}
	if reservation.Expired(s.clock()) {
		return time.Time{}, models.ErrReservationExpired
	}
	if s.extended[sessionID] {
		return time.Time{}, models.ErrExtensionUsed
	}

	reservation.ExpiresAt = s.clock().Add(s.extension)
	reservation.CanExtend = false
	s.extended[sessionID] = true
	return reservation.ExpiresAt, nil
}

func (s *MockReservationService) Release(ctx context.Context, sessionID, showID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, ok := s.bySession[sessionID]
	if !ok || reservation.ShowID != showID {
		return models.ErrReservationNotFound
	}
	delete(s.bySession, sessionID)
	delete(s.extended, sessionID)
	return nil
}

func (s *MockReservationService) FindBySession(ctx context.Context, sessionID string) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired(s.clock())
	reservation, ok := s.bySession[sessionID]
	if !ok {
		return nil, nil
	}
	return cloneReservation(reservation), nil
}

// Seed installs a reservation directly; used by tests and demo setups.
func (s *MockReservationService) Seed(sessionID string, reservation *models.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySession[sessionID] = cloneReservation(reservation)
}

func (s *MockReservationService) evictExpired(now time.Time) {
	for sessionID, reservation := range s.bySession {
		if reservation.Expired(now) {
			delete(s.bySession, sessionID)
			delete(s.extended, sessionID)
		}
	}
}

func cloneReservation(r *models.Reservation) *models.Reservation {
	clone := *r
	clone.Records = append([]models.ReservationRecord(nil), r.Records...)
	return &clone
}
