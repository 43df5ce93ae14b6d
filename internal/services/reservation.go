package services

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"theater-booking-platform/internal/models"
)

// ReservationService talks to the reservation API holding time-boxed seat
// claims server-side.
type ReservationService struct {
	*apiClient
}

// NewReservationService creates a reservation client against the given
// base URL.
func NewReservationService(baseURL string) *ReservationService {
	return &ReservationService{apiClient: newAPIClient(baseURL)}
}

type createReservationRequest struct {
	SessionID string          `json:"session_id"`
	ShowID    string          `json:"show_id"`
	Seats     []SeatSelection `json:"seats"`
}

func (s *ReservationService) Create(ctx context.Context, sessionID, showID string, seats []SeatSelection) (*models.Reservation, error) {
	var reservation models.Reservation
	req := createReservationRequest{SessionID: sessionID, ShowID: showID, Seats: seats}
	if err := s.doJSON(ctx, http.MethodPost, "/reservations", req, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

type extendReservationResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *ReservationService) Extend(ctx context.Context, sessionID, showID string) (time.Time, error) {
	var resp extendReservationResponse
	req := map[string]string{"session_id": sessionID, "show_id": showID}
	if err := s.doJSON(ctx, http.MethodPost, "/reservations/extend", req, &resp); err != nil {
		return time.Time{}, err
	}
	return resp.ExpiresAt, nil
}

func (s *ReservationService) Release(ctx context.Context, sessionID, showID string) error {
	req := map[string]string{"session_id": sessionID, "show_id": showID}
	return s.doJSON(ctx, http.MethodPost, "/reservations/release", req, nil)
}

func (s *ReservationService) FindBySession(ctx context.Context, sessionID string) (*models.Reservation, error) {
	var reservation models.Reservation
	err := s.doJSON(ctx, http.MethodGet, "/reservations/session/"+url.PathEscape(sessionID), nil, &reservation)
	if err != nil {
		return nil, err
	}
	if len(reservation.Records) == 0 {
		return nil, nil
	}
	return &reservation, nil
}
