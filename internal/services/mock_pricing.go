package services

import (
	"context"
	"fmt"
	"time"

	"theater-booking-platform/internal/models"
)

// MockPricingService serves a small seeded festival catalog from memory.
// Used in development and tests when no pricing API is configured.
type MockPricingService struct {
	shows   map[string]*models.Show
	bundles map[string]*models.SeasonBundle
}

// NewMockPricingService seeds one season with two shows.
func NewMockPricingService() *MockPricingService {
	service := &MockPricingService{
		shows:   make(map[string]*models.Show),
		bundles: make(map[string]*models.SeasonBundle),
	}

	parkett := models.SeatGroup{
		ID:   "sg-parkett",
		Name: "Parkett",
		PriceCategories: []models.PriceCategory{
			{ID: "pc-1", Name: "Kategorie 1", PriceCents: 4900, Currency: "EUR", VATRateBps: 700},
			{ID: "pc-2", Name: "Kategorie 2", PriceCents: 3900, Currency: "EUR", VATRateBps: 700},
		},
	}
	for row := 'A'; row <= 'B'; row++ {
		for n := 1; n <= 10; n++ {
			parkett.Seats = append(parkett.Seats, models.Seat{
				ID:         fmt.Sprintf("seat-%c%d", row, n),
				SeatNumber: fmt.Sprintf("%c%d", row, n),
				Row:        string(row),
			})
		}
	}

	galerie := models.SeatGroup{
		ID:            "sg-galerie",
		Name:          "Galerie",
		FreeSelection: true,
		PriceCategories: []models.PriceCategory{
			{ID: "pc-3", Name: "Kategorie 3", PriceCents: 2500, Currency: "EUR", VATRateBps: 700},
		},
	}

	season := "season-2026"
	shows := []*models.Show{
		{
			ID:       "show-sommernacht",
			Slug:     "sommernachtstraum-premiere",
			SeriesID: "series-sommernacht",
			SeasonID: season,
			Title:    "Ein Sommernachtstraum",
			StartsAt: time.Date(2026, 7, 10, 19, 30, 0, 0, time.UTC),
			Venue:    "Festspielhaus",
			SeatGroups: []models.SeatGroup{parkett, galerie},
		},
		{
			ID:       "show-faust",
			Slug:     "faust-derniere",
			SeriesID: "series-faust",
			SeasonID: season,
			Title:    "Faust I",
			StartsAt: time.Date(2026, 7, 12, 20, 0, 0, 0, time.UTC),
			Venue:    "Festspielhaus",
			SeatGroups: []models.SeatGroup{parkett, galerie},
		},
	}
	for _, show := range shows {
		service.shows[show.ID] = show
	}

	service.bundles[season] = &models.SeasonBundle{
		SeasonID: season,
		Series: []models.Series{
			{ID: "series-sommernacht", Name: "Ein Sommernachtstraum", Slug: "sommernachtstraum"},
			{ID: "series-faust", Name: "Faust I", Slug: "faust"},
		},
		Shows: []models.Show{*shows[0], *shows[1]},
		PaymentMethods: []models.PaymentMethod{
			{ID: "pm-card", Name: "Kreditkarte"},
			{ID: "pm-sepa", Name: "SEPA-Lastschrift"},
		},
		DeliveryOptions: []models.DeliveryOption{
			{ID: "do-digital", Name: "print@home", FeeCents: 0, Digital: true},
			{ID: "do-post", Name: "Postversand", FeeCents: 390},
		},
		FeeConfig: models.OrganizerFeeConfig{FlatCents: 150, PercentBps: 250},
	}

	return service
}

func (s *MockPricingService) GetShowByID(ctx context.Context, id string) (*models.Show, error) {
	if show, ok := s.shows[id]; ok {
		return show, nil
	}
	return nil, models.ErrShowNotFound
}

func (s *MockPricingService) GetShowBySlug(ctx context.Context, slug string) (*models.Show, error) {
	for _, show := range s.shows {
		if show.Slug == slug {
			return show, nil
		}
	}
	return nil, models.ErrShowNotFound
}

func (s *MockPricingService) GetSeasonBundle(ctx context.Context, seasonID string) (*models.SeasonBundle, error) {
	if bundle, ok := s.bundles[seasonID]; ok {
		return bundle, nil
	}
	return nil, models.ErrSeasonNotFound
}
