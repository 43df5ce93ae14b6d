package services

import (
	"context"
	"net/http"
	"net/url"

	"theater-booking-platform/internal/models"
)

// PricingService fetches show metadata and pricing structures from the
// show data provider.
type PricingService struct {
	*apiClient
}

// NewPricingService creates a pricing client against the given base URL.
func NewPricingService(baseURL string) *PricingService {
	return &PricingService{apiClient: newAPIClient(baseURL)}
}

func (s *PricingService) GetShowByID(ctx context.Context, id string) (*models.Show, error) {
	var show models.Show
	if err := s.doJSON(ctx, http.MethodGet, "/shows/"+url.PathEscape(id), nil, &show); err != nil {
		return nil, err
	}
	return &show, nil
}

func (s *PricingService) GetShowBySlug(ctx context.Context, slug string) (*models.Show, error) {
	var show models.Show
	if err := s.doJSON(ctx, http.MethodGet, "/shows/slug/"+url.PathEscape(slug), nil, &show); err != nil {
		return nil, err
	}
	return &show, nil
}

func (s *PricingService) GetSeasonBundle(ctx context.Context, seasonID string) (*models.SeasonBundle, error) {
	var bundle models.SeasonBundle
	if err := s.doJSON(ctx, http.MethodGet, "/seasons/"+url.PathEscape(seasonID), nil, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}
