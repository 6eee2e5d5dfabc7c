package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
)

// ErrInvalidCoordinates is returned for NaN or infinite coordinates.
var ErrInvalidCoordinates = errors.New("coordinates must be finite numbers")

// Service resolves coordinates into a normalized weather Report. It does not
// retry and does not cache: each call is a fresh user-initiated fetch.
type Service struct {
	provider Provider
}

// NewService creates a new Service.
func NewService(provider Provider) *Service {
	return &Service{
		provider: provider,
	}
}

// Fetch returns the report for lat/lon, or a single error when any part of
// the upstream exchange failed.
func (s *Service) Fetch(ctx context.Context, lat, lon float64) (Report, error) {
	if s.provider == nil {
		log.Printf("ERROR: no weather provider configured")
		return Report{}, fmt.Errorf("no weather provider configured")
	}
	if !finite(lat) || !finite(lon) {
		return Report{}, ErrInvalidCoordinates
	}

	log.Printf("DEBUG: weather fetch for %.4f,%.4f via %s", lat, lon, s.provider.Name())

	report, err := s.provider.Fetch(ctx, lat, lon)
	if err != nil {
		log.Printf("provider %s fetch failed for %.4f,%.4f: %v", s.provider.Name(), lat, lon, err)
		return Report{}, err
	}
	return report, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
