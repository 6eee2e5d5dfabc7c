package app

import (
	"context"
	"errors"
	"log"

	"github.com/i474232898/meteou/internal/geocode"
	"github.com/i474232898/meteou/internal/location"
	"github.com/i474232898/meteou/internal/metrics"
)

// Search backs the city search screen.
type Search struct {
	geocoder  geocode.Geocoder
	favorites *Favorites
	metrics   *metrics.Metrics
}

func NewSearch(g geocode.Geocoder, favorites *Favorites, m *metrics.Metrics) *Search {
	return &Search{geocoder: g, favorites: favorites, metrics: m}
}

// Search returns up to geocode.MaxResults candidates for query. No match is
// an empty slice and a nil error.
func (s *Search) Search(ctx context.Context, query string) ([]geocode.Candidate, error) {
	cands, err := s.geocoder.Search(ctx, query)
	switch {
	case errors.Is(err, geocode.ErrEmptyQuery):
		s.metrics.Geocode(metrics.OutcomeRejected)
		return nil, err
	case err != nil:
		log.Printf("ERROR: geocode %q: %v", query, err)
		s.metrics.Geocode(metrics.OutcomeError)
		return nil, err
	case len(cands) == 0:
		s.metrics.Geocode(metrics.OutcomeEmpty)
	default:
		s.metrics.Geocode(metrics.OutcomeOK)
	}
	return cands, nil
}

// Save stores a candidate as a favorite under the place name.
func (s *Search) Save(ctx context.Context, c geocode.Candidate) ([]location.Location, error) {
	loc := location.Location{Name: c.Name, Latitude: c.Latitude, Longitude: c.Longitude}
	return s.favorites.Add(ctx, loc)
}

// Select returns the parameters that open c on the map screen.
func (s *Search) Select(c geocode.Candidate) NavParams {
	return NavParams{Latitude: c.Latitude, Longitude: c.Longitude, Name: c.Name}
}
