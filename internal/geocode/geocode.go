// Package geocode resolves free-text place names into coordinate candidates
// and names arbitrary coordinates.
package geocode

import (
	"context"
	"errors"
	"strings"
)

// MaxResults is the most candidates a search returns.
const MaxResults = 5

var (
	// ErrEmptyQuery is returned before any network call for blank input.
	ErrEmptyQuery = errors.New("search query is empty")
	// ErrLookup wraps transport, status and decoding failures.
	ErrLookup = errors.New("geocoding lookup failed")
	// ErrNoMatch is returned by Reverse when nothing is known about the
	// coordinates.
	ErrNoMatch = errors.New("no place found at coordinates")
)

// Candidate is one geocoding match, in provider order.
type Candidate struct {
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Country   string  `json:"country,omitempty" yaml:"country,omitempty"`
	State     string  `json:"state,omitempty" yaml:"state,omitempty"`
}

// Geocoder is implemented by every lookup backend.
type Geocoder interface {
	// Search returns up to MaxResults candidates. No match is an empty,
	// non-nil slice and a nil error.
	Search(ctx context.Context, query string) ([]Candidate, error)
	// Reverse names the place at lat/lon.
	Reverse(ctx context.Context, lat, lon float64) (Candidate, error)
}

func normalizeQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", ErrEmptyQuery
	}
	return q, nil
}

func truncate(cands []Candidate) []Candidate {
	if cands == nil {
		return []Candidate{}
	}
	if len(cands) > MaxResults {
		return cands[:MaxResults]
	}
	return cands
}
