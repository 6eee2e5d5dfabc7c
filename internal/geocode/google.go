package geocode

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/meteou/internal/common"
)

const defaultGoogleURL = "https://maps.googleapis.com/maps/api/geocode/json?"

// geocoder.ApiKey and geocoder.ApiUrl are package state; calls swap them
// under this lock.
var googleMu sync.Mutex

// Google resolves names through the Google Maps geocoding API. It yields at
// most one candidate per search.
type Google struct {
	apiKey string
	apiURL string
}

// GoogleOption customizes a Google client.
type GoogleOption func(*Google)

// WithGoogleURL points the client at another endpoint. u must end where the
// query string starts, e.g. "https://host/maps/api/geocode/json?".
func WithGoogleURL(u string) GoogleOption {
	return func(g *Google) { g.apiURL = u }
}

func NewGoogle(apiKey string, opts ...GoogleOption) *Google {
	g := &Google{apiKey: apiKey, apiURL: defaultGoogleURL}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Google) Search(ctx context.Context, query string) ([]Candidate, error) {
	q, err := normalizeQuery(query)
	if err != nil {
		return nil, err
	}

	var loc geocoder.Location
	err = g.call(ctx, func() error {
		var callErr error
		// The library pastes the address into the URL as is.
		loc, callErr = geocoder.Geocoding(geocoder.Address{City: url.QueryEscape(q)})
		return callErr
	})
	if err != nil {
		if isNoResult(err) {
			return []Candidate{}, nil
		}
		return nil, err
	}

	return []Candidate{{Name: q, Latitude: loc.Latitude, Longitude: loc.Longitude}}, nil
}

func (g *Google) Reverse(ctx context.Context, lat, lon float64) (Candidate, error) {
	var addrs []geocoder.Address
	err := g.call(ctx, func() error {
		var callErr error
		addrs, callErr = geocoder.GeocodingReverse(geocoder.Location{Latitude: lat, Longitude: lon})
		return callErr
	})
	if err != nil {
		if isNoResult(err) {
			return Candidate{}, ErrNoMatch
		}
		return Candidate{}, err
	}
	if len(addrs) == 0 {
		return Candidate{}, ErrNoMatch
	}

	a := addrs[0]
	name := a.City
	if name == "" {
		name = a.FormattedAddress
	}
	return Candidate{Name: name, Latitude: lat, Longitude: lon, Country: a.Country, State: a.State}, nil
}

// call runs fn with the package key and URL set. The library has no context
// support, so a cancelled ctx abandons the wait but not the request. It also
// indexes empty result lists for statuses it does not know, so panics are
// turned into lookup errors here.
func (g *Google) call(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		googleMu.Lock()
		defer googleMu.Unlock()
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("geocoder panic: %v", r)
			}
		}()
		geocoder.ApiKey = g.apiKey
		geocoder.ApiUrl = g.apiURL
		done <- fn()
	}()

	select {
	case err := <-done:
		if err != nil && !isNoResult(err) {
			return fmt.Errorf("%w: %v", ErrLookup, err)
		}
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrLookup, ctx.Err())
	}
}

// isNoResult matches the library's ZERO_RESULTS error.
func isNoResult(err error) bool {
	return common.ContainsAnyFold(err.Error(), "no results found")
}
