// Package app holds the screen controllers: the use cases behind each
// screen, independent of the HTTP and CLI front ends that drive them.
package app

import (
	"context"
	"errors"

	"github.com/i474232898/meteou/internal/location"
	"github.com/i474232898/meteou/internal/weather"
)

var (
	// ErrNameRequired is returned when saving a favorite without a label.
	ErrNameRequired = errors.New("a name is required to save a favorite")
	// ErrConfirmationRequired is returned by removals the user has not
	// confirmed yet.
	ErrConfirmationRequired = errors.New("removal must be confirmed")
	// ErrStale is returned when a result arrived after the screen moved on.
	ErrStale = errors.New("result discarded: screen no longer showing this request")
	// ErrNotFocused is returned for map interactions while the screen is
	// in the background.
	ErrNotFocused = errors.New("map screen is not focused")
	// ErrPermissionDenied is returned when the device position is not
	// available to the application.
	ErrPermissionDenied = errors.New("location permission denied")
)

// LocationStore is the favorites persistence the controllers depend on.
type LocationStore interface {
	Load(ctx context.Context) []location.Location
	Add(ctx context.Context, loc location.Location) ([]location.Location, error)
	Remove(ctx context.Context, loc location.Location) ([]location.Location, error)
	IsDefault(loc location.Location) bool
	Precision() int
}

// WeatherFetcher produces a report for a coordinate pair.
type WeatherFetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (weather.Report, error)
}

// NavParams is what the map screen receives when another screen sends the
// user to a point.
type NavParams struct {
	Latitude  float64 `json:"latitude" yaml:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude" validate:"longitude"`
	Name      string  `json:"name" yaml:"name"`
}

// ParamsFor builds navigation parameters for loc.
func ParamsFor(loc location.Location) NavParams {
	return NavParams{Latitude: loc.Latitude, Longitude: loc.Longitude, Name: loc.Name}
}
