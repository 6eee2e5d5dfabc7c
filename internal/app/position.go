package app

import (
	"context"

	"github.com/i474232898/meteou/internal/location"
)

// PositionProvider reports the device position.
type PositionProvider interface {
	Position(ctx context.Context) (location.Location, error)
}

// StaticPosition serves a fixed, configured position. Without one it
// behaves like a device whose user refused the location permission.
type StaticPosition struct {
	loc       location.Location
	available bool
}

func NewStaticPosition(lat, lon float64) *StaticPosition {
	return &StaticPosition{
		loc:       location.Location{Name: "Current position", Latitude: lat, Longitude: lon},
		available: true,
	}
}

// NoPosition returns a provider that always denies access.
func NoPosition() *StaticPosition {
	return &StaticPosition{}
}

func (p *StaticPosition) Position(ctx context.Context) (location.Location, error) {
	if err := ctx.Err(); err != nil {
		return location.Location{}, err
	}
	if !p.available {
		return location.Location{}, ErrPermissionDenied
	}
	return p.loc, nil
}
