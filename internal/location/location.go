package location

import (
	"math"
	"strconv"
)

// DefaultPrecision is the number of decimal places kept when keying
// coordinates (about 0.1 m at the equator).
const DefaultPrecision = 6

// Location is a named geographic point. Equality for favorites is defined by
// the coordinate pair only; Name is a display label and may be empty.
type Location struct {
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude" validate:"longitude"`
}

// Key is a normalized coordinate pair used for set membership.
type Key string

// KeyOf rounds both coordinates to precision decimal places and joins them.
func KeyOf(lat, lon float64, precision int) Key {
	return Key(roundCoord(lat, precision) + "," + roundCoord(lon, precision))
}

// Key returns the coordinate key of l.
func (l Location) Key(precision int) Key {
	return KeyOf(l.Latitude, l.Longitude, precision)
}

func roundCoord(v float64, precision int) string {
	p := math.Pow(10, float64(precision))
	r := math.Round(v*p) / p
	if r == 0 {
		// collapse -0 so that -0.0000001 and 0 share a key
		r = 0
	}
	return strconv.FormatFloat(r, 'f', precision, 64)
}
