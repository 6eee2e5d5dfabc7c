package location

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

//go:embed defaults.json
var bundledDefaults []byte

// Defaults is the immutable, ordered set of locations shipped with the
// application. It is never written to storage.
type Defaults struct {
	locations []Location
}

// NewDefaults copies locs into a Defaults value.
func NewDefaults(locs []Location) Defaults {
	out := make([]Location, len(locs))
	copy(out, locs)
	return Defaults{locations: out}
}

// BundledDefaults returns the dataset embedded in the binary.
func BundledDefaults() (Defaults, error) {
	var locs []Location
	if err := json.Unmarshal(bundledDefaults, &locs); err != nil {
		return Defaults{}, fmt.Errorf("decode bundled defaults: %w", err)
	}
	return NewDefaults(locs), nil
}

// ReadDefaults decodes a JSON array of locations. Unlike user storage, a
// malformed defaults file is an error.
func ReadDefaults(r io.Reader) (Defaults, error) {
	var locs []Location
	if err := json.NewDecoder(r).Decode(&locs); err != nil {
		return Defaults{}, fmt.Errorf("decode defaults: %w", err)
	}
	for i, l := range locs {
		if err := validate.Struct(l); err != nil {
			return Defaults{}, fmt.Errorf("default location %d (%q): %w", i, l.Name, err)
		}
	}
	return NewDefaults(locs), nil
}

// LoadDefaults reads the defaults file at path, or the bundled dataset when
// path is empty.
func LoadDefaults(path string) (Defaults, error) {
	if path == "" {
		return BundledDefaults()
	}
	f, err := os.Open(path)
	if err != nil {
		return Defaults{}, fmt.Errorf("open defaults: %w", err)
	}
	defer f.Close()
	return ReadDefaults(f)
}

// Locations returns a copy of the default locations in bundle order.
func (d Defaults) Locations() []Location {
	out := make([]Location, len(d.locations))
	copy(out, d.locations)
	return out
}

func (d Defaults) Len() int { return len(d.locations) }
