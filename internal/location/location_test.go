package location

import (
	"strings"
	"testing"
)

func TestKeyOf(t *testing.T) {
	cases := []struct {
		name      string
		lat, lon  float64
		precision int
		expected  Key
	}{
		{"plain", 48.8566, 2.3522, 6, "48.856600,2.352200"},
		{"float noise collapses", 48.85660000000001, 2.3522, 6, "48.856600,2.352200"},
		{"negative zero", -0.0000001, 0, 6, "0.000000,0.000000"},
		{"coarse precision", 43.70123, 7.26987, 2, "43.70,7.27"},
		{"negative longitude", 44.8378, -0.5792, 4, "44.8378,-0.5792"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KeyOf(tc.lat, tc.lon, tc.precision); got != tc.expected {
				t.Fatalf("KeyOf(%v, %v, %d) = %q; want %q", tc.lat, tc.lon, tc.precision, got, tc.expected)
			}
		})
	}
}

func TestBundledDefaults(t *testing.T) {
	d, err := BundledDefaults()
	if err != nil {
		t.Fatalf("bundled defaults: %v", err)
	}
	locs := d.Locations()
	if len(locs) == 0 || d.Len() != len(locs) {
		t.Fatalf("expected bundled locations, got %d", len(locs))
	}
	if locs[0].Name != "Paris" {
		t.Fatalf("expected Paris first, got %q", locs[0].Name)
	}

	locs[0].Name = "changed"
	if d.Locations()[0].Name != "Paris" {
		t.Fatal("Locations() must return a copy")
	}
}

func TestReadDefaults(t *testing.T) {
	d, err := ReadDefaults(strings.NewReader(`[{"name":"Nice","latitude":43.7,"longitude":7.26}]`))
	if err != nil {
		t.Fatalf("read defaults: %v", err)
	}
	if d.Len() != 1 {
		t.Fatalf("expected 1 default, got %d", d.Len())
	}

	if _, err := ReadDefaults(strings.NewReader(`[`)); err == nil {
		t.Fatal("expected error for malformed defaults")
	}
	if _, err := ReadDefaults(strings.NewReader(`[{"name":"Nowhere","latitude":123,"longitude":0}]`)); err == nil {
		t.Fatal("expected error for out-of-range latitude")
	}
}

func TestLoadDefaultsMissingFile(t *testing.T) {
	if _, err := LoadDefaults(t.TempDir() + "/missing.json"); err == nil {
		t.Fatal("expected error for missing defaults file")
	}
}

func TestLoadDefaultsEmptyPathUsesBundle(t *testing.T) {
	got, err := LoadDefaults("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bundled, err := BundledDefaults()
	if err != nil {
		t.Fatalf("bundled: %v", err)
	}
	if got.Len() == 0 || got.Len() != bundled.Len() {
		t.Fatalf("expected the bundled set, got %d locations (bundle has %d)", got.Len(), bundled.Len())
	}
}
