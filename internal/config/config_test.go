package config

import (
	"strings"
	"testing"
	"time"

	"github.com/i474232898/meteou/internal/store"
)

var configKeys = []string{
	"OPENWEATHER_API_KEY", "GOOGLE_GEOCODING_API_KEY", "GEOCODER", "OPENWEATHER_LANG", "HTTP_TIMEOUT",
	"FORECAST_POINTS", "WEATHER_MAX_RETRIES", "COORD_PRECISION", "STORAGE_KEY", "DEFAULT_LOCATIONS_FILE",
	"STORAGE_BACKEND", "STORAGE_DIR", "REDIS_ADDR", "DATABASE_DSN", "S3_USE_SSL",
	"HOME_LATITUDE", "HOME_LONGITUDE", "PORT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Geocoder != GeocoderOpenWeather || cfg.Language != "en" {
		t.Fatalf("unexpected geocoder/lang: %q %q", cfg.Geocoder, cfg.Language)
	}
	if cfg.HTTPTimeout != 10*time.Second || cfg.ForecastPoints != 8 || cfg.WeatherMaxRetries != 0 {
		t.Fatalf("unexpected weather settings: %+v", cfg)
	}
	if cfg.CoordPrecision != 6 || cfg.StorageKey != "savedLocations" {
		t.Fatalf("unexpected favorites settings: %+v", cfg)
	}
	if cfg.Store.Backend != store.BackendFile || !cfg.Store.S3.UseSSL {
		t.Fatalf("unexpected store options: %+v", cfg.Store)
	}
	if cfg.HasHome() || cfg.Port != "8080" {
		t.Fatalf("unexpected home/port: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	clearEnv(t)
	t.Setenv("GEOCODER", "Google")
	t.Setenv("GOOGLE_GEOCODING_API_KEY", "gkey")
	t.Setenv("FORECAST_POINTS", "4")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("HOME_LATITUDE", "50.6292")
	t.Setenv("HOME_LONGITUDE", "3.0573")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Geocoder != GeocoderGoogle || cfg.ForecastPoints != 4 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.Store.Backend != store.BackendSQLite || cfg.Store.DSN != "meteou.db" {
		t.Fatalf("unexpected sqlite defaults: %+v", cfg.Store)
	}
	if !cfg.HasHome() || *cfg.HomeLatitude != 50.6292 {
		t.Fatalf("expected home position, got %v %v", cfg.HomeLatitude, cfg.HomeLongitude)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "bad timeout", env: map[string]string{"HTTP_TIMEOUT": "soon"}, want: "HTTP_TIMEOUT"},
		{name: "unknown backend", env: map[string]string{"STORAGE_BACKEND": "floppy"}, want: "Backend"},
		{name: "google without key", env: map[string]string{"GEOCODER": "google"}, want: "GoogleAPIKey"},
		{name: "precision", env: map[string]string{"COORD_PRECISION": "12"}, want: "CoordPrecision"},
		{name: "half home", env: map[string]string{"HOME_LATITUDE": "1"}, want: "set together"},
		{name: "home range", env: map[string]string{"HOME_LATITUDE": "91", "HOME_LONGITUDE": "0"}, want: "HomeLatitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
