package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/meteou/internal/weather"
)

const currentBody = `{
	"coord": {"lon": 2.3522, "lat": 48.8566},
	"weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}],
	"main": {"temp": 12.6, "feels_like": 11.4, "pressure": 1012, "humidity": 81},
	"visibility": 10000,
	"wind": {"speed": 4.1},
	"dt": 1700000000,
	"timezone": 3600,
	"name": "Paris",
	"cod": 200
}`

func forecastBody(entries int) string {
	var b strings.Builder
	b.WriteString(`{"cod":"200","message":0,"cnt":`)
	b.WriteString(strconv.Itoa(entries))
	b.WriteString(`,"list":[`)
	for i := 0; i < entries; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"dt":`)
		b.WriteString(strconv.Itoa(1700006400 + i*10800))
		b.WriteString(`,"main":{"temp":`)
		b.WriteString(strconv.Itoa(10 + i))
		b.WriteString(`.5},"weather":[{"main":"Clouds","description":"broken clouds","icon":"04n"}]}`)
	}
	b.WriteString(`],"city":{"name":"Paris","timezone":3600}}`)
	return b.String()
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenWeatherFetchNormalizes(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("units") != "metric" || q.Get("appid") != "key" || q.Get("lat") != "48.8566" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		switch r.URL.Path {
		case "/weather":
			_, _ = w.Write([]byte(currentBody))
		case "/forecast":
			_, _ = w.Write([]byte(forecastBody(12)))
		default:
			http.NotFound(w, r)
		}
	})

	p := NewOpenWeatherProvider(srv.Client(), "key", WithBaseURL(srv.URL))
	report, err := p.Fetch(context.Background(), 48.8566, 2.3522)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Temperature != 13 || report.FeelsLike != 11 {
		t.Fatalf("expected rounded temperatures 13/11, got %d/%d", report.Temperature, report.FeelsLike)
	}
	if report.Place != "Paris" || report.Description != "light rain" {
		t.Fatalf("unexpected place/description: %q %q", report.Place, report.Description)
	}
	if report.Condition != weather.ConditionRain || report.Icon != weather.IconRain {
		t.Fatalf("unexpected condition/icon: %s %s", report.Condition, report.Icon)
	}
	if report.Humidity != 81 || report.WindSpeed != 4.1 || report.Pressure != 1012 || report.Visibility != 10000 {
		t.Fatalf("unexpected details: %+v", report)
	}
	if !report.Timestamp.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("unexpected timestamp %v", report.Timestamp)
	}

	if len(report.Forecast) != DefaultForecastPoints {
		t.Fatalf("expected %d forecast points, got %d", DefaultForecastPoints, len(report.Forecast))
	}
	first := report.Forecast[0]
	// 1700006400 is 00:00 UTC, 01:00 at +1h.
	if first.Time != "01:00" {
		t.Fatalf("expected local label 01:00, got %q", first.Time)
	}
	if first.Temperature != 11 || first.Icon != weather.IconCloud {
		t.Fatalf("unexpected first point: %+v", first)
	}
	if report.Forecast[7].Temperature != 18 {
		t.Fatalf("forecast must keep provider order, got %+v", report.Forecast[7])
	}
}

func TestOpenWeatherFetchShortSeries(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/weather" {
			_, _ = w.Write([]byte(currentBody))
			return
		}
		_, _ = w.Write([]byte(forecastBody(3)))
	})

	p := NewOpenWeatherProvider(srv.Client(), "key", WithBaseURL(srv.URL), WithForecastPoints(5))
	report, err := p.Fetch(context.Background(), 48.8566, 2.3522)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Forecast) != 3 {
		t.Fatalf("expected all 3 available points, got %d", len(report.Forecast))
	}
}

func TestOpenWeatherFetchFailsWhole(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		upstream bool
		code     int
	}{
		{
			name: "forecast status error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/forecast" {
					http.Error(w, "boom", http.StatusInternalServerError)
					return
				}
				_, _ = w.Write([]byte(currentBody))
			},
			upstream: true,
		},
		{
			name: "embedded numeric code",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/weather" {
					_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
					return
				}
				_, _ = w.Write([]byte(forecastBody(8)))
			},
			code: 401,
		},
		{
			name: "embedded string code",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/forecast" {
					_, _ = w.Write([]byte(`{"cod":"400","message":"wrong latitude"}`))
					return
				}
				_, _ = w.Write([]byte(currentBody))
			},
			code: 400,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			upstream: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.handler)
			p := NewOpenWeatherProvider(srv.Client(), "key", WithBaseURL(srv.URL))

			report, err := p.Fetch(context.Background(), 1, 2)
			if err == nil {
				t.Fatalf("expected error, got report %+v", report)
			}
			if report.Place != "" || report.Forecast != nil {
				t.Fatalf("expected zero report on failure, got %+v", report)
			}
			if tt.upstream && !errors.Is(err, weather.ErrUpstream) {
				t.Fatalf("expected ErrUpstream, got %v", err)
			}
			if tt.code != 0 {
				var perr *weather.ProviderError
				if !errors.As(err, &perr) || perr.Code != tt.code {
					t.Fatalf("expected provider error code %d, got %v", tt.code, err)
				}
				if !errors.Is(err, weather.ErrProvider) {
					t.Fatalf("expected ErrProvider, got %v", err)
				}
			}
		})
	}
}

func TestOpenWeatherNoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/weather" {
			calls.Add(1)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(forecastBody(8)))
	})

	p := NewOpenWeatherProvider(srv.Client(), "key", WithBaseURL(srv.URL))
	if _, err := p.Fetch(context.Background(), 1, 2); err == nil {
		t.Fatalf("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestOpenWeatherMissingKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "")
	if _, err := p.Fetch(context.Background(), 1, 2); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestMapOpenWeatherIcon(t *testing.T) {
	tests := map[string]weather.Icon{
		"01d": weather.IconSun,
		"02n": weather.IconCloudSun,
		"03d": weather.IconCloud,
		"04n": weather.IconCloud,
		"09d": weather.IconRain,
		"10n": weather.IconRain,
		"11d": weather.IconStorm,
		"13d": weather.IconSnow,
		"50n": weather.IconFog,
		"":    weather.IconSun,
		"99x": weather.IconSun,
	}
	for code, want := range tests {
		if got := mapOpenWeatherIcon(code); got != want {
			t.Errorf("mapOpenWeatherIcon(%q) = %s, want %s", code, got, want)
		}
	}
}

func TestStatusErrorPreview(t *testing.T) {
	err := &StatusError{StatusCode: 502, Body: "bad gateway", Cause: errServerError}
	if !errors.Is(err, weather.ErrUpstream) || !errors.Is(err, errServerError) {
		t.Fatalf("status error must match both causes: %v", err)
	}
	if !strings.Contains(err.Error(), "status=502") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestOpenWeatherCancelledSiblingIsNotABreakerFailure(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/weather" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	p := NewOpenWeatherProvider(srv.Client(), "key", WithBaseURL(srv.URL))
	if _, err := p.Fetch(context.Background(), 1, 2); !errors.Is(err, weather.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if got := p.circuit.Counts().TotalFailures; got != 1 {
		t.Fatalf("expected one breaker failure, got %d", got)
	}
}
