package app

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/i474232898/meteou/internal/geocode"
	"github.com/i474232898/meteou/internal/metrics"
	"github.com/i474232898/meteou/internal/weather"
)

// InitialCenter is where the map opens before any navigation.
var InitialCenter = NavParams{Latitude: 48.8566, Longitude: 2.3522, Name: "Paris"}

// MapState is a snapshot of the map screen.
type MapState struct {
	Focused bool            `json:"focused" yaml:"focused"`
	Center  NavParams       `json:"center" yaml:"center"`
	Marker  *NavParams      `json:"marker,omitempty" yaml:"marker,omitempty"`
	Loading bool            `json:"loading" yaml:"loading"`
	Ticket  string          `json:"ticket,omitempty" yaml:"ticket,omitempty"`
	Report  *weather.Report `json:"report,omitempty" yaml:"report,omitempty"`
	Error   *Message        `json:"error,omitempty" yaml:"error,omitempty"`
}

// MapScreen is the main screen: a map centered on a point with the weather
// for the selected marker.
//
// Every tap or navigation takes a new ticket. A weather result is applied
// only while its ticket is still current and the screen is focused; blurring
// or a newer request turns older in-flight results stale.
type MapScreen struct {
	weather  WeatherFetcher
	geocoder geocode.Geocoder
	metrics  *metrics.Metrics

	mu      sync.Mutex
	focused bool
	ticket  string
	center  NavParams
	marker  *NavParams
	loading bool
	report  *weather.Report
	err     *Message
}

// NewMapScreen creates a blurred screen centered on InitialCenter. g may be
// nil, in which case taps stay unnamed.
func NewMapScreen(w WeatherFetcher, g geocode.Geocoder, m *metrics.Metrics) *MapScreen {
	return &MapScreen{
		weather:  w,
		geocoder: g,
		metrics:  m,
		center:   InitialCenter,
	}
}

// State returns the current snapshot.
func (s *MapScreen) State() MapState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Focus marks the screen as active.
func (s *MapScreen) Focus() MapState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focused = true
	return s.snapshot()
}

// Blur marks the screen as inactive. Requests still in flight are
// discarded when they complete.
func (s *MapScreen) Blur() MapState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focused = false
	s.ticket = ""
	s.loading = false
	return s.snapshot()
}

// Tap drops a marker at lat/lon and fetches its weather. The marker is
// named by reverse geocoding when possible.
func (s *MapScreen) Tap(ctx context.Context, lat, lon float64) (MapState, error) {
	return s.request(ctx, NavParams{Latitude: lat, Longitude: lon}, false)
}

// Navigate opens the screen on p, re-centering and re-fetching.
func (s *MapScreen) Navigate(ctx context.Context, p NavParams) (MapState, error) {
	return s.request(ctx, p, true)
}

func (s *MapScreen) request(ctx context.Context, target NavParams, activate bool) (MapState, error) {
	s.mu.Lock()
	if activate {
		s.focused = true
	}
	if !s.focused {
		state := s.snapshot()
		s.mu.Unlock()
		return state, ErrNotFocused
	}
	ticket := uuid.NewString()
	s.ticket = ticket
	s.center = target
	marker := target
	s.marker = &marker
	s.loading = true
	s.report = nil
	s.err = nil
	s.mu.Unlock()

	if target.Name == "" && s.geocoder != nil {
		if c, err := s.geocoder.Reverse(ctx, target.Latitude, target.Longitude); err == nil {
			target.Name = c.Name
		} else if !errors.Is(err, geocode.ErrNoMatch) {
			log.Printf("DEBUG: map: reverse geocode %.4f,%.4f: %v", target.Latitude, target.Longitude, err)
		}
	}

	report, fetchErr := s.weather.Fetch(ctx, target.Latitude, target.Longitude)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticket != ticket || !s.focused {
		log.Printf("DEBUG: map: discarding result for %.4f,%.4f", target.Latitude, target.Longitude)
		s.metrics.MapResult(metrics.OutcomeStale)
		return s.snapshot(), ErrStale
	}

	s.loading = false
	s.marker = &target
	s.center = target
	if fetchErr != nil {
		msg := MessageFor(fetchErr)
		s.err = &msg
		s.metrics.MapResult(metrics.OutcomeError)
		return s.snapshot(), fetchErr
	}

	s.report = &report
	s.metrics.MapResult(metrics.OutcomeOK)
	return s.snapshot(), nil
}

// snapshot copies the state; callers hold s.mu.
func (s *MapScreen) snapshot() MapState {
	st := MapState{
		Focused: s.focused,
		Center:  s.center,
		Loading: s.loading,
		Ticket:  s.ticket,
	}
	if s.marker != nil {
		m := *s.marker
		st.Marker = &m
	}
	if s.report != nil {
		r := *s.report
		r.Forecast = append([]weather.ForecastPoint(nil), s.report.Forecast...)
		st.Report = &r
	}
	if s.err != nil {
		e := *s.err
		st.Error = &e
	}
	return st
}
