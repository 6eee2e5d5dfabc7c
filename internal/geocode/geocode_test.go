package geocode

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(t *testing.T, calls *atomic.Int32, responseBody string, statusCode int) *OpenWeather {
	t.Helper()
	httpClient := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if calls != nil {
				calls.Add(1)
			}
			if req.URL.Query().Get("appid") != "key" {
				t.Fatalf("expected appid=key, got %q", req.URL.Query().Get("appid"))
			}
			return &http.Response{
				StatusCode: statusCode,
				Header:     make(http.Header),
				Body:       io.NopCloser(strings.NewReader(responseBody)),
			}, nil
		}),
	}
	return NewOpenWeather(httpClient, "key", WithBaseURL("https://geo.test/geo/1.0"))
}

func TestSearchEmptyQueryMakesNoRequest(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, &calls, `[]`, http.StatusOK)

	for _, q := range []string{"", "   ", "\t\n"} {
		if _, err := client.Search(context.Background(), q); !errors.Is(err, ErrEmptyQuery) {
			t.Fatalf("expected ErrEmptyQuery for %q, got %v", q, err)
		}
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no network call, got %d", calls.Load())
	}
}

func TestSearchParsesCandidates(t *testing.T) {
	httpClient := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			if req.URL.Path != "/geo/1.0/direct" || q.Get("q") != "Springfield" || q.Get("limit") != "5" {
				t.Fatalf("unexpected request %s", req.URL.String())
			}
			body := `[
				{"name":"Springfield","lat":39.78,"lon":-89.65,"country":"US","state":"Illinois"},
				{"name":"Springfield","lat":37.21,"lon":-93.29,"country":"US","state":"Missouri"},
				{"name":"Springfield","lat":42.10,"lon":-72.59,"country":"US"},
				{"name":"Springfield","lat":44.05,"lon":-123.02,"country":"US"},
				{"name":"Springfield","lat":39.92,"lon":-83.81,"country":"US"},
				{"name":"Springfield","lat":40.00,"lon":-75.00,"country":"US"}
			]`
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     make(http.Header),
				Body:       io.NopCloser(strings.NewReader(body)),
			}, nil
		}),
	}
	client := NewOpenWeather(httpClient, "key", WithBaseURL("https://geo.test/geo/1.0"))

	got, err := client.Search(context.Background(), "  Springfield ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != MaxResults {
		t.Fatalf("expected %d candidates, got %d", MaxResults, len(got))
	}
	if got[0].State != "Illinois" || got[1].State != "Missouri" {
		t.Fatalf("expected provider order, got %+v", got[:2])
	}
	if got[0].Latitude != 39.78 || got[0].Longitude != -89.65 {
		t.Fatalf("unexpected coordinates %+v", got[0])
	}
}

func TestSearchZeroResultsIsNotAnError(t *testing.T) {
	client := newTestClient(t, nil, `[]`, http.StatusOK)

	got, err := client.Search(context.Background(), "Xyzzyville")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSearchFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "unauthorized", body: `{"cod":401}`, status: http.StatusUnauthorized},
		{name: "server error", body: ``, status: http.StatusBadGateway},
		{name: "malformed", body: `{"oops"`, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, nil, tt.body, tt.status)
			if _, err := client.Search(context.Background(), "Paris"); !errors.Is(err, ErrLookup) {
				t.Fatalf("expected ErrLookup, got %v", err)
			}
		})
	}
}

func TestSearchTransportError(t *testing.T) {
	httpClient := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}),
	}
	client := NewOpenWeather(httpClient, "key")
	if _, err := client.Search(context.Background(), "Paris"); !errors.Is(err, ErrLookup) {
		t.Fatalf("expected ErrLookup, got %v", err)
	}
}

func TestReverse(t *testing.T) {
	client := newTestClient(t, nil, `[{"name":"Lyon","lat":45.76,"lon":4.83,"country":"FR"}]`, http.StatusOK)
	c, err := client.Reverse(context.Background(), 45.76, 4.83)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name != "Lyon" || c.Country != "FR" {
		t.Fatalf("unexpected candidate %+v", c)
	}

	empty := newTestClient(t, nil, `[]`, http.StatusOK)
	if _, err := empty.Reverse(context.Background(), 0, 0); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func newGoogleServer(t *testing.T, handler http.HandlerFunc) *Google {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGoogle("gkey", WithGoogleURL(srv.URL+"/maps/api/geocode/json?"))
}

func writeGoogle(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func TestGoogleSearch(t *testing.T) {
	g := newGoogleServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") != "gkey" {
			t.Errorf("expected key=gkey, got %q", q.Get("key"))
		}
		if q.Get("address") != "Nantes" {
			t.Errorf("unexpected address %q", q.Get("address"))
		}
		writeGoogle(w, `{"status":"OK","results":[{"formatted_address":"Nantes, France","types":["locality"],
			"geometry":{"location":{"lat":47.2184,"lng":-1.5536}}}]}`)
	})

	got, err := g.Search(context.Background(), " Nantes ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Nantes" || got[0].Latitude != 47.2184 || got[0].Longitude != -1.5536 {
		t.Fatalf("unexpected candidates %+v", got)
	}

	if _, err := g.Search(context.Background(), " "); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestGoogleSearchEscapesQuery(t *testing.T) {
	g := newGoogleServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("address") != "Rock & Roll#1" || q.Get("key") != "gkey" {
			t.Errorf("query not escaped: %q", r.URL.RawQuery)
		}
		writeGoogle(w, `{"status":"OK","results":[{"types":["locality"],"geometry":{"location":{"lat":1,"lng":2}}}]}`)
	})

	got, err := g.Search(context.Background(), "Rock & Roll#1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Rock & Roll#1" {
		t.Fatalf("unexpected candidates %+v", got)
	}
}

func TestGoogleSearchNoResults(t *testing.T) {
	g := newGoogleServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeGoogle(w, `{"status":"ZERO_RESULTS","results":[]}`)
	})

	got, err := g.Search(context.Background(), "Nowhereville")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestGoogleSearchFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "denied", body: `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid.","results":[]}`},
		{name: "over quota", body: `{"status":"OVER_QUERY_LIMIT","results":[]}`},
		{name: "unknown status", body: `{"status":"OVER_DAILY_LIMIT","results":[]}`},
		{name: "malformed", body: `{"status":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGoogleServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeGoogle(w, tt.body)
			})
			if _, err := g.Search(context.Background(), "Paris"); !errors.Is(err, ErrLookup) {
				t.Fatalf("expected ErrLookup, got %v", err)
			}
		})
	}
}

func TestGoogleRecoversAndReleasesLock(t *testing.T) {
	var calls atomic.Int32
	g := newGoogleServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeGoogle(w, `{"status":"OVER_DAILY_LIMIT","results":[]}`)
			return
		}
		writeGoogle(w, `{"status":"OK","results":[{"types":["locality"],"geometry":{"location":{"lat":48.85,"lng":2.35}}}]}`)
	})

	if _, err := g.Search(context.Background(), "Paris"); !errors.Is(err, ErrLookup) {
		t.Fatalf("expected ErrLookup, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := g.Search(ctx, "Paris")
	if err != nil {
		t.Fatalf("second search failed: %v", err)
	}
	if len(got) != 1 || got[0].Latitude != 48.85 {
		t.Fatalf("unexpected candidates %+v", got)
	}
}

func TestGoogleReverse(t *testing.T) {
	g := newGoogleServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("latlng") != "50.62920000,3.05730000" {
			t.Errorf("unexpected latlng %q", r.URL.Query().Get("latlng"))
		}
		writeGoogle(w, `{"status":"OK","results":[{"formatted_address":"Lille, France","types":["locality"],
			"address_components":[
				{"long_name":"Lille","types":["locality","political"]},
				{"long_name":"Hauts-de-France","types":["administrative_area_level_1","political"]},
				{"long_name":"France","types":["country","political"]}
			]}]}`)
	})

	c, err := g.Reverse(context.Background(), 50.6292, 3.0573)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name != "Lille" || c.Country != "France" || c.State != "Hauts-de-France" || c.Latitude != 50.6292 {
		t.Fatalf("unexpected candidate %+v", c)
	}
}

func TestGoogleReverseNoMatch(t *testing.T) {
	g := newGoogleServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeGoogle(w, `{"status":"ZERO_RESULTS","results":[]}`)
	})

	if _, err := g.Reverse(context.Background(), 0, 0); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}
