package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const defaultGeoURL = "https://api.openweathermap.org/geo/1.0"

// OpenWeather queries the OpenWeatherMap direct and reverse geocoding API.
type OpenWeather struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes an OpenWeather client.
type Option func(*OpenWeather)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) Option {
	return func(o *OpenWeather) { o.baseURL = strings.TrimRight(u, "/") }
}

func NewOpenWeather(client *http.Client, apiKey string, opts ...Option) *OpenWeather {
	if client == nil {
		client = http.DefaultClient
	}
	o := &OpenWeather{
		apiKey:     apiKey,
		baseURL:    defaultGeoURL,
		httpClient: client,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type owmPlace struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (p owmPlace) candidate() Candidate {
	return Candidate{Name: p.Name, Latitude: p.Lat, Longitude: p.Lon, Country: p.Country, State: p.State}
}

func (o *OpenWeather) Search(ctx context.Context, query string) ([]Candidate, error) {
	q, err := normalizeQuery(query)
	if err != nil {
		return nil, err
	}

	values := url.Values{}
	values.Set("q", q)
	values.Set("limit", strconv.Itoa(MaxResults))
	values.Set("appid", o.apiKey)

	places, err := o.get(ctx, "direct", values)
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(places))
	for _, p := range places {
		out = append(out, p.candidate())
	}
	return truncate(out), nil
}

func (o *OpenWeather) Reverse(ctx context.Context, lat, lon float64) (Candidate, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("limit", "1")
	values.Set("appid", o.apiKey)

	places, err := o.get(ctx, "reverse", values)
	if err != nil {
		return Candidate{}, err
	}
	if len(places) == 0 {
		return Candidate{}, ErrNoMatch
	}
	return places[0].candidate(), nil
}

func (o *OpenWeather) get(ctx context.Context, endpoint string, values url.Values) ([]owmPlace, error) {
	u := fmt.Sprintf("%s/%s?%s", o.baseURL, endpoint, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookup, err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: geocoding API returned status %d", ErrLookup, resp.StatusCode)
	}

	var places []owmPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrLookup, err)
	}
	return places, nil
}
