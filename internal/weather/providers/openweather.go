package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/meteou/internal/weather"
)

const (
	defaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5"

	// DefaultForecastPoints is eight 3-hour steps, i.e. the next 24 hours.
	DefaultForecastPoints = 8
)

// OpenWeatherProvider implements the weather.Provider interface for
// OpenWeatherMap using the current weather and 5 day / 3 hour endpoints.
type OpenWeatherProvider struct {
	name           string
	apiKey         string
	baseURL        string
	lang           string
	forecastPoints int
	httpCfg        HTTPClientConfig
	circuit        *gobreaker.CircuitBreaker
	now            func() time.Time
}

// OpenWeatherOption customizes the provider.
type OpenWeatherOption func(*OpenWeatherProvider)

// WithBaseURL points the provider at another API root (used by tests).
func WithBaseURL(u string) OpenWeatherOption {
	return func(p *OpenWeatherProvider) { p.baseURL = strings.TrimRight(u, "/") }
}

// WithLanguage sets the language of condition descriptions.
func WithLanguage(lang string) OpenWeatherOption {
	return func(p *OpenWeatherProvider) { p.lang = lang }
}

// WithForecastPoints sets how many 3-hour entries are kept.
func WithForecastPoints(n int) OpenWeatherOption {
	return func(p *OpenWeatherProvider) {
		if n > 0 {
			p.forecastPoints = n
		}
	}
}

// WithMaxRetries enables retries with exponential backoff. The default is
// a single attempt.
func WithMaxRetries(n int) OpenWeatherOption {
	return func(p *OpenWeatherProvider) {
		if n >= 0 {
			p.httpCfg.Backoff.MaxRetries = n
		}
	}
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...OpenWeatherOption) *OpenWeatherProvider {
	p := &OpenWeatherProvider{
		name:           "openweathermap",
		apiKey:         apiKey,
		baseURL:        defaultOpenWeatherURL,
		lang:           "en",
		forecastPoints: DefaultForecastPoints,
		httpCfg:        defaultHTTPConfig(client),
		circuit:        newCircuitBreaker("openweather"),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmCurrent struct {
	Name     string `json:"name"`
	Dt       int64  `json:"dt"`
	Timezone int    `json:"timezone"`
	Main     struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility float64        `json:"visibility"`
	Weather    []owmCondition `json:"weather"`
}

type owmForecast struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []owmCondition `json:"weather"`
	} `json:"list"`
	City struct {
		Name     string `json:"name"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

// owmEnvelope holds the status fields both endpoints embed in their body.
// "cod" is a number on /weather and a string on /forecast.
type owmEnvelope struct {
	Cod     statusCode      `json:"cod"`
	Message json.RawMessage `json:"message"`
}

type statusCode int

func (c *statusCode) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		text = strings.TrimSpace(text)
		if text == "" {
			*c = 0
			return nil
		}
		value, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("parse status code %q: %w", text, err)
		}
		*c = statusCode(value)
		return nil
	}

	var value int
	if err := json.Unmarshal(data, &value); err == nil {
		*c = statusCode(value)
		return nil
	}

	return fmt.Errorf("status code must be a string or number")
}

func (e owmEnvelope) message() string {
	var text string
	if err := json.Unmarshal(e.Message, &text); err == nil {
		return text
	}
	return strings.TrimSpace(string(e.Message))
}

// Fetch issues the current-conditions and forecast requests concurrently.
// Either one failing cancels the other and fails the whole fetch.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, lat, lon float64) (weather.Report, error) {
	if p.apiKey == "" {
		return weather.Report{}, fmt.Errorf("openweather api key is not configured")
	}

	var (
		current  owmCurrent
		forecast owmForecast
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := p.getJSON(gctx, "weather", lat, lon, &current); err != nil {
			return fmt.Errorf("current conditions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := p.getJSON(gctx, "forecast", lat, lon, &forecast); err != nil {
			return fmt.Errorf("forecast: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return weather.Report{}, err
	}

	return p.normalize(lat, lon, current, forecast), nil
}

func (p *OpenWeatherProvider) getJSON(ctx context.Context, endpoint string, lat, lon float64, out any) error {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
		values.Set("units", "metric")
		values.Set("lang", p.lang)
		values.Set("appid", p.apiKey)

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", weather.ErrUpstream, err)
	}

	var env owmEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: decode body: %v", weather.ErrUpstream, err)
	}
	if env.Cod != 0 && env.Cod != http.StatusOK {
		return &weather.ProviderError{Provider: p.name, Code: int(env.Cod), Message: env.message()}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode body: %v", weather.ErrUpstream, err)
	}
	return nil
}

func (p *OpenWeatherProvider) normalize(lat, lon float64, current owmCurrent, forecast owmForecast) weather.Report {
	ts := time.Unix(current.Dt, 0).UTC()
	if current.Dt == 0 {
		ts = p.now().UTC()
	}

	var first owmCondition
	if len(current.Weather) > 0 {
		first = current.Weather[0]
	}

	place := current.Name
	if place == "" {
		place = forecast.City.Name
	}

	// Forecast labels use the location's own UTC offset.
	zone := time.FixedZone("", forecast.City.Timezone)
	n := p.forecastPoints
	if n > len(forecast.List) {
		n = len(forecast.List)
	}
	points := make([]weather.ForecastPoint, 0, n)
	for _, entry := range forecast.List[:n] {
		at := time.Unix(entry.Dt, 0)
		var icon string
		if len(entry.Weather) > 0 {
			icon = entry.Weather[0].Icon
		}
		points = append(points, weather.ForecastPoint{
			Time:        at.In(zone).Format("15:04"),
			Timestamp:   at.UTC(),
			Temperature: roundTemp(entry.Main.Temp),
			Icon:        mapOpenWeatherIcon(icon),
		})
	}

	return weather.Report{
		Latitude:    lat,
		Longitude:   lon,
		Place:       place,
		Timestamp:   ts,
		Temperature: roundTemp(current.Main.Temp),
		FeelsLike:   roundTemp(current.Main.FeelsLike),
		Description: first.Description,
		Condition:   mapOpenWeatherCondition(first.Main),
		Icon:        mapOpenWeatherIcon(first.Icon),
		Humidity:    current.Main.Humidity,
		WindSpeed:   current.Wind.Speed,
		Pressure:    current.Main.Pressure,
		Visibility:  current.Visibility,
		Forecast:    points,
		Provider:    p.name,
	}
}

func roundTemp(v float64) int {
	return int(math.Round(v))
}

func mapOpenWeatherCondition(main string) weather.Condition {
	switch main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze", "Smoke", "Dust", "Sand":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}

// mapOpenWeatherIcon folds OWM icon codes ("10d", "04n", ...) into display
// categories; day and night variants share a category.
func mapOpenWeatherIcon(code string) weather.Icon {
	code = strings.TrimSuffix(code, "d")
	code = strings.TrimSuffix(code, "n")

	switch code {
	case "01":
		return weather.IconSun
	case "02":
		return weather.IconCloudSun
	case "03", "04":
		return weather.IconCloud
	case "09", "10":
		return weather.IconRain
	case "11":
		return weather.IconStorm
	case "13":
		return weather.IconSnow
	case "50":
		return weather.IconFog
	default:
		return weather.IconSun
	}
}
