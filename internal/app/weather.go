package app

import (
	"context"

	"github.com/i474232898/meteou/internal/metrics"
	"github.com/i474232898/meteou/internal/weather"
)

// Weather counts fetch outcomes around a WeatherFetcher.
type Weather struct {
	fetcher WeatherFetcher
	metrics *metrics.Metrics
}

func NewWeather(f WeatherFetcher, m *metrics.Metrics) *Weather {
	return &Weather{fetcher: f, metrics: m}
}

func (w *Weather) Fetch(ctx context.Context, lat, lon float64) (weather.Report, error) {
	report, err := w.fetcher.Fetch(ctx, lat, lon)
	if err != nil {
		w.metrics.WeatherFetch(metrics.OutcomeError)
		return weather.Report{}, err
	}
	w.metrics.WeatherFetch(metrics.OutcomeOK)
	return report, nil
}
