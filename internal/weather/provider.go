package weather

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUpstream covers transport failures and non-success HTTP statuses.
	ErrUpstream = errors.New("weather provider unreachable")
	// ErrProvider is matched by *ProviderError.
	ErrProvider = errors.New("weather provider reported an error")
)

// ProviderError is a logical error the provider embedded in an otherwise
// successful response body.
type ProviderError struct {
	Provider string
	Code     int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: error code %d", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s: error code %d: %s", e.Provider, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return ErrProvider
}

// Provider abstracts a weather data source that can produce a full Report
// (current conditions and short forecast) for a coordinate pair.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, lat, lon float64) (Report, error)
}
