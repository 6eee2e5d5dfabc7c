package app

import (
	"context"
	"errors"
	"strings"

	"github.com/i474232898/meteou/internal/location"
	"github.com/i474232898/meteou/internal/metrics"
)

// Favorites backs the saved-locations screen.
type Favorites struct {
	store   LocationStore
	metrics *metrics.Metrics
}

func NewFavorites(store LocationStore, m *metrics.Metrics) *Favorites {
	return &Favorites{store: store, metrics: m}
}

// List reloads the merged view, as on every screen activation.
func (f *Favorites) List(ctx context.Context) []location.Location {
	return f.store.Load(ctx)
}

// IsDefault reports whether loc is a bundled, non-removable location.
func (f *Favorites) IsDefault(loc location.Location) bool {
	return f.store.IsDefault(loc)
}

// Precision is the number of decimals used to match coordinates.
func (f *Favorites) Precision() int {
	return f.store.Precision()
}

func (f *Favorites) Add(ctx context.Context, loc location.Location) ([]location.Location, error) {
	loc.Name = strings.TrimSpace(loc.Name)
	if loc.Name == "" {
		f.metrics.Mutation("add", metrics.OutcomeRejected)
		return nil, ErrNameRequired
	}

	locs, err := f.store.Add(ctx, loc)
	f.metrics.Mutation("add", mutationOutcome(err))
	return locs, err
}

// Remove deletes loc from the favorites once the user has confirmed it.
func (f *Favorites) Remove(ctx context.Context, loc location.Location, confirmed bool) ([]location.Location, error) {
	if f.store.IsDefault(loc) {
		f.metrics.Mutation("remove", metrics.OutcomeRejected)
		return nil, location.ErrProtected
	}
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	locs, err := f.store.Remove(ctx, loc)
	f.metrics.Mutation("remove", mutationOutcome(err))
	return locs, err
}

// Select returns the parameters that open loc on the map screen.
func (f *Favorites) Select(loc location.Location) NavParams {
	return ParamsFor(loc)
}

func mutationOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, location.ErrAlreadyExists),
		errors.Is(err, location.ErrProtected),
		errors.Is(err, location.ErrNotFound),
		errors.Is(err, location.ErrInvalidCoordinates):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
