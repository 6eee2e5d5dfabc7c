package app

import (
	"context"
	"errors"

	"github.com/i474232898/meteou/internal/geocode"
	"github.com/i474232898/meteou/internal/location"
	"github.com/i474232898/meteou/internal/weather"
)

// MessageKind separates informational notices from failures.
type MessageKind string

const (
	KindInfo  MessageKind = "info"
	KindError MessageKind = "error"
)

// Message is the user-facing rendering of an error. Retry is set when trying
// the same action again can succeed without the user changing anything.
type Message struct {
	Kind  MessageKind `json:"kind" yaml:"kind"`
	Text  string      `json:"text" yaml:"text"`
	Retry bool        `json:"retry" yaml:"retry"`
}

// MessageFor maps an error from any controller to the message shown to the
// user. Every error is recoverable.
func MessageFor(err error) Message {
	var perr *weather.ProviderError

	switch {
	case err == nil:
		return Message{Kind: KindInfo, Text: "Done."}

	// Permission and network failures.
	case errors.Is(err, ErrPermissionDenied):
		return Message{Kind: KindError, Text: "Location permission denied.", Retry: true}
	case errors.Is(err, weather.ErrUpstream),
		errors.Is(err, geocode.ErrLookup),
		errors.Is(err, context.DeadlineExceeded):
		return Message{Kind: KindError, Text: "Network error, please try again.", Retry: true}

	// Provider-reported errors.
	case errors.As(err, &perr):
		text := "The weather service rejected the request."
		if perr.Message != "" {
			text = "The weather service rejected the request: " + perr.Message
		}
		return Message{Kind: KindError, Text: text}

	// Storage.
	case errors.Is(err, location.ErrStorageUnavailable):
		return Message{Kind: KindError, Text: "Saved locations could not be loaded."}
	case errors.Is(err, location.ErrPersist):
		return Message{Kind: KindError, Text: "The location could not be saved."}

	// Validation.
	case errors.Is(err, geocode.ErrEmptyQuery):
		return Message{Kind: KindInfo, Text: "Please enter a city name."}
	case errors.Is(err, location.ErrAlreadyExists):
		return Message{Kind: KindInfo, Text: "This location is already in your favorites."}
	case errors.Is(err, location.ErrProtected):
		return Message{Kind: KindInfo, Text: "Default locations cannot be removed."}
	case errors.Is(err, location.ErrNotFound):
		return Message{Kind: KindInfo, Text: "This location is not in your favorites."}
	case errors.Is(err, ErrConfirmationRequired):
		return Message{Kind: KindInfo, Text: "Please confirm the removal."}
	case errors.Is(err, ErrNameRequired):
		return Message{Kind: KindInfo, Text: "Please give the location a name."}
	case errors.Is(err, location.ErrInvalidCoordinates),
		errors.Is(err, weather.ErrInvalidCoordinates):
		return Message{Kind: KindInfo, Text: "Invalid coordinates."}

	case errors.Is(err, ErrStale):
		return Message{Kind: KindInfo, Text: "A newer request replaced this one."}
	case errors.Is(err, ErrNotFocused):
		return Message{Kind: KindInfo, Text: "Open the map to select a point."}
	case errors.Is(err, location.ErrClosed), errors.Is(err, context.Canceled):
		return Message{Kind: KindError, Text: "The request was interrupted.", Retry: true}

	default:
		return Message{Kind: KindError, Text: "Something went wrong."}
	}
}
