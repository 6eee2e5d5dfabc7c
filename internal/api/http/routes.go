package httpapi

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/i474232898/meteou/internal/app"
	"github.com/i474232898/meteou/internal/geocode"
	"github.com/i474232898/meteou/internal/location"
	"github.com/i474232898/meteou/internal/metrics"
	"github.com/i474232898/meteou/internal/weather"
)

var validate = validator.New()

// Controllers groups everything the routes call into.
type Controllers struct {
	Favorites *app.Favorites
	Search    *app.Search
	Weather   *app.Weather
	Map       *app.MapScreen
	Position  app.PositionProvider
	Metrics   *metrics.Metrics
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(fapp *fiber.App, ctl Controllers) {
	if ctl.Metrics != nil {
		fapp.Get("/metrics", adaptor.HTTPHandler(ctl.Metrics.Handler()))
	}

	v1 := fapp.Group("/api/v1", requestMetrics(ctl.Metrics))

	v1.Get("/locations", func(c *fiber.Ctx) error {
		return c.JSON(ctl.Favorites.List(c.UserContext()))
	})

	v1.Post("/locations", func(c *fiber.Ctx) error {
		var req locationBody
		if err := bindBody(c, &req); err != nil {
			return err
		}
		locs, err := ctl.Favorites.Add(c.UserContext(), req.toLocation())
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(locs)
	})

	v1.Delete("/locations", func(c *fiber.Ctx) error {
		q, err := parseCoordQuery(c, "latitude", "longitude")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		loc := location.Location{Latitude: q.Lat, Longitude: q.Lon}
		locs, err := ctl.Favorites.Remove(c.UserContext(), loc, c.QueryBool("confirm", false))
		if err != nil {
			return err
		}
		return c.JSON(locs)
	})

	v1.Post("/locations/select", func(c *fiber.Ctx) error {
		var req locationBody
		if err := bindBody(c, &req); err != nil {
			return err
		}
		return c.JSON(ctl.Favorites.Select(req.toLocation()))
	})

	v1.Get("/weather", func(c *fiber.Ctx) error {
		q, err := parseCoordQuery(c, "lat", "lon")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		report, err := ctl.Weather.Fetch(c.UserContext(), q.Lat, q.Lon)
		if err != nil {
			return err
		}
		return c.JSON(report)
	})

	v1.Get("/geocode", func(c *fiber.Ctx) error {
		cands, err := ctl.Search.Search(c.UserContext(), c.Query("q"))
		if err != nil {
			return err
		}
		return c.JSON(cands)
	})

	v1.Post("/geocode/save", func(c *fiber.Ctx) error {
		var req candidateBody
		if err := bindBody(c, &req); err != nil {
			return err
		}
		locs, err := ctl.Search.Save(c.UserContext(), req.toCandidate())
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(locs)
	})

	v1.Get("/position", func(c *fiber.Ctx) error {
		loc, err := ctl.Position.Position(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(loc)
	})

	m := v1.Group("/map")

	m.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(ctl.Map.State())
	})

	m.Post("/focus", func(c *fiber.Ctx) error {
		return c.JSON(ctl.Map.Focus())
	})

	m.Post("/blur", func(c *fiber.Ctx) error {
		return c.JSON(ctl.Map.Blur())
	})

	m.Post("/tap", func(c *fiber.Ctx) error {
		var req tapBody
		if err := bindBody(c, &req); err != nil {
			return err
		}
		st, err := ctl.Map.Tap(c.UserContext(), req.Latitude, req.Longitude)
		if err != nil {
			return err
		}
		return c.JSON(st)
	})

	m.Post("/navigate", func(c *fiber.Ctx) error {
		var req app.NavParams
		if err := bindBody(c, &req); err != nil {
			return err
		}
		st, err := ctl.Map.Navigate(c.UserContext(), req)
		if err != nil {
			return err
		}
		return c.JSON(st)
	})
}

// ErrorHandler renders every error as {"error":true,"message":...,"retry":...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	message := err.Error()
	retry := false

	var fe *fiber.Error
	if !errors.As(err, &fe) {
		msg := app.MessageFor(err)
		message = msg.Text
		retry = msg.Retry
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
		"retry":   retry,
	})
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, location.ErrAlreadyExists),
		errors.Is(err, app.ErrStale),
		errors.Is(err, app.ErrNotFocused):
		return fiber.StatusConflict
	case errors.Is(err, location.ErrProtected),
		errors.Is(err, app.ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, location.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, app.ErrConfirmationRequired),
		errors.Is(err, app.ErrNameRequired),
		errors.Is(err, geocode.ErrEmptyQuery),
		errors.Is(err, location.ErrInvalidCoordinates),
		errors.Is(err, weather.ErrInvalidCoordinates):
		return fiber.StatusBadRequest
	case errors.Is(err, location.ErrStorageUnavailable),
		errors.Is(err, location.ErrPersist),
		errors.Is(err, location.ErrClosed):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, geocode.ErrLookup),
		errors.Is(err, weather.ErrUpstream),
		errors.Is(err, weather.ErrProvider):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func requestMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = statusFor(err)
		}
		m.Request("meteou", c.Route().Path, c.Method(), status)
		return err
	}
}

// locationBody is the JSON shape of a favorite.
type locationBody struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

func (b locationBody) toLocation() location.Location {
	return location.Location{Name: b.Name, Latitude: b.Latitude, Longitude: b.Longitude}
}

type candidateBody struct {
	Name      string  `json:"name" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Country   string  `json:"country"`
	State     string  `json:"state"`
}

func (b candidateBody) toCandidate() geocode.Candidate {
	return geocode.Candidate{Name: b.Name, Latitude: b.Latitude, Longitude: b.Longitude, Country: b.Country, State: b.State}
}

type tapBody struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// coordQuery holds query parameters identifying a point.
type coordQuery struct {
	Lat float64 `validate:"latitude"`
	Lon float64 `validate:"longitude"`
}

func parseCoordQuery(c *fiber.Ctx, latKey, lonKey string) (coordQuery, error) {
	var q coordQuery

	latStr, lonStr := c.Query(latKey), c.Query(lonKey)
	if latStr == "" || lonStr == "" {
		return q, fmt.Errorf("%s and %s query parameters are required", latKey, lonKey)
	}

	var err error
	if q.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return q, fmt.Errorf("invalid %s: %q", latKey, latStr)
	}
	if q.Lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return q, fmt.Errorf("invalid %s: %q", lonKey, lonStr)
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}
