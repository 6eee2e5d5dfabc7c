package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/meteou/internal/api/http"
	"github.com/i474232898/meteou/internal/app"
	"github.com/i474232898/meteou/internal/cli"
	"github.com/i474232898/meteou/internal/config"
	"github.com/i474232898/meteou/internal/geocode"
	"github.com/i474232898/meteou/internal/location"
	"github.com/i474232898/meteou/internal/metrics"
	"github.com/i474232898/meteou/internal/store"
	"github.com/i474232898/meteou/internal/weather"
	"github.com/i474232898/meteou/internal/weather/providers"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	kv, closeKV, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("failed to open %s storage: %v", cfg.Store.Backend, err)
	}
	defer func() {
		if err := closeKV(); err != nil {
			log.Printf("ERROR: closing storage: %v", err)
		}
	}()

	defaults, err := location.LoadDefaults(cfg.DefaultLocationsFile)
	if err != nil {
		log.Fatalf("failed to load default locations: %v", err)
	}
	locations := location.NewStore(kv, defaults,
		location.WithStorageKey(cfg.StorageKey),
		location.WithPrecision(cfg.CoordPrecision),
	)
	defer locations.Close()

	// Provider with resilience (circuit breaker, optional backoff).
	provider := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey,
		providers.WithLanguage(cfg.Language),
		providers.WithForecastPoints(cfg.ForecastPoints),
		providers.WithMaxRetries(cfg.WeatherMaxRetries),
	)

	var geocoder geocode.Geocoder = geocode.NewOpenWeather(httpClient, cfg.OpenWeatherAPIKey)
	if cfg.Geocoder == config.GeocoderGoogle {
		geocoder = geocode.NewGoogle(cfg.GoogleAPIKey)
	}

	position := app.NoPosition()
	if cfg.HasHome() {
		position = app.NewStaticPosition(*cfg.HomeLatitude, *cfg.HomeLongitude)
	}

	m := metrics.New()
	favorites := app.NewFavorites(locations, m)
	fetcher := app.NewWeather(weather.NewService(provider), m)

	controllers := httpapi.Controllers{
		Favorites: favorites,
		Search:    app.NewSearch(geocoder, favorites, m),
		Weather:   fetcher,
		Map:       app.NewMapScreen(fetcher, geocoder, m),
		Position:  position,
		Metrics:   m,
	}

	deps := cli.Dependencies{
		Favorites: controllers.Favorites,
		Search:    controllers.Search,
		Weather:   controllers.Weather,
		Position:  controllers.Position,
		Serve: func(ctx context.Context) error {
			return serve(ctx, cfg.Port, controllers)
		},
		Stdin:   os.Stdin,
		Version: version,
	}

	code := cli.Execute(ctx, os.Args[1:], deps, os.Stdout, os.Stderr)
	if code != 0 {
		stop()
		locations.Close()
		_ = closeKV()
		os.Exit(code)
	}
}

func serve(ctx context.Context, port string, controllers httpapi.Controllers) error {
	// Basic app configuration
	fapp := fiber.New(fiber.Config{
		AppName:               "meteou",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	fapp.Use(logger.New())
	fapp.Use(recover.New())

	// Basic health endpoint
	fapp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "meteou",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(fapp, controllers)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("INFO: listening on :%s", port)
		errCh <- fapp.Listen(":" + port)
	}()

	// Wait for termination signal
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fapp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	return nil
}
