package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/meteou/internal/store"
)

// Geocoder backends.
const (
	GeocoderOpenWeather = "openweather"
	GeocoderGoogle      = "google"
)

var validate = validator.New()

type AppConfig struct {
	OpenWeatherAPIKey string
	GoogleAPIKey      string `validate:"required_if=Geocoder google"`

	Geocoder string `validate:"oneof=openweather google"`
	Language string `validate:"required"`

	HTTPTimeout time.Duration `validate:"gt=0"`

	// ForecastPoints is how many 3-hour forecast entries a report keeps.
	ForecastPoints int `validate:"min=1,max=40"`
	// WeatherMaxRetries of zero means a single attempt per request.
	WeatherMaxRetries int `validate:"min=0,max=5"`

	// Favorites.
	CoordPrecision       int    `validate:"min=0,max=10"`
	StorageKey           string `validate:"required"`
	DefaultLocationsFile string
	Store                store.Options

	// Home position served as the device position. Both unset means the
	// position is unavailable.
	HomeLatitude  *float64 `validate:"omitempty,latitude"`
	HomeLongitude *float64 `validate:"omitempty,longitude"`

	Port string `validate:"required,numeric"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_GEOCODING_API_KEY")
	cfg.Geocoder = strings.ToLower(getenvDefault("GEOCODER", GeocoderOpenWeather))
	cfg.Language = getenvDefault("OPENWEATHER_LANG", "en")

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.ForecastPoints = getenvInt("FORECAST_POINTS", 8)
	cfg.WeatherMaxRetries = getenvInt("WEATHER_MAX_RETRIES", 0)

	cfg.CoordPrecision = getenvInt("COORD_PRECISION", 6)
	cfg.StorageKey = getenvDefault("STORAGE_KEY", "savedLocations")
	cfg.DefaultLocationsFile = os.Getenv("DEFAULT_LOCATIONS_FILE")
	cfg.Store = store.Options{
		Backend:       strings.ToLower(getenvDefault("STORAGE_BACKEND", store.BackendFile)),
		Dir:           os.Getenv("STORAGE_DIR"),
		RedisAddr:     getenvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),
		RedisPrefix:   getenvDefault("REDIS_PREFIX", "meteou:"),
		DSN:           os.Getenv("DATABASE_DSN"),
		S3: store.S3Options{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    getenvDefault("S3_BUCKET", "meteou"),
			Region:    os.Getenv("S3_REGION"),
			UseSSL:    getenvBool("S3_USE_SSL", true),
		},
	}
	if cfg.Store.Backend == store.BackendSQLite && cfg.Store.DSN == "" {
		cfg.Store.DSN = "meteou.db"
	}

	home, err := loadHome()
	if err != nil {
		return nil, err
	}
	if home != nil {
		cfg.HomeLatitude, cfg.HomeLongitude = &home[0], &home[1]
	}

	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// HasHome reports whether a home position is configured.
func (c *AppConfig) HasHome() bool {
	return c.HomeLatitude != nil && c.HomeLongitude != nil
}

func loadHome() (*[2]float64, error) {
	lat := os.Getenv("HOME_LATITUDE")
	lon := os.Getenv("HOME_LONGITUDE")
	if lat == "" && lon == "" {
		return nil, nil
	}
	if lat == "" || lon == "" {
		return nil, fmt.Errorf("HOME_LATITUDE and HOME_LONGITUDE must be set together")
	}

	var home [2]float64
	var err error
	if home[0], err = strconv.ParseFloat(lat, 64); err != nil {
		return nil, fmt.Errorf("invalid HOME_LATITUDE: %w", err)
	}
	if home[1], err = strconv.ParseFloat(lon, 64); err != nil {
		return nil, fmt.Errorf("invalid HOME_LONGITUDE: %w", err)
	}
	return &home, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
