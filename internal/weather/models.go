package weather

import (
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Icon is the display category used to pick a weather pictogram.
type Icon string

const (
	IconSun      Icon = "sun"
	IconCloudSun Icon = "cloud_sun"
	IconCloud    Icon = "cloud"
	IconRain     Icon = "rain"
	IconStorm    Icon = "storm"
	IconSnow     Icon = "snow"
	IconFog      Icon = "fog"
)

// Report is the normalized current-conditions-plus-forecast view for one
// coordinate pair. Temperatures are rounded to whole degrees Celsius.
type Report struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Place     string  `json:"place,omitempty" yaml:"place,omitempty"`

	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"` // always UTC
	Temperature int       `json:"temperatureC" yaml:"temperatureC"`
	FeelsLike   int       `json:"feelsLikeC" yaml:"feelsLikeC"`
	Description string    `json:"description" yaml:"description"`
	Condition   Condition `json:"condition" yaml:"condition"`
	Icon        Icon      `json:"icon" yaml:"icon"`
	Humidity    float64   `json:"humidityPercent" yaml:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeed" yaml:"windSpeed"` // m/s
	Pressure    float64   `json:"pressureHpa" yaml:"pressureHpa"`
	Visibility  float64   `json:"visibilityM" yaml:"visibilityM"`

	// Forecast holds the first entries of the provider's 3-hour series.
	Forecast []ForecastPoint `json:"forecast" yaml:"forecast"`

	Provider string `json:"provider" yaml:"provider"`
}

// ForecastPoint is one entry of the short-term forecast.
type ForecastPoint struct {
	Time        string    `json:"time" yaml:"time"` // "15:04" in the location's UTC offset
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	Temperature int       `json:"temperatureC" yaml:"temperatureC"`
	Icon        Icon      `json:"icon" yaml:"icon"`
}
