// Package conf handles the loading, validation and access of the
// application configuration.
package conf

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// MainSettings contains application wide settings
type MainSettings struct {
	Name string      `yaml:"name"` // name of this node, can be used to identify the source of analysis
	Log  LogSettings `yaml:"log"`  // log settings
}

// LogSettings contains settings for application logging
type LogSettings struct {
	Enabled bool   `yaml:"enabled"` // true to enable file logging
	Path    string `yaml:"path"`    // directory for per-service log files
}

// AnalysisSettings controls the classification pipeline
type AnalysisSettings struct {
	MaxConcurrency int           `yaml:"maxconcurrency"` // process-wide cap on in-flight sample classifications
	SampleTimeout  time.Duration `yaml:"sampletimeout"`  // per-sample imagery fetch + classify budget
	Threshold      float64       `yaml:"threshold"`      // minimum confidence to accept a sample result
}

// ImagerySettings selects and configures the satellite imagery provider
type ImagerySettings struct {
	Provider string         `yaml:"provider"` // "arcgis" or "mapbox"
	CacheTTL time.Duration  `yaml:"cachettl"` // tile cache time to live
	Arcgis   ArcgisSettings `yaml:"arcgis"`
	Mapbox   MapboxSettings `yaml:"mapbox"`
}

// ArcgisSettings contains settings for the ArcGIS World Imagery tile service
type ArcgisSettings struct {
	Endpoint string `yaml:"endpoint"`
}

// MapboxSettings contains settings for the Mapbox static imagery API
type MapboxSettings struct {
	Endpoint    string `yaml:"endpoint"`
	AccessToken string `yaml:"accesstoken"`
	ImageSize   int    `yaml:"imagesize"` // pixel width/height of requested images
}

// ClassifierSettings configures the remote land-cover inference service
type ClassifierSettings struct {
	Endpoint string          `yaml:"endpoint"`
	Timeout  time.Duration   `yaml:"timeout"`
	Breaker  BreakerSettings `yaml:"breaker"`
}

// BreakerSettings configures the circuit breaker guarding the classifier
type BreakerSettings struct {
	MaxRequests uint32        `yaml:"maxrequests"` // allowed requests in half-open state
	Interval    time.Duration `yaml:"interval"`    // cyclic period to clear counts in closed state
	Timeout     time.Duration `yaml:"timeout"`     // open state duration before half-open
	MinRequests uint32        `yaml:"minrequests"` // requests before failure ratio is evaluated
	FailureRate float64       `yaml:"failurerate"` // ratio that trips the breaker
}

// WeatherSettings configures the climate data provider
type WeatherSettings struct {
	Provider string        `yaml:"provider"` // "openmeteo" or "none"
	Endpoint string        `yaml:"endpoint"`
	CacheTTL time.Duration `yaml:"cachettl"`
}

// CropsSettings configures the recommendation engine
type CropsSettings struct {
	TopN                 int     `yaml:"topn"`                 // recommendations retained after ranking
	DefaultFarmSizeHa    float64 `yaml:"defaultfarmsizeha"`    // used when a request omits farm size
	DefaultRiskTolerance string  `yaml:"defaultrisktolerance"` // low, medium or high
}

// WebServerSettings contains settings for the HTTP API server
type WebServerSettings struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    string `yaml:"port"`
}

// Settings contains all runtime settings
type Settings struct {
	Debug bool `yaml:"debug"` // true to enable debug level logging

	Main       MainSettings       `yaml:"main"`
	Analysis   AnalysisSettings   `yaml:"analysis"`
	Imagery    ImagerySettings    `yaml:"imagery"`
	Classifier ClassifierSettings `yaml:"classifier"`
	Weather    WeatherSettings    `yaml:"weather"`
	Crops      CropsSettings      `yaml:"crops"`
	WebServer  WebServerSettings  `yaml:"webserver"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/agrisight")
	viper.AddConfigPath("/etc/agrisight")

	viper.SetEnvPrefix("agrisight")
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file is fine, defaults plus env cover everything
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// Setting returns the current settings instance, loading it if needed.
func Setting() *Settings {
	settingsMutex.RLock()
	if settingsInstance != nil {
		defer settingsMutex.RUnlock()
		return settingsInstance
	}
	settingsMutex.RUnlock()

	if _, err := Load(); err != nil {
		return nil
	}

	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
