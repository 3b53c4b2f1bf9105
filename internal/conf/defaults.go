// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "AgriSight-Go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/")

	viper.SetDefault("analysis.maxconcurrency", 8)
	viper.SetDefault("analysis.sampletimeout", 15*time.Second)
	viper.SetDefault("analysis.threshold", 0.0)

	viper.SetDefault("imagery.provider", "arcgis")
	viper.SetDefault("imagery.cachettl", 30*time.Minute)
	viper.SetDefault("imagery.arcgis.endpoint",
		"https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer")
	viper.SetDefault("imagery.mapbox.endpoint",
		"https://api.mapbox.com/styles/v1/mapbox/satellite-v9/static")
	viper.SetDefault("imagery.mapbox.accesstoken", "")
	viper.SetDefault("imagery.mapbox.imagesize", 256)

	viper.SetDefault("classifier.endpoint", "http://localhost:7860/api/classify")
	viper.SetDefault("classifier.timeout", 10*time.Second)
	viper.SetDefault("classifier.breaker.maxrequests", 3)
	viper.SetDefault("classifier.breaker.interval", 60*time.Second)
	viper.SetDefault("classifier.breaker.timeout", 30*time.Second)
	viper.SetDefault("classifier.breaker.minrequests", 5)
	viper.SetDefault("classifier.breaker.failurerate", 0.6)

	viper.SetDefault("weather.provider", "openmeteo")
	viper.SetDefault("weather.endpoint", "https://api.open-meteo.com/v1/forecast")
	viper.SetDefault("weather.cachettl", 1*time.Hour)

	viper.SetDefault("crops.topn", 10)
	viper.SetDefault("crops.defaultfarmsizeha", 1.0)
	viper.SetDefault("crops.defaultrisktolerance", "medium")

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.host", "0.0.0.0")
	viper.SetDefault("webserver.port", "8080")
}
