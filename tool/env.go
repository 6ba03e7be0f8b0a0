package tool

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/moyoez/diary-upload-go/types"
)

// Environment keys read by ApplyEnvOverrides.
const (
	EnvServerURL     = "DIARY_SERVER_URL"
	EnvWeatherAPIKey = "DIARY_WEATHER_API_KEY"
	EnvLocation      = "DIARY_LOCATION"
)

// LoadEnvFile loads path into the process environment. Variables already set
// win over the file. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			DefaultLogger.Debugf("No env file at %s, skipping", path)
			return nil
		}
		return fmt.Errorf("failed to load env file: %v", err)
	}
	DefaultLogger.Infof("Loaded env file %s", path)
	return nil
}

// ApplyEnvOverrides folds DIARY_* variables into cfg. They sit between the
// config file and CLI flags, so secrets such as the weather key can stay out
// of config.yaml.
func ApplyEnvOverrides(cfg *types.AppConfig) error {
	if v := os.Getenv(EnvServerURL); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv(EnvWeatherAPIKey); v != "" {
		cfg.Weather.APIKey = v
	}
	if v := os.Getenv(EnvLocation); v != "" {
		lat, lon, err := ParseLocation(v)
		if err != nil {
			return fmt.Errorf("%s: %v", EnvLocation, err)
		}
		cfg.Location.Latitude = &lat
		cfg.Location.Longitude = &lon
	}
	return nil
}
