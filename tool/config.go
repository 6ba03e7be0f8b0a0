package tool

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/moyoez/diary-upload-go/types"
)

var ConfigPath = "config.yaml" // be aware that it can be changed, default to ./config.yaml

func defaultConfig() types.AppConfig {
	return types.AppConfig{
		Server: types.ServerConfig{
			BaseURL:      "http://127.0.0.1:5001",
			UploadPath:   "/data/upload",
			ProgressPath: "/data/upload/progress/%s",
			Timeout:      30,
		},
		Poll: types.PollConfig{
			IntervalMs:  1000,
			MaxAttempts: 600, // ten minutes at the default interval
		},
		Weather: types.WeatherConfig{
			BaseURL:  "https://api.openweathermap.org",
			Units:    "metric",
			CacheSec: 600,
		},
		Control: types.ControlConfig{
			Enabled:      false,
			Port:         53318,
			AllowOrigins: []string{"http://localhost:5001", "http://127.0.0.1:5001"},
		},
	}
}

// LoadConfig reads path (or ConfigPath) and fills unset fields with defaults.
// A missing file is created with the defaults.
func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := defaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if writeErr := writeDefaultConfig(path, cfg); writeErr != nil {
				return cfg, fmt.Errorf("config file not found, and failed to generate default config: %v", writeErr)
			}
			DefaultLogger.Infof("Created new config file at %s", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if info.IsDir() {
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %v", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ValidateConfig rejects settings the upload client cannot run with.
func ValidateConfig(cfg *types.AppConfig) error {
	if cfg.Server.BaseURL == "" {
		return fmt.Errorf("server.baseURL must not be empty")
	}
	if strings.Count(cfg.Server.ProgressPath, "%s") != 1 {
		return fmt.Errorf("server.progressPath must contain exactly one %%s, got %q", cfg.Server.ProgressPath)
	}
	if cfg.Poll.IntervalMs <= 0 {
		return fmt.Errorf("poll.intervalMs must be positive, got %d", cfg.Poll.IntervalMs)
	}
	if cfg.Poll.MaxAttempts < 0 || cfg.Poll.MaxDurationSec < 0 || cfg.Poll.TransientRetries < 0 {
		return fmt.Errorf("poll bounds must not be negative")
	}
	return nil
}

func writeDefaultConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyFlagOverrides folds CLI overrides into cfg.
func ApplyFlagOverrides(cfg *types.AppConfig, flags types.Config) error {
	if flags.UseServerURL != "" {
		cfg.Server.BaseURL = flags.UseServerURL
	}
	if flags.UsePort > 0 {
		cfg.Control.Port = flags.UsePort
	}
	if flags.UseServe {
		cfg.Control.Enabled = true
	}
	if flags.UseInterval > 0 {
		cfg.Poll.IntervalMs = flags.UseInterval
	}
	if flags.UseMaxChecks >= 0 {
		cfg.Poll.MaxAttempts = flags.UseMaxChecks
	}
	if flags.UseLocation != "" {
		lat, lon, err := ParseLocation(flags.UseLocation)
		if err != nil {
			return err
		}
		cfg.Location.Latitude = &lat
		cfg.Location.Longitude = &lon
	}
	return nil
}

// ParseLocation parses "lat,lon".
func ParseLocation(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid location %q, want lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("invalid latitude %q", parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("invalid longitude %q", parts[1])
	}
	return lat, lon, nil
}
