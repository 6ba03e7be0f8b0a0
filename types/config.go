package types

// AppConfig represents the application configuration loaded from config file
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Poll     PollConfig     `yaml:"poll"`
	Weather  WeatherConfig  `yaml:"weather"`
	Location LocationConfig `yaml:"location,omitempty"`
	Control  ControlConfig  `yaml:"control"`
}

// ServerConfig points at the diary application that accepts uploads.
type ServerConfig struct {
	BaseURL      string `yaml:"baseURL"`
	UploadPath   string `yaml:"uploadPath"`
	ProgressPath string `yaml:"progressPath"` // must contain one %s for the upload id
	Timeout      int    `yaml:"timeout"`      // per request, seconds
}

// PollConfig bounds the progress polling loop.
type PollConfig struct {
	IntervalMs       int `yaml:"intervalMs"`
	MaxAttempts      int `yaml:"maxAttempts"`      // 0 means unbounded
	MaxDurationSec   int `yaml:"maxDurationSec"`   // 0 means no deadline
	TransientRetries int `yaml:"transientRetries"` // consecutive poll failures tolerated
}

type WeatherConfig struct {
	BaseURL  string `yaml:"baseURL"`
	APIKey   string `yaml:"apiKey"`
	Units    string `yaml:"units"`
	CacheSec int    `yaml:"cacheSec"`
}

// LocationConfig stands in for the browser geolocation prompt: unset means denied.
type LocationConfig struct {
	Latitude  *float64 `yaml:"latitude,omitempty"`
	Longitude *float64 `yaml:"longitude,omitempty"`
}

type ControlConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Port         int      `yaml:"port"`
	AllowOrigins []string `yaml:"allowOrigins"` // browser origins allowed to call the control API
}

// Config holds runtime overrides from CLI flags
type Config struct {
	Log           string
	UseConfigPath string
	UseEnvPath    string // .env file read before the config
	UseServerURL  string
	UseUpload     string // path of the file to upload and follow until done
	UseLocation   string // "lat,lon"; empty keeps the config value
	UseServe      bool   // start the local control API
	UseNotify     bool   // also push notifications to the unix socket
	UsePort       int
	UseInterval   int // poll interval override in milliseconds
	UseMaxChecks  int // -1 keeps the config value
}
