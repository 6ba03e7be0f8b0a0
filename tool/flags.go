package tool

import (
	"flag"

	"github.com/moyoez/diary-upload-go/types"
)

// SetFlags parses CLI flags and returns the override config.
func SetFlags() types.Config {
	var cfg types.Config
	flag.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	flag.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	flag.StringVar(&cfg.UseEnvPath, "useEnvPath", ".env", "dotenv file with DIARY_* overrides, skipped when missing")
	flag.StringVar(&cfg.UseServerURL, "useServerURL", "", "override the diary server base URL, e.g. http://127.0.0.1:5001")
	flag.StringVar(&cfg.UseUpload, "useUpload", "", "upload this file and follow its progress until it finishes")
	flag.StringVar(&cfg.UseLocation, "useLocation", "", "latitude,longitude used for the weather line")
	flag.BoolVar(&cfg.UseServe, "useServe", false, "start the local control API")
	flag.BoolVar(&cfg.UseNotify, "useNotify", false, "forward progress notifications to the local unix socket")
	flag.IntVar(&cfg.UsePort, "usePort", 0, "override control API port")
	flag.IntVar(&cfg.UseInterval, "useInterval", 0, "override poll interval in milliseconds")
	flag.IntVar(&cfg.UseMaxChecks, "useMaxChecks", -1, "override max progress checks (0 = unbounded)")
	flag.Parse()
	return cfg
}
