package tool

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

func joinURL(baseURL, path string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q in base URL", u.Scheme)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return u.String() + path, nil
}

// BuildUploadURL builds the submission URL.
func BuildUploadURL(baseURL, uploadPath string) (string, error) {
	return joinURL(baseURL, uploadPath)
}

// BuildProgressURL builds the progress URL; progressPath carries one %s for the id.
func BuildProgressURL(baseURL, progressPath, uploadId string) (string, error) {
	if uploadId == "" {
		return "", fmt.Errorf("upload id must not be empty")
	}
	return joinURL(baseURL, fmt.Sprintf(progressPath, url.PathEscape(uploadId)))
}

// BuildWeatherURL builds the current-weather query for lat/lon.
func BuildWeatherURL(baseURL, apiKey, units string, lat, lon float64) (string, error) {
	raw, err := joinURL(baseURL, "/data/2.5/weather")
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	if units != "" {
		q.Set("units", units)
	}
	q.Set("appid", apiKey)
	return raw + "?" + q.Encode(), nil
}

// BuildSnapshotURL builds the control API link to a session snapshot.
// hostPort is the Host the request came in on.
func BuildSnapshotURL(hostPort string, sessionId string) string {
	return fmt.Sprintf("http://%s/api/self/v1/upload/%s", hostPort, url.PathEscape(sessionId))
}
