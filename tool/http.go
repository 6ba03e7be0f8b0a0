package tool

import (
	"net"
	"net/http"
	"time"
)

var (
	DefaultTimeout       = 30 * time.Second
	ConnectionHttpClient *http.Client
)

func init() {
	ConnectionHttpClient = NewHTTPClient(DefaultTimeout)
}

// NewHTTPClient creates the client used for the upload, progress and weather calls.
// timeout bounds a whole exchange, including reading the body.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// InitHTTPClients rebuilds the shared client with the configured timeout.
func InitHTTPClients(timeout time.Duration) {
	ConnectionHttpClient = NewHTTPClient(timeout)
}

func GetHttpClient() *http.Client {
	return ConnectionHttpClient
}

// NewHTTPReqWithApplication marks a request as expecting JSON back.
func NewHTTPReqWithApplication(req *http.Request, err error) (*http.Request, error) {
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}
