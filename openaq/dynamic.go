package openaq

import (
	"context"
	"time"
)

// DynamicClient rebuilds its HTTP client on every fetch so runtime proxy
// changes take effect without a restart.
type DynamicClient struct {
	baseURL   string
	parameter string
	limit     int
	timeout   time.Duration
	proxyFn   func() string
}

// NewDynamicClient constructs a measurements client that resolves the proxy
// URL through proxyFn before each request. proxyFn may be nil.
func NewDynamicClient(baseURL, parameter string, limit int, timeout time.Duration, proxyFn func() string) *DynamicClient {
	return &DynamicClient{
		baseURL:   baseURL,
		parameter: parameter,
		limit:     limit,
		timeout:   timeout,
		proxyFn:   proxyFn,
	}
}

// Measurements fetches the current measurement set.
func (d *DynamicClient) Measurements(ctx context.Context) ([]Measurement, error) {
	proxyURL := ""
	if d.proxyFn != nil {
		proxyURL = d.proxyFn()
	}
	client := NewClient(d.baseURL, d.parameter, d.limit, NewHTTPClient(proxyURL, d.timeout))
	return client.Measurements(ctx)
}
