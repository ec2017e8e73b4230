package openaq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Measurement is one (UTC timestamp, value) pair extracted from the API.
type Measurement struct {
	UTC   string
	Value float64
}

type measurementsResponse struct {
	Results []struct {
		Parameter string `json:"parameter"`
		Date      struct {
			UTC   string `json:"utc"`
			Local string `json:"local"`
		} `json:"date"`
		Value *float64 `json:"value"`
	} `json:"results"`
}

// Client fetches pollutant measurements from an OpenAQ-style API.
type Client struct {
	baseURL    string
	parameter  string
	limit      int
	httpClient *http.Client
}

// NewClient constructs a measurements client. A nil httpClient falls back to a
// plain client with a 10 second timeout.
func NewClient(baseURL, parameter string, limit int, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		parameter:  parameter,
		limit:      limit,
		httpClient: httpClient,
	}
}

// Measurements queries the measurements endpoint for the configured parameter
// and returns the extracted (utc, value) pairs. Entries missing either the UTC
// timestamp or the value are skipped.
func (c *Client) Measurements(ctx context.Context) ([]Measurement, error) {
	endpoint := c.baseURL + "/measurements"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("parameter", c.parameter)
	if c.limit > 0 {
		q.Set("limit", strconv.Itoa(c.limit))
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "airwatch-fetcher")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("measurements api error: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var parsed measurementsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode measurements response: %w", err)
	}

	out := make([]Measurement, 0, len(parsed.Results))
	for _, item := range parsed.Results {
		if item.Date.UTC == "" || item.Value == nil {
			continue
		}
		out = append(out, Measurement{UTC: item.Date.UTC, Value: *item.Value})
	}
	return out, nil
}

