package cli

import (
	"airwatch/models"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is the HTTP client for talking to the airwatch server
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new HTTP client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// doRequest executes an HTTP request
func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}

	return resp, nil
}

// handleResponse handles an HTTP response
func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %v", err)
		}
	}

	return nil
}

// HealthCheck pings the health endpoint
func (c *Client) HealthCheck() error {
	resp, err := c.doRequest("GET", "/api/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("server unhealthy: HTTP %d", resp.StatusCode)
	}

	return nil
}

// GetHealth fetches the full health payload
func (c *Client) GetHealth() (map[string]interface{}, error) {
	resp, err := c.doRequest("GET", "/api/health", nil)
	if err != nil {
		return nil, err
	}

	var health map[string]interface{}
	if err := c.handleResponse(resp, &health); err != nil {
		return nil, err
	}

	return health, nil
}

// Record API

// RecordsResponse record listing response structure
type RecordsResponse struct {
	Data      []models.Record `json:"data"`
	Page      int             `json:"page"`
	PageSize  int             `json:"page_size"`
	Total     int64           `json:"total"`
	Threshold float64         `json:"threshold"`
}

// ListRecords fetches a paginated record listing. A negative threshold keeps
// the server default.
func (c *Client) ListRecords(page, pageSize int, threshold float64) (*RecordsResponse, error) {
	q := url.Values{}
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("page_size", fmt.Sprintf("%d", pageSize))
	if threshold >= 0 {
		q.Set("threshold", fmt.Sprintf("%g", threshold))
	}

	resp, err := c.doRequest("GET", "/api/records?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result RecordsResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ClearRecords deletes all records
func (c *Client) ClearRecords() error {
	resp, err := c.doRequest("DELETE", "/api/records", nil)
	if err != nil {
		return err
	}

	return c.handleResponse(resp, nil)
}

// Refresh API

// RefreshResponse refresh trigger response structure
type RefreshResponse struct {
	OK  bool              `json:"ok"`
	Run models.RefreshRun `json:"run"`
}

// TriggerRefresh asks the server to repopulate records from upstream
func (c *Client) TriggerRefresh() (*models.RefreshRun, error) {
	resp, err := c.doRequest("POST", "/api/refresh", nil)
	if err != nil {
		return nil, err
	}

	var result RefreshResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result.Run, nil
}

// GetRefreshHistory fetches recent refresh runs, latest first
func (c *Client) GetRefreshHistory(limit int) ([]models.RefreshRun, error) {
	resp, err := c.doRequest("GET", fmt.Sprintf("/api/refreshes?limit=%d", limit), nil)
	if err != nil {
		return nil, err
	}

	var runs []models.RefreshRun
	if err := c.handleResponse(resp, &runs); err != nil {
		return nil, err
	}

	return runs, nil
}

// Error log API

// GetErrorLogs fetches recent server-side error logs
func (c *Client) GetErrorLogs() ([]models.ErrorLog, error) {
	resp, err := c.doRequest("GET", "/api/error-logs", nil)
	if err != nil {
		return nil, err
	}

	var logs []models.ErrorLog
	if err := c.handleResponse(resp, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

// ClearErrorLogs deletes all server-side error logs
func (c *Client) ClearErrorLogs() error {
	resp, err := c.doRequest("DELETE", "/api/error-logs", nil)
	if err != nil {
		return err
	}

	return c.handleResponse(resp, nil)
}

// Fetch proxy API

// ProxyResponse fetch proxy status structure
type ProxyResponse struct {
	ManualProxy    string `json:"manual_proxy,omitempty"`
	EnvHTTPProxy   string `json:"env_http_proxy,omitempty"`
	EnvHTTPSProxy  string `json:"env_https_proxy,omitempty"`
	EnvAllProxy    string `json:"env_all_proxy,omitempty"`
	EnvNoProxy     string `json:"env_no_proxy,omitempty"`
	EffectiveProxy string `json:"effective_proxy,omitempty"`
	Source         string `json:"source"`
}

// GetProxy fetches the effective upstream proxy configuration
func (c *Client) GetProxy() (*ProxyResponse, error) {
	resp, err := c.doRequest("GET", "/api/proxy", nil)
	if err != nil {
		return nil, err
	}

	var result ProxyResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// SetProxy sets or clears (empty URL) the manual upstream proxy
func (c *Client) SetProxy(proxyURL string) error {
	resp, err := c.doRequest("PUT", "/api/proxy", map[string]string{"proxy_url": proxyURL})
	if err != nil {
		return err
	}

	return c.handleResponse(resp, nil)
}
