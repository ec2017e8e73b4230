package handlers

import (
	"airwatch/database"
	"airwatch/openaq"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// FetchProxySettingKey is the app_settings key holding the manual proxy URL
// used for upstream measurement fetches.
const FetchProxySettingKey = "fetch_proxy_url"

type fetchProxyResponse struct {
	ManualProxy    string `json:"manual_proxy,omitempty"`
	EnvHTTPProxy   string `json:"env_http_proxy,omitempty"`
	EnvHTTPSProxy  string `json:"env_https_proxy,omitempty"`
	EnvAllProxy    string `json:"env_all_proxy,omitempty"`
	EnvNoProxy     string `json:"env_no_proxy,omitempty"`
	EffectiveProxy string `json:"effective_proxy,omitempty"`
	Source         string `json:"source"` // manual|env|none
}

type fetchProxyRequest struct {
	ProxyURL string `json:"proxy_url"`
}

// ManualFetchProxyURL returns the persisted manual proxy URL, if any.
func ManualFetchProxyURL() (string, bool) {
	v, ok, err := database.GetSetting(FetchProxySettingKey)
	if err != nil {
		return "", false
	}
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// GetFetchProxy returns the effective proxy configuration for upstream fetches.
// "System" proxy is detected via environment variables.
func GetFetchProxy(c *gin.Context) {
	manual, _ := ManualFetchProxyURL()
	env := openaq.ReadProxyEnv()
	effective, source := openaq.ChooseEffectiveProxy(manual, env)

	c.JSON(http.StatusOK, fetchProxyResponse{
		ManualProxy:    openaq.RedactProxy(manual),
		EnvHTTPProxy:   openaq.RedactProxy(env.HTTPProxy),
		EnvHTTPSProxy:  openaq.RedactProxy(env.HTTPSProxy),
		EnvAllProxy:    openaq.RedactProxy(env.AllProxy),
		EnvNoProxy:     env.NoProxy,
		EffectiveProxy: openaq.RedactProxy(effective),
		Source:         source,
	})
}

// SetFetchProxy persists a manual proxy URL for upstream fetches. An empty
// value clears it.
func SetFetchProxy(c *gin.Context) {
	var req fetchProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request"})
		return
	}

	value := strings.TrimSpace(req.ProxyURL)
	if value == "" {
		if err := database.DeleteSetting(FetchProxySettingKey); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid proxy url"})
		return
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "socks5", "socks5h":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"detail": "proxy url must start with http(s):// or socks5(h)://"})
		return
	}

	if err := database.SetSetting(FetchProxySettingKey, value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
