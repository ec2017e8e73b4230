package openaq

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// ProxyEnv holds the proxy-related environment variables.
type ProxyEnv struct {
	HTTPProxy  string
	HTTPSProxy string
	AllProxy   string
	NoProxy    string
}

func envOr(upper, lower string) string {
	v := strings.TrimSpace(os.Getenv(upper))
	if v == "" {
		v = strings.TrimSpace(os.Getenv(lower))
	}
	return v
}

// ReadProxyEnv reads HTTP_PROXY/HTTPS_PROXY/ALL_PROXY/NO_PROXY (either case).
func ReadProxyEnv() ProxyEnv {
	return ProxyEnv{
		HTTPProxy:  envOr("HTTP_PROXY", "http_proxy"),
		HTTPSProxy: envOr("HTTPS_PROXY", "https_proxy"),
		AllProxy:   envOr("ALL_PROXY", "all_proxy"),
		NoProxy:    envOr("NO_PROXY", "no_proxy"),
	}
}

// ChooseEffectiveProxy picks the proxy to use: a manual setting wins, then
// HTTPS_PROXY, HTTP_PROXY, ALL_PROXY. Source is "manual", "env" or "none".
func ChooseEffectiveProxy(manual string, env ProxyEnv) (effective, source string) {
	if strings.TrimSpace(manual) != "" {
		return manual, "manual"
	}
	if strings.TrimSpace(env.HTTPSProxy) != "" {
		return env.HTTPSProxy, "env"
	}
	if strings.TrimSpace(env.HTTPProxy) != "" {
		return env.HTTPProxy, "env"
	}
	if strings.TrimSpace(env.AllProxy) != "" {
		return env.AllProxy, "env"
	}
	return "", "none"
}

// RedactProxy strips credentials from a proxy URL for display.
func RedactProxy(raw string) string {
	if raw == "" {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.User == nil {
		return raw
	}
	parsed.User = nil
	return parsed.String()
}

// NewHTTPClient builds the HTTP client used for upstream fetches. proxyURL may
// be empty (environment proxies apply), an http(s):// URL, or a socks5(h):// URL.
func NewHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	base, okType := http.DefaultTransport.(*http.Transport)
	var tr *http.Transport
	if okType {
		tr = base.Clone()
	} else {
		tr = &http.Transport{}
	}

	proxyURL = strings.TrimSpace(proxyURL)
	if proxyURL == "" {
		tr.Proxy = http.ProxyFromEnvironment
		return &http.Client{Timeout: timeout, Transport: tr}
	}

	pu, err := url.Parse(proxyURL)
	if err != nil {
		tr.Proxy = http.ProxyFromEnvironment
		return &http.Client{Timeout: timeout, Transport: tr}
	}

	switch strings.ToLower(pu.Scheme) {
	case "http", "https":
		tr.Proxy = http.ProxyURL(pu)
	case "socks5", "socks5h":
		tr.Proxy = nil
		if strings.EqualFold(pu.Scheme, "socks5h") {
			pu.Scheme = "socks5"
		}
		dialer, err := proxy.FromURL(pu, proxy.Direct)
		if err == nil {
			tr.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				type dialContext interface {
					DialContext(context.Context, string, string) (net.Conn, error)
				}
				if dctx, ok := dialer.(dialContext); ok {
					return dctx.DialContext(ctx, network, addr)
				}
				return dialer.Dial(network, addr)
			}
		}
	default:
		tr.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{Timeout: timeout, Transport: tr}
}
