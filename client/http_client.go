package client

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultHTTPClient builds the client used when Config.HTTPClient is nil.
// A proxy URL needs both a scheme and a host; anything else, including an
// empty value, falls back to a plain client with the environment's proxy
// settings. Every client carries the request timeout.
func defaultHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	plain := &http.Client{Timeout: timeout}
	if strings.TrimSpace(proxyURL) == "" {
		return plain
	}
	proxy, err := url.Parse(proxyURL)
	if err != nil || proxy.Scheme == "" || proxy.Host == "" {
		return plain
	}
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return plain
	}
	transport := base.Clone()
	transport.Proxy = http.ProxyURL(proxy)
	return &http.Client{Transport: transport, Timeout: timeout}
}
