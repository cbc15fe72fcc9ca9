package services

import (
	"net/url"
	"strings"
)

// NormalizeDomain extracts the host from a URL and strips the www. prefix
// and port.
func NormalizeDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
