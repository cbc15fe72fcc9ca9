package signals

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"truthlens/config"
	"truthlens/risk"
)

// URLHeuristics scores the lexical shape of a link without any network
// access. A bare host is read as https, but length and keywords are measured
// on the input as given. The result is capped at cfg.Cap.
func URLHeuristics(raw string, cfg config.URLScoring) risk.Contribution {
	var c risk.Contribution

	raw = strings.TrimSpace(raw)
	target := raw
	if !strings.Contains(raw, "://") {
		target = "https://" + raw
	}
	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		c.Note("URL could not be parsed")
		return c
	}
	host := strings.ToLower(u.Hostname())
	lower := strings.ToLower(raw)

	if net.ParseIP(host) != nil {
		c.Add(cfg.IPHost, fmt.Sprintf("Uses a raw IP address (%s) instead of a domain name", host))
	}
	if strings.Contains(raw, "@") {
		c.Add(cfg.AtSign, "Contains '@' which can hide the real destination")
	}
	if dots := strings.Count(host, "."); dots > 3 {
		c.Add(cfg.ManyDots, fmt.Sprintf("Excessive subdomains (%d dots in hostname)", dots))
	}
	if skeleton := NormalizeHomoglyphs(host); skeleton != host {
		c.Add(cfg.Homoglyph, fmt.Sprintf("Hostname uses look-alike characters (reads as %s)", skeleton))
	}

	var hits []string
	for _, kw := range cfg.SuspiciousKeywords {
		if strings.Contains(lower, kw) {
			hits = append(hits, kw)
		}
	}
	switch {
	case len(hits) >= 2:
		c.Add(cfg.KeywordsMany, fmt.Sprintf("Multiple suspicious keywords: %s", strings.Join(hits, ", ")))
	case len(hits) == 1:
		c.Add(cfg.KeywordsOne, fmt.Sprintf("Suspicious keyword: %s", hits[0]))
	}

	switch n := len(raw); {
	case n > 100:
		c.Add(cfg.LengthOver100, fmt.Sprintf("Very long URL (%d characters)", n))
	case n > 75:
		c.Add(cfg.LengthOver75, fmt.Sprintf("Long URL (%d characters)", n))
	}

	// The punycode prefix is scored by the homoglyph rule, not here.
	first := strings.SplitN(host, ".", 2)[0]
	if strings.Count(strings.TrimPrefix(first, "xn--"), "-") >= 2 {
		c.Add(cfg.HyphenatedLabel, fmt.Sprintf("Hostname has many hyphens (%s)", first))
	}
	if port := u.Port(); port != "" && port != "80" && port != "443" {
		c.Add(cfg.NonStandardPort, fmt.Sprintf("Non-standard port %s", port))
	}
	for _, s := range cfg.Shorteners {
		if host == s || strings.HasSuffix(host, "."+s) {
			c.Add(cfg.Shortener, fmt.Sprintf("URL shortener hides the destination (%s)", s))
			break
		}
	}
	for _, tld := range cfg.RiskyTLDs {
		if strings.HasSuffix(host, tld) {
			c.Add(cfg.RiskyTLD, fmt.Sprintf("High-risk top-level domain (%s)", tld))
			break
		}
	}
	if strings.EqualFold(u.Scheme, "http") {
		c.Add(cfg.PlainHTTP, "Not using HTTPS")
	}
	if strings.Contains(u.EscapedPath(), "//") {
		c.Add(cfg.DoubleSlash, "Redirect pattern '//' in path")
	}

	return c.Capped(cfg.Cap)
}
