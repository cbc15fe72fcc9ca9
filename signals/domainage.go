package signals

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"golang.org/x/net/publicsuffix"

	"truthlens/config"
	"truthlens/risk"
)

// ErrUnknownDate means the registry answered but did not disclose a
// creation date.
var ErrUnknownDate = errors.New("registration date not disclosed")

// WhoisLookup resolves the registration date of a registrable domain.
type WhoisLookup interface {
	RegistrationDate(ctx context.Context, domain string) (time.Time, error)
}

// NoWhois is the WhoisLookup used when WHOIS is disabled.
type NoWhois struct{}

func (NoWhois) RegistrationDate(context.Context, string) (time.Time, error) {
	return time.Time{}, ErrUnavailable
}

// WhoisClient queries the public WHOIS servers.
type WhoisClient struct {
	client  *whois.Client
	timeout time.Duration
}

func NewWhoisClient(timeout time.Duration) *WhoisClient {
	return &WhoisClient{
		client:  whois.NewClient().SetTimeout(timeout),
		timeout: timeout,
	}
}

func (w *WhoisClient) RegistrationDate(ctx context.Context, domain string) (time.Time, error) {
	type answer struct {
		raw string
		err error
	}
	done := make(chan answer, 1)
	go func() {
		raw, err := w.client.Whois(domain)
		done <- answer{raw, err}
	}()

	var raw string
	select {
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	case a := <-done:
		if a.err != nil {
			return time.Time{}, fmt.Errorf("whois %s: %w", domain, a.err)
		}
		raw = a.raw
	}

	info, err := whoisparser.Parse(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse whois %s: %w", domain, err)
	}
	if info.Domain == nil || info.Domain.CreatedDate == "" {
		return time.Time{}, ErrUnknownDate
	}
	created, ok := parseWhoisDate(info.Domain.CreatedDate)
	if !ok {
		return time.Time{}, ErrUnknownDate
	}
	return created, nil
}

var whoisLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
	"02.01.2006",
	"January 2 2006",
}

func parseWhoisDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range whoisLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DomainAgeReport is the domain-age layer plus the age itself when known.
type DomainAgeReport struct {
	risk.Contribution
	Checked bool
	AgeDays *int
}

// DomainAge scores how recently the registrable domain of host was
// registered. Lookup failures, timeouts and IP hosts yield zero points.
func DomainAge(ctx context.Context, lookup WhoisLookup, host string, now time.Time, cfg config.DomainAgeScoring) DomainAgeReport {
	var r DomainAgeReport

	if net.ParseIP(host) != nil {
		r.Note("WHOIS not applicable to an IP address")
		return r
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host))
	if err != nil {
		domain = host
	}

	created, err := lookup.RegistrationDate(ctx, domain)
	switch {
	case errors.Is(err, ErrUnavailable):
		r.Note("WHOIS lookup not available")
		return r
	case errors.Is(err, ErrUnknownDate):
		r.Checked = true
		r.Add(cfg.Unknown, fmt.Sprintf("Registration date of %s is not disclosed", domain))
		return r
	case err != nil:
		log.Printf("[WHOIS] Lookup for %s failed: %v", domain, err)
		r.Note("WHOIS lookup failed")
		return r
	}

	r.Checked = true
	days := int(now.Sub(created).Hours() / 24)
	if days < 0 {
		days = 0
	}
	r.AgeDays = &days

	switch {
	case days < 30:
		r.Add(cfg.UnderMonth, fmt.Sprintf("Domain registered only %d days ago", days))
	case days < 180:
		r.Add(cfg.UnderHalfYear, fmt.Sprintf("Domain is less than 6 months old (%d days)", days))
	case days < 365:
		r.Add(cfg.UnderYear, fmt.Sprintf("Domain is less than a year old (%d days)", days))
	}
	return r
}
