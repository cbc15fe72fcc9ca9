package signals

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"truthlens/config"
	"truthlens/risk"
)

const safeBrowsingEndpoint = "https://safebrowsing.googleapis.com/v4/threatMatches:find"

// ThreatMatch is one blocklist hit.
type ThreatMatch struct {
	ThreatType   string `json:"threatType"`
	PlatformType string `json:"platformType"`
}

// ThreatLister checks a URL against a known-threat list.
type ThreatLister interface {
	Lookup(ctx context.Context, rawURL string) ([]ThreatMatch, error)
}

// NoThreatList is used when no Safe Browsing key is configured.
type NoThreatList struct{}

func (NoThreatList) Lookup(context.Context, string) ([]ThreatMatch, error) {
	return nil, ErrUnavailable
}

// SafeBrowsingClient queries the Google Safe Browsing v4 Lookup API.
type SafeBrowsingClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewSafeBrowsingClient(apiKey string, timeout time.Duration) *SafeBrowsingClient {
	return &SafeBrowsingClient{
		apiKey:   apiKey,
		endpoint: safeBrowsingEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// WithEndpoint points the client at another server; used by tests.
func (s *SafeBrowsingClient) WithEndpoint(endpoint string) *SafeBrowsingClient {
	s.endpoint = endpoint
	return s
}

type sbEntry struct {
	URL string `json:"url"`
}

type sbRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string  `json:"threatTypes"`
		PlatformTypes    []string  `json:"platformTypes"`
		ThreatEntryTypes []string  `json:"threatEntryTypes"`
		ThreatEntries    []sbEntry `json:"threatEntries"`
	} `json:"threatInfo"`
}

type sbResponse struct {
	Matches []ThreatMatch `json:"matches"`
}

func (s *SafeBrowsingClient) Lookup(ctx context.Context, rawURL string) ([]ThreatMatch, error) {
	var reqBody sbRequest
	reqBody.Client.ClientID = "truthlens"
	reqBody.Client.ClientVersion = "2.0"
	reqBody.ThreatInfo.ThreatTypes = []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE", "POTENTIALLY_HARMFUL_APPLICATION"}
	reqBody.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	reqBody.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	reqBody.ThreatInfo.ThreatEntries = []sbEntry{{URL: rawURL}}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"?key="+s.apiKey, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("safe browsing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("safe browsing status %d: %s", resp.StatusCode, string(body))
	}

	var out sbResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return out.Matches, nil
}

// ThreatReport is the threat-list layer.
type ThreatReport struct {
	risk.Contribution
	Checked bool
}

// ThreatList scores a URL by its presence on the threat list.
func ThreatList(ctx context.Context, lister ThreatLister, rawURL string, cfg config.ThreatListScoring) ThreatReport {
	var r ThreatReport
	matches, err := lister.Lookup(ctx, rawURL)
	switch {
	case errors.Is(err, ErrUnavailable):
		r.Note("Safe Browsing check not available")
		return r
	case err != nil:
		log.Printf("[SAFEBROWSING] Lookup for %s failed: %v", rawURL, err)
		r.Note("Threat list lookup failed")
		return r
	}
	r.Checked = true
	if len(matches) == 0 {
		return r
	}

	seen := map[string]bool{}
	var kinds []string
	for _, m := range matches {
		kind := strings.ReplaceAll(strings.ToLower(m.ThreatType), "_", " ")
		if !seen[kind] {
			seen[kind] = true
			kinds = append(kinds, kind)
		}
	}
	r.Add(cfg.Match, fmt.Sprintf("Listed by Google Safe Browsing as %s", strings.Join(kinds, ", ")))
	return r
}
