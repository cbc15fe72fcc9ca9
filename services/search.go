package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"truthlens/models"
)

// EvidenceSearcher finds sources related to a query.
type EvidenceSearcher interface {
	Search(ctx context.Context, query string) ([]models.Source, error)
}

// NoSearch is used when no search key is configured.
type NoSearch struct{}

func (NoSearch) Search(context.Context, string) ([]models.Source, error) {
	return nil, ErrSearchUnavailable
}

const (
	maxSearchResults = 5
	searchTimeout    = 15 * time.Second
	maxSearchBody    = 2 << 20
)

// SerpAPIClient searches Google News through SerpAPI, falling back to the
// organic results when there is no news.
type SerpAPIClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewSerpAPIClient(apiKey string) *SerpAPIClient {
	return &SerpAPIClient{
		apiKey:   apiKey,
		endpoint: "https://serpapi.com/search",
		client:   &http.Client{Timeout: searchTimeout},
	}
}

// WithEndpoint points the client at another base URL.
func (s *SerpAPIClient) WithEndpoint(endpoint string) *SerpAPIClient {
	s.endpoint = endpoint
	return s
}

type serpResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

type serpResponse struct {
	News    []serpResult `json:"news_results"`
	Organic []serpResult `json:"organic_results"`
	Error   string       `json:"error"`
}

func (s *SerpAPIClient) Search(ctx context.Context, query string) ([]models.Source, error) {
	log.Printf("[SEARCH] 🔍 Searching news for %q", query)

	params := url.Values{}
	params.Set("api_key", s.apiKey)
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("tbm", "nws")
	params.Set("num", strconv.Itoa(maxSearchResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchBody))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var parsed serpResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("search error: %s", parsed.Error)
	}

	results := parsed.News
	if len(results) == 0 {
		results = parsed.Organic
	}
	sources := make([]models.Source, 0, maxSearchResults)
	for _, r := range results {
		if len(sources) == maxSearchResults {
			break
		}
		sources = append(sources, models.NewSource(r.Title, r.Snippet, r.Link))
	}
	log.Printf("[SEARCH] ✓ Found %d results", len(sources))
	return sources, nil
}
