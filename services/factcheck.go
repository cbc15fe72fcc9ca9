package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"truthlens/models"
)

const maxFactChecks = 3

// GoogleFactCheckClient looks up published fact checks through the Google
// Fact Check Tools API. Each matching review becomes one Source whose
// snippet carries the publisher's rating.
type GoogleFactCheckClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewGoogleFactCheckClient(apiKey string) *GoogleFactCheckClient {
	return &GoogleFactCheckClient{
		apiKey:   apiKey,
		endpoint: "https://factchecktools.googleapis.com/v1alpha1/claims:search",
		client:   &http.Client{Timeout: searchTimeout},
	}
}

// WithEndpoint points the client at another base URL.
func (c *GoogleFactCheckClient) WithEndpoint(endpoint string) *GoogleFactCheckClient {
	c.endpoint = endpoint
	return c
}

type factCheckResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		Claimant    string `json:"claimant"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
				Site string `json:"site"`
			} `json:"publisher"`
			URL           string `json:"url"`
			Title         string `json:"title"`
			TextualRating string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
}

func (c *GoogleFactCheckClient) Search(ctx context.Context, query string) ([]models.Source, error) {
	log.Printf("[FACT CHECK] 🔍 Looking up published fact checks for %q", query)

	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build fact check request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fact check request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fact check returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchBody))
	if err != nil {
		return nil, fmt.Errorf("read fact check response: %w", err)
	}

	var parsed factCheckResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode fact check response: %w", err)
	}

	var sources []models.Source
	for _, claim := range parsed.Claims {
		if len(sources) == maxFactChecks {
			break
		}
		if len(claim.ClaimReview) == 0 {
			continue
		}
		review := claim.ClaimReview[0]
		title := review.Title
		if title == "" {
			title = claim.Text
		}
		publisher := review.Publisher.Name
		if publisher == "" {
			publisher = review.Publisher.Site
		}
		snippet := fmt.Sprintf("Fact check by %s rated %q: %s", publisher, review.TextualRating, strings.TrimSpace(claim.Text))
		sources = append(sources, models.NewSource(title, snippet, review.URL))
	}
	log.Printf("[FACT CHECK] ✓ Found %d published fact checks", len(sources))
	return sources, nil
}
