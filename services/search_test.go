package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthlens/models"
)

func TestSerpAPISearch(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"news_results": [
			{"title": "NASA confirms", "snippet": "Earth is round", "link": "https://nasa.gov/a"},
			{"snippet": "untitled result"},
			{"title": "3"}, {"title": "4"}, {"title": "5"}, {"title": "6"}
		]}`))
	}))
	defer srv.Close()

	sources, err := NewSerpAPIClient("key").WithEndpoint(srv.URL).Search(context.Background(), "flat earth")
	require.NoError(t, err)

	q := got.URL.Query()
	assert.Equal(t, "key", q.Get("api_key"))
	assert.Equal(t, "flat earth", q.Get("q"))
	assert.Equal(t, "nws", q.Get("tbm"))

	require.Len(t, sources, 5)
	assert.Equal(t, models.Source{Title: "NASA confirms", Snippet: "Earth is round", Link: "https://nasa.gov/a"}, sources[0])
	assert.Equal(t, models.Source{Title: models.NoTitle, Snippet: "untitled result", Link: models.PlaceholderLink}, sources[1])
}

func TestSerpAPIFallsBackToOrganic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"organic_results": [{"title": "Wiki", "snippet": "s", "link": "https://w"}]}`))
	}))
	defer srv.Close()

	sources, err := NewSerpAPIClient("key").WithEndpoint(srv.URL).Search(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "Wiki", sources[0].Title)
}

func TestSerpAPIErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error field", http.StatusOK, `{"error": "Invalid API key"}`},
		{"bad status", http.StatusUnauthorized, `{}`},
		{"bad json", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewSerpAPIClient("key").WithEndpoint(srv.URL).Search(context.Background(), "q")
			assert.Error(t, err)
		})
	}
}

func TestNoSearch(t *testing.T) {
	_, err := NoSearch{}.Search(context.Background(), "q")
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}

func TestGoogleFactCheckSearch(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(`{"claims": [
			{"text": "The earth is flat", "claimReview": [{"publisher": {"name": "Snopes"}, "url": "https://snopes.com/x", "title": "Is the earth flat?", "textualRating": "False"}]},
			{"text": "no reviews", "claimReview": []},
			{"text": "Second", "claimReview": [{"publisher": {"site": "politifact.com"}, "url": "https://p/1", "textualRating": "Pants on Fire"}]},
			{"text": "Third", "claimReview": [{"publisher": {"name": "AFP"}, "url": "https://afp/1", "textualRating": "Misleading"}]},
			{"text": "Fourth", "claimReview": [{"publisher": {"name": "AP"}, "url": "https://ap/1", "textualRating": "False"}]}
		]}`))
	}))
	defer srv.Close()

	sources, err := NewGoogleFactCheckClient("fc-key").WithEndpoint(srv.URL).Search(context.Background(), "earth flat")
	require.NoError(t, err)
	assert.Equal(t, "earth flat", got.URL.Query().Get("query"))
	assert.Equal(t, "fc-key", got.URL.Query().Get("key"))

	require.Len(t, sources, 3)
	assert.Equal(t, models.Source{
		Title:   "Is the earth flat?",
		Snippet: `Fact check by Snopes rated "False": The earth is flat`,
		Link:    "https://snopes.com/x",
	}, sources[0])
	assert.Equal(t, "Second", sources[1].Title)
	assert.Equal(t, `Fact check by politifact.com rated "Pants on Fire": Second`, sources[1].Snippet)
	assert.Equal(t, "Third", sources[2].Title)
}

func TestGoogleFactCheckBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewGoogleFactCheckClient("k").WithEndpoint(srv.URL).Search(context.Background(), "q")
	assert.Error(t, err)
}
