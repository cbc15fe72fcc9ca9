package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthlens/config"
	"truthlens/models"
)

type fakeTrending struct {
	articles []models.TrendingArticle
	source   string
}

func (f fakeTrending) Trending(context.Context) ([]models.TrendingArticle, string) {
	return f.articles, f.source
}

func TestHealthReportsCapabilities(t *testing.T) {
	cfg := &config.Config{ModelAPIKey: "gsk_test", WhoisEnabled: true, Model: "llama"}
	h := NewInfoHandler(cfg, fakeTrending{})

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["timestamp"])
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["groq_key_present"])
	assert.Equal(t, false, body["serpapi_key_present"])
	assert.Equal(t, false, body["safe_browsing_key_present"])
	assert.Equal(t, true, body["whois_enabled"])
	assert.NotContains(t, rec.Body.String(), "gsk_test")
}

func TestTrendingHandler(t *testing.T) {
	src := fakeTrending{
		articles: []models.TrendingArticle{{Title: "Shark on highway is fake", Link: "https://x", Source: "Snopes"}},
		source:   models.TrendingFromFeeds,
	}
	h := NewInfoHandler(&config.Config{}, src)

	rec := httptest.NewRecorder()
	h.Trending(rec, httptest.NewRequest(http.MethodGet, "/trending", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body trendingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "live", body.Source)
	assert.Equal(t, src.articles, body.Articles)
	assert.NotEmpty(t, body.Timestamp)
}

func TestRoot(t *testing.T) {
	h := NewInfoHandler(&config.Config{Model: "llama-3.3-70b-versatile"}, fakeTrending{})

	rec := httptest.NewRecorder()
	h.Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["timestamp"])
	assert.Equal(t, "TruthLens API", body["name"])
	assert.Equal(t, "llama-3.3-70b-versatile", body["ai_model"])
}
