package handlers

import (
	"context"
	"net/http"

	"truthlens/config"
	"truthlens/models"
)

// TrendingSource serves /trending.
type TrendingSource interface {
	Trending(ctx context.Context) ([]models.TrendingArticle, string)
}

type InfoHandler struct {
	caps     config.Capabilities
	model    string
	trending TrendingSource
}

func NewInfoHandler(cfg *config.Config, trending TrendingSource) *InfoHandler {
	return &InfoHandler{caps: cfg.Capabilities(), model: cfg.Model, trending: trending}
}

// Root - GET /
func (h *InfoHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"timestamp":   timestamp(),
		"name":        "TruthLens API",
		"version":     "3.0",
		"description": "Multi-modal misinformation triage: claims, articles, links, images and audio",
		"ai_model":    h.model,
		"endpoints": []string{
			"POST /api/verify", "POST /api/phishing", "POST /api/image",
			"POST /api/audio", "GET /api/trending", "GET /health",
		},
	})
}

// Health - GET /health. Reports which credentials are present, not whether
// they work.
func (h *InfoHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Status  string `json:"status"`
		config.Capabilities
		Timestamp string `json:"timestamp"`
	}{true, "ok", h.caps, timestamp()})
}

type trendingResponse struct {
	Success   bool                     `json:"success"`
	Articles  []models.TrendingArticle `json:"articles"`
	Source    string                   `json:"source"`
	Timestamp string                   `json:"timestamp"`
}

// Trending - GET /trending
func (h *InfoHandler) Trending(w http.ResponseWriter, r *http.Request) {
	articles, source := h.trending.Trending(r.Context())
	writeJSON(w, http.StatusOK, trendingResponse{
		Success:   true,
		Articles:  articles,
		Source:    source,
		Timestamp: timestamp(),
	})
}
