package models

type TrendingArticle struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	Summary   string `json:"summary,omitempty"`
	Published string `json:"published,omitempty"`
}

// Where a trending list came from.
const (
	TrendingFromCache   = "cache"
	TrendingFromFeeds   = "live"
	TrendingFromCurated = "curated"
	TrendingFromStatic  = "static"
)
