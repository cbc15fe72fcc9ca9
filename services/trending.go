package services

import (
	"context"
	"errors"
	"html"
	"log"
	"sort"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"truthlens/models"
)

// TrendingCache stores the last live headline list.
type TrendingCache interface {
	GetTrending(ctx context.Context) ([]models.TrendingArticle, error)
	SetTrending(ctx context.Context, articles []models.TrendingArticle, ttl time.Duration) error
}

// CuratedSource serves editor-curated headlines.
type CuratedSource interface {
	CuratedHeadlines(ctx context.Context, limit int) ([]models.TrendingArticle, error)
}

const (
	maxTrending         = 10
	trendingFeedTimeout = 10 * time.Second
	summaryChars        = 200
)

var errNoHeadlines = errors.New("no headlines")

// StaticTrending is served when every other source is unavailable.
var StaticTrending = []models.TrendingArticle{
	{Title: "How to spot a fake news article", Link: "https://www.factcheck.org/2016/11/how-to-spot-fake-news/", Source: "FactCheck.org"},
	{Title: "Checking images with reverse image search", Link: "https://firstdraftnews.org/articles/verify-images/", Source: "First Draft"},
	{Title: "Recognising phishing emails and links", Link: "https://www.ncsc.gov.uk/guidance/phishing", Source: "NCSC"},
	{Title: "Voice cloning scams: what to know", Link: "https://consumer.ftc.gov/consumer-alerts/2023/03/scammers-use-ai-enhance-their-family-emergency-schemes", Source: "FTC"},
	{Title: "Latest fact checks", Link: "https://www.snopes.com/fact-check/", Source: "Snopes"},
	{Title: "PolitiFact fact-check archive", Link: "https://www.politifact.com/factchecks/", Source: "PolitiFact"},
}

// TrendingService returns recent fact-check headlines from the best source
// available: cache, live feeds, curated database rows, then a static list.
type TrendingService struct {
	cache   TrendingCache
	curated CuratedSource
	feeds   []string
	ttl     time.Duration
	parser  *gofeed.Parser
	policy  *bluemonday.Policy
}

func NewTrendingService(cache TrendingCache, curated CuratedSource, feeds []string, ttl time.Duration) *TrendingService {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &TrendingService{
		cache:   cache,
		curated: curated,
		feeds:   feeds,
		ttl:     ttl,
		parser:  parser,
		policy:  bluemonday.StrictPolicy(),
	}
}

// Trending never fails; the second value names the source that answered.
func (s *TrendingService) Trending(ctx context.Context) ([]models.TrendingArticle, string) {
	if s.cache != nil {
		if articles, err := s.cache.GetTrending(ctx); err == nil && len(articles) > 0 {
			return articles, models.TrendingFromCache
		}
	}

	if articles, err := s.Refresh(ctx); err == nil {
		return articles, models.TrendingFromFeeds
	}

	if s.curated != nil {
		articles, err := s.curated.CuratedHeadlines(ctx, maxTrending)
		if err != nil {
			log.Printf("[TRENDING] ⚠ Curated headlines unavailable: %v", err)
		} else if len(articles) > 0 {
			return articles, models.TrendingFromCurated
		}
	}

	log.Printf("[TRENDING] ⚠ Serving static headlines")
	return append([]models.TrendingArticle{}, StaticTrending...), models.TrendingFromStatic
}

// Refresh reads every configured feed and caches the newest headlines.
func (s *TrendingService) Refresh(ctx context.Context) ([]models.TrendingArticle, error) {
	type dated struct {
		models.TrendingArticle
		at time.Time
	}
	var all []dated

	for _, feedURL := range s.feeds {
		fctx, cancel := context.WithTimeout(ctx, trendingFeedTimeout)
		feed, err := s.parser.ParseURLWithContext(feedURL, fctx)
		cancel()
		if err != nil {
			log.Printf("[TRENDING] ⚠ Feed %s failed: %v", feedURL, err)
			continue
		}
		for _, item := range feed.Items {
			if item.Title == "" || item.Link == "" {
				continue
			}
			d := dated{TrendingArticle: models.TrendingArticle{
				Title:   html.UnescapeString(s.policy.Sanitize(item.Title)),
				Link:    item.Link,
				Source:  feed.Title,
				Summary: truncate(collapseSpace(html.UnescapeString(s.policy.Sanitize(item.Description))), summaryChars),
			}}
			if item.PublishedParsed != nil {
				d.at = *item.PublishedParsed
			} else if item.UpdatedParsed != nil {
				d.at = *item.UpdatedParsed
			}
			if !d.at.IsZero() {
				d.Published = d.at.UTC().Format(time.RFC3339)
			}
			all = append(all, d)
		}
	}
	if len(all) == 0 {
		return nil, errNoHeadlines
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].at.After(all[j].at) })
	if len(all) > maxTrending {
		all = all[:maxTrending]
	}
	articles := make([]models.TrendingArticle, len(all))
	for i, d := range all {
		articles[i] = d.TrendingArticle
	}

	if s.cache != nil {
		if err := s.cache.SetTrending(ctx, articles, s.ttl); err != nil {
			log.Printf("[TRENDING] ⚠ Could not cache headlines: %v", err)
		}
	}
	log.Printf("[TRENDING] ✓ %d live headlines from %d feeds", len(articles), len(s.feeds))
	return articles, nil
}
