package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// ArticleContent is the text and metadata scraped from an article page.
type ArticleContent struct {
	URL     string
	Domain  string
	Title   string
	Author  string
	Date    string
	Text    string
	Excerpt string
}

// ContentFetcher retrieves an article. Errors are *FetchError.
type ContentFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*ArticleContent, error)
}

const (
	fetchTimeout    = 15 * time.Second
	maxPageBytes    = 5 << 20
	maxArticleChars = 3000
	excerptChars    = 200
	minArticleChars = 100
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var articleSelectors = []string{
	"article", `[role="main"]`, ".article-body", ".story-body",
	".post-content", ".entry-content", ".article-content", "main",
}

// HTMLFetcher scrapes article pages over HTTP.
type HTMLFetcher struct {
	client *http.Client
	policy *bluemonday.Policy
}

func NewHTMLFetcher() *HTMLFetcher {
	return &HTMLFetcher{
		client: &http.Client{Timeout: fetchTimeout},
		policy: bluemonday.StrictPolicy(),
	}
}

func (f *HTMLFetcher) Fetch(ctx context.Context, rawURL string) (*ArticleContent, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}
	log.Printf("[FETCHER] 🌐 Fetching article from %s", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Reason: "Could not fetch article: invalid URL.", Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			log.Printf("[FETCHER] ❌ Timeout fetching %s", rawURL)
			return nil, &FetchError{Reason: "Request timed out. The website took too long to respond.", Err: err}
		}
		log.Printf("[FETCHER] ❌ Fetch error: %v", err)
		return nil, &FetchError{Reason: fmt.Sprintf("Could not fetch article: %v", err), Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, &FetchError{Reason: "Access denied. This website blocks automated access."}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &FetchError{Reason: "Page not found. Check the URL and try again."}
	case resp.StatusCode >= 400:
		return nil, &FetchError{Reason: fmt.Sprintf("HTTP error %d when fetching the article.", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		if isTimeout(err) {
			return nil, &FetchError{Reason: "Request timed out. The website took too long to respond.", Err: err}
		}
		return nil, &FetchError{Reason: fmt.Sprintf("Could not fetch article: %v", err), Err: err}
	}
	log.Printf("[FETCHER] ✓ Status %d, %d bytes", resp.StatusCode, len(body))

	article, err := f.parse(string(body))
	if err != nil {
		return nil, &FetchError{Reason: fmt.Sprintf("Could not fetch article: %v", err), Err: err}
	}
	if article.Text == "" {
		return nil, &FetchError{Reason: "No readable article text was found on this page."}
	}

	// The final URL after redirects names the article.
	finalURL := resp.Request.URL.String()
	article.URL = finalURL
	article.Domain = NormalizeDomain(finalURL)

	log.Printf("[FETCHER] 📄 Scraped %q (%d chars)", truncate(article.Title, 60), len([]rune(article.Text)))
	return article, nil
}

func (f *HTMLFetcher) parse(page string) (*ArticleContent, error) {
	root, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	title := f.clean(doc.Find("h1").First().Text())
	if title == "" {
		title = f.clean(doc.Find("title").First().Text())
	}

	author := f.clean(doc.Find(`meta[name="author"]`).AttrOr("content", ""))
	if author == "" {
		author = f.clean(doc.Find(`[class*="author"], [class*="Author"]`).First().Text())
	}

	date := f.clean(doc.Find(`meta[property="article:published_time"]`).AttrOr("content", ""))
	if date == "" {
		t := doc.Find("time").First()
		date = f.clean(t.AttrOr("datetime", t.Text()))
	}
	date = truncate(date, 10)

	text := articleText(doc)
	if len([]rune(text)) < minArticleChars {
		text = paragraphText(doc.Selection)
	}
	if len([]rune(text)) < minArticleChars {
		if body := doc.Find("body"); body.Length() > 0 {
			text = collapseSpace(extractFromNode(body.Get(0)))
		}
	}
	if len([]rune(text)) > maxArticleChars {
		text = truncate(text, maxArticleChars) + "..."
	}

	excerpt := text
	if len([]rune(text)) > excerptChars {
		excerpt = truncate(text, excerptChars) + "..."
	}

	return &ArticleContent{
		Title:   orDefault(title, "Title not found"),
		Author:  orDefault(author, "Unknown"),
		Date:    orDefault(date, "Unknown"),
		Text:    text,
		Excerpt: excerpt,
	}, nil
}

// clean strips any markup left in scraped metadata.
func (f *HTMLFetcher) clean(s string) string {
	return collapseSpace(html.UnescapeString(f.policy.Sanitize(s)))
}

func articleText(doc *goquery.Document) string {
	for _, sel := range articleSelectors {
		if container := doc.Find(sel).First(); container.Length() > 0 {
			return paragraphText(container)
		}
	}
	return ""
}

func paragraphText(s *goquery.Selection) string {
	var parts []string
	s.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := strings.TrimSpace(p.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return collapseSpace(strings.Join(parts, " "))
}

var spaceRe = regexp.MustCompile(`\s+`)

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ── Whole-page fallback for pages without <p> markup ────────────────────────

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"svg": true, "canvas": true, "audio": true, "video": true,
	"nav": true, "header": true, "footer": true, "form": true,
}

var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"div": true, "section": true, "article": true, "main": true,
	"blockquote": true, "li": true, "td": true, "th": true, "br": true,
	"figcaption": true,
}

func isJunkNode(n *html.Node) bool {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "class", "id":
			val := strings.ToLower(attr.Val)
			if strings.Contains(val, "advertisement") ||
				strings.Contains(val, "ad-banner") ||
				strings.Contains(val, "popup") ||
				strings.Contains(val, "modal") ||
				strings.Contains(val, "cookie-banner") {
				return true
			}
		case "aria-hidden":
			if attr.Val == "true" {
				return true
			}
		}
	}
	return false
}

// extractFromNode walks the tree and returns its visible text, skipping
// scripts, navigation and ad containers.
func extractFromNode(root *html.Node) string {
	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			tag := strings.ToLower(n.Data)
			if skipTags[tag] || isJunkNode(n) {
				return
			}
			if blockTags[tag] {
				sb.WriteByte('\n')
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			if blockTags[tag] {
				sb.WriteByte('\n')
			}
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				sb.WriteString(text)
				sb.WriteByte(' ')
			}
		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
	}
	walk(root)
	return sb.String()
}
