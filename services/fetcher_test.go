package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<!DOCTYPE html>
<html><head>
<title>Site title</title>
<meta name="author" content="Jane Reporter">
<meta property="article:published_time" content="2026-03-14T09:30:00Z">
</head><body>
<nav><p>Home News Sport</p></nav>
<article>
<h1>Scientists <b>confirm</b> water is wet</h1>
<p>Researchers at a university published a study on Tuesday describing the wetness of water in great detail.</p>
<p>The paper was peer reviewed and replicated by two independent labs.</p>
</article>
</body></html>`

func TestFetchArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	a, err := NewHTMLFetcher().Fetch(context.Background(), srv.URL+"/story")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/story", a.URL)
	assert.Equal(t, "127.0.0.1", a.Domain)
	assert.Equal(t, "Scientists confirm water is wet", a.Title)
	assert.Equal(t, "Jane Reporter", a.Author)
	assert.Equal(t, "2026-03-14", a.Date)
	assert.True(t, strings.HasPrefix(a.Text, "Researchers at a university"))
	assert.Contains(t, a.Text, "two independent labs.")
	assert.NotContains(t, a.Text, "Home News Sport")
	assert.Equal(t, a.Text, a.Excerpt)
}

func TestFetchDefaultsAndTruncation(t *testing.T) {
	long := strings.Repeat("word ", 1000)
	page := fmt.Sprintf(`<html><body><div><p>%s</p></div></body></html>`, long)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	a, err := NewHTMLFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Title not found", a.Title)
	assert.Equal(t, "Unknown", a.Author)
	assert.Equal(t, "Unknown", a.Date)
	assert.Len(t, a.Text, maxArticleChars+3)
	assert.True(t, strings.HasSuffix(a.Text, "..."))
	assert.Len(t, a.Excerpt, excerptChars+3)
}

func TestFetchWholePageFallback(t *testing.T) {
	page := `<html><body><script>var x = 1;</script>
<div>` + strings.Repeat("Plain text without paragraph markup. ", 5) + `</div>
<div class="cookie-banner">Accept cookies</div></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	a, err := NewHTMLFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, a.Text, "Plain text without paragraph markup.")
	assert.NotContains(t, a.Text, "var x")
	assert.NotContains(t, a.Text, "Accept cookies")
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reason string
	}{
		{"forbidden", http.StatusForbidden, "", "Access denied. This website blocks automated access."},
		{"not found", http.StatusNotFound, "", "Page not found. Check the URL and try again."},
		{"server error", http.StatusBadGateway, "", "HTTP error 502 when fetching the article."},
		{"no text", http.StatusOK, "<html><body><script>x()</script></body></html>", "No readable article text was found on this page."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTMLFetcher().Fetch(context.Background(), srv.URL)
			var fe *FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.reason, fe.Reason)
		})
	}
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTMLFetcher().Fetch(context.Background(), url)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.True(t, strings.HasPrefix(fe.Reason, "Could not fetch article: "))
}
