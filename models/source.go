package models

// Source is one piece of external evidence shown next to a verdict.
type Source struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

const (
	NoTitle         = "No title"
	PlaceholderLink = "#"
)

// NewSource fills the placeholders used when a search result lacks a title
// or link.
func NewSource(title, snippet, link string) Source {
	if title == "" {
		title = NoTitle
	}
	if link == "" {
		link = PlaceholderLink
	}
	return Source{Title: title, Snippet: snippet, Link: link}
}
