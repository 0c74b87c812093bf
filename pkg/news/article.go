// Package news searches a news portal for keywords and tags the hits with the
// same keyword tables used for chat messages.
package news

import (
	"errors"
	"strings"

	"github.com/ccollicutt/talklog/pkg/tagger"
)

// NoDate is the Date of an article whose listing shows no date.
const NoDate = "날짜 없음"

var (
	// ErrNoResults is returned when a crawl produced no articles at all.
	ErrNoResults = errors.New("no articles found")

	// ErrMissingField marks a search hit that lacks a required element.
	ErrMissingField = errors.New("missing field")
)

// Item is one search hit as listed on a result page.
type Item struct {
	Title   string
	URL     string
	Summary string
	Press   string
	Date    string
}

// Article is a tagged search hit.
type Article struct {
	Keyword   string `json:"keyword"`
	Publisher string `json:"publisher"`
	Category  string `json:"category"`
	Date      string `json:"date"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Summary   string `json:"summary"`
	Press     string `json:"press"`

	// PublisherMentioned reports whether any tracked publisher appears in the
	// title or summary.
	PublisherMentioned bool `json:"publisher_mentioned"`

	// TextbookMentioned reports whether a textbook term appears.
	TextbookMentioned bool `json:"textbook_mentioned"`
}

// NewArticle tags item using tg, a news tagger.
func NewArticle(keyword string, item Item, tg *tagger.Tagger) Article {
	text := item.Title + " " + item.Summary
	date := item.Date
	if strings.TrimSpace(date) == "" {
		date = NoDate
	}
	return Article{
		Keyword:            keyword,
		Publisher:          tg.Publisher(text),
		Category:           tg.Category(text),
		Date:               date,
		Title:              item.Title,
		URL:                item.URL,
		Summary:            item.Summary,
		Press:              item.Press,
		PublisherMentioned: tg.PublisherMentioned(text),
		TextbookMentioned:  tg.TextbookMentioned(text),
	}
}

// PageFailure records a result page that could not be fetched.
type PageFailure struct {
	Page  int    `json:"page"`
	URL   string `json:"url"`
	Error string `json:"error"`
}

// KeywordResult is the outcome of crawling one keyword.
type KeywordResult struct {
	Keyword  string        `json:"keyword"`
	Articles []Article     `json:"articles"`
	Failures []PageFailure `json:"failures,omitempty"`

	// Skipped counts hits dropped for missing fields or as duplicates.
	Skipped int `json:"skipped"`
}

// Flatten concatenates the articles of all results, in order.
func Flatten(results []KeywordResult) []Article {
	var out []Article
	for _, r := range results {
		out = append(out, r.Articles...)
	}
	return out
}
