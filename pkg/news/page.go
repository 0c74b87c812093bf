package news

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ccollicutt/talklog/pkg/fn"
)

// Selectors for the search result markup.
const (
	selArticle = ".news_area"
	selTitle   = ".news_tit"
	selSummary = ".dsc_txt_wrap"
	selPress   = ".info_group a"
	selDate    = ".info_group span.info"
)

// ParsePage extracts the hits from a result page. Each hit is returned as its
// own Result so one malformed block does not hide the others. The error is
// only for documents that cannot be read at all.
func ParsePage(r io.Reader) ([]fn.Result[Item], error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing result page: %w", err)
	}

	var items []fn.Result[Item]
	doc.Find(selArticle).Each(func(i int, s *goquery.Selection) {
		items = append(items, parseItem(i, s))
	})
	return items, nil
}

func parseItem(i int, s *goquery.Selection) fn.Result[Item] {
	title := s.Find(selTitle).First()
	if title.Length() == 0 {
		return fn.Err[Item](fmt.Errorf("item %d: %w: title", i, ErrMissingField))
	}
	titleText, ok := title.Attr("title")
	if !ok || strings.TrimSpace(titleText) == "" {
		titleText = title.Text()
	}
	href, ok := title.Attr("href")
	if !ok || href == "" {
		return fn.Err[Item](fmt.Errorf("item %d: %w: link", i, ErrMissingField))
	}

	summary := s.Find(selSummary).First()
	if summary.Length() == 0 {
		return fn.Err[Item](fmt.Errorf("item %d: %w: summary", i, ErrMissingField))
	}
	press := s.Find(selPress).First()
	if press.Length() == 0 {
		return fn.Err[Item](fmt.Errorf("item %d: %w: press", i, ErrMissingField))
	}

	item := Item{
		Title:   collapse(titleText),
		URL:     strings.TrimSpace(href),
		Summary: collapse(summary.Text()),
		Press:   collapse(press.Text()),
	}
	if item.Title == "" {
		return fn.Err[Item](fmt.Errorf("item %d: %w: title", i, ErrMissingField))
	}

	// The date is the last plain info span; the first may be a badge.
	s.Find(selDate).Each(func(_ int, d *goquery.Selection) {
		if text := collapse(d.Text()); text != "" {
			item.Date = text
		}
	})
	return fn.Ok(item)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
