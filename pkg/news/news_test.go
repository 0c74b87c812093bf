package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/talklog/pkg/tagger"
)

func hit(title, href, summary, press, date string) string {
	var b strings.Builder
	b.WriteString(`<div class="news_wrap"><div class="news_area">`)
	b.WriteString(`<div class="news_info"><div class="info_group">`)
	if press != "" {
		fmt.Fprintf(&b, `<a class="info press" href="#">%s</a>`, press)
	}
	if date != "" {
		fmt.Fprintf(&b, `<span class="info">%s</span>`, date)
	}
	b.WriteString(`</div></div>`)
	if href != "" {
		fmt.Fprintf(&b, `<a class="news_tit" href="%s" title="%s">%s</a>`, href, title, title)
	}
	if summary != "" {
		fmt.Fprintf(&b, `<div class="news_dsc"><div class="dsc_txt_wrap">%s</div></div>`, summary)
	}
	b.WriteString(`</div></div>`)
	return b.String()
}

func page(hits ...string) string {
	return "<html><body><ul class=\"list_news\">" + strings.Join(hits, "") + "</ul></body></html>"
}

func TestParsePage(t *testing.T) {
	html := page(
		hit("지학사, 교육청과 MOU", "https://news.example.com/1", "  지학사가   협약을 맺었다 ", "교육신문", "3일 전"),
		hit("제목", "", "요약", "언론", ""),
		hit("미래엔 신간", "https://news.example.com/2", "요약 <b>강조</b>", "", ""),
	)

	items, err := ParsePage(strings.NewReader(html))
	require.NoError(t, err)
	require.Len(t, items, 3)

	first, err := items[0].Unwrap()
	require.NoError(t, err)
	assert.Equal(t, Item{
		Title:   "지학사, 교육청과 MOU",
		URL:     "https://news.example.com/1",
		Summary: "지학사가 협약을 맺었다",
		Press:   "교육신문",
		Date:    "3일 전",
	}, first)

	assert.ErrorIs(t, items[1].Error(), ErrMissingField)
	assert.ErrorIs(t, items[2].Error(), ErrMissingField)
}

func TestParsePage_NoResults(t *testing.T) {
	items, err := ParsePage(strings.NewReader("<html><body>검색결과가 없습니다</body></html>"))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNewArticle(t *testing.T) {
	tg := tagger.NewNewsTagger(tagger.DefaultTables())

	a := NewArticle("지학사", Item{
		Title:   "지학사, 교육청과 MOU",
		URL:     "https://news.example.com/1",
		Summary: "검정 교과서 공급 협약",
		Press:   "교육신문",
	}, tg)

	assert.Equal(t, "지학사", a.Keyword)
	assert.Equal(t, "지학사", a.Publisher)
	assert.Equal(t, "협약/MOU", a.Category)
	assert.Equal(t, NoDate, a.Date)
	assert.True(t, a.PublisherMentioned)
	assert.True(t, a.TextbookMentioned)

	other := NewArticle("벽호", Item{Title: "날씨", Summary: "맑음"}, tg)
	assert.Equal(t, tagger.DefaultPublisher, other.Publisher)
	assert.Equal(t, tagger.DefaultCategory, other.Category)
	assert.False(t, other.PublisherMentioned)
	assert.False(t, other.TextbookMentioned)
}

func TestClient_SearchURL(t *testing.T) {
	c := NewClient(tagger.NewNewsTagger(tagger.DefaultTables()), WithEndpoint("https://search.example.com/search"))

	u, err := url.Parse(c.SearchURL("천재교육", 3))
	require.NoError(t, err)
	assert.Equal(t, "search.example.com", u.Host)

	q := u.Query()
	assert.Equal(t, "news", q.Get("where"))
	assert.Equal(t, "천재교육", q.Get("query"))
	assert.Equal(t, "1", q.Get("sort"))
	assert.Equal(t, "so:dd,p:2w", q.Get("nso"))
	assert.Equal(t, "21", q.Get("start"))

	first, _ := url.Parse(c.SearchURL("x", 0))
	assert.Equal(t, "1", first.Query().Get("start"))
}

func newTestServer(t *testing.T, handler func(start string) (int, string)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "talklog-test", r.Header.Get("User-Agent"))
		status, body := handler(r.URL.Query().Get("start"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testClient(srv *httptest.Server, pages int) *Client {
	return NewClient(
		tagger.NewNewsTagger(tagger.DefaultTables()),
		WithEndpoint(srv.URL+"/search"),
		WithUserAgent("talklog-test"),
		WithPages(pages),
		WithInterval(0),
	)
}

func TestClient_WithTimeoutKeepsSharedClient(t *testing.T) {
	shared := &http.Client{}
	c := NewClient(tagger.NewNewsTagger(tagger.DefaultTables()), WithHTTPClient(shared), WithTimeout(5*time.Second))

	assert.Equal(t, time.Duration(0), shared.Timeout)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.NotSame(t, shared, c.httpClient)
}

func TestClient_Crawl(t *testing.T) {
	srv, calls := newTestServer(t, func(start string) (int, string) {
		switch start {
		case "1":
			return http.StatusOK, page(
				hit("미래엔 교과서 공급", "https://n.example.com/a", "요약 A", "신문A", ""),
				hit("중복 링크", "https://n.example.com/a", "요약 다른", "신문B", ""),
				hit("깨진 항목", "", "", "", ""),
			)
		case "11":
			return http.StatusInternalServerError, "oops"
		default:
			return http.StatusOK, page(
				hit("같은 요약", "https://n.example.com/c", "요약 A", "신문C", ""),
				hit("인쇄 소식", "https://n.example.com/d", "프린피아 인쇄 공장", "신문D", "1일 전"),
			)
		}
	})

	result, err := testClient(srv, 3).Crawl(context.Background(), "미래엔")
	require.NoError(t, err)

	assert.EqualValues(t, 3, calls.Load())
	require.Len(t, result.Articles, 2)
	assert.Equal(t, "https://n.example.com/a", result.Articles[0].URL)
	assert.Equal(t, "공급", result.Articles[0].Category)
	assert.Equal(t, "미래엔", result.Articles[0].Publisher)
	assert.Equal(t, "프린트 및 인쇄", result.Articles[1].Category)
	assert.Equal(t, "1일 전", result.Articles[1].Date)
	assert.Equal(t, 3, result.Skipped)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, 2, result.Failures[0].Page)
	assert.Contains(t, result.Failures[0].Error, "status 500")
}

func TestClient_CrawlAll(t *testing.T) {
	srv, _ := newTestServer(t, func(string) (int, string) {
		return http.StatusOK, page(hit("지학사 소식", "https://n.example.com/x", "요약", "신문", ""))
	})

	results, err := testClient(srv, 1).CrawlAll(context.Background(), []string{"지학사", "벽호"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "지학사", results[0].Keyword)
	assert.Equal(t, "벽호", results[1].Articles[0].Keyword)
	assert.Len(t, Flatten(results), 2)
}

func TestClient_CrawlAllCancelled(t *testing.T) {
	srv, calls := newTestServer(t, func(string) (int, string) {
		return http.StatusOK, page()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := testClient(srv, 2).CrawlAll(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.EqualValues(t, 0, calls.Load())
}
