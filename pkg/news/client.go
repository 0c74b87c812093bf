package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/ccollicutt/talklog/internal/logging"
	"github.com/ccollicutt/talklog/pkg/fn"
	"github.com/ccollicutt/talklog/pkg/tagger"
)

// Defaults for the search client.
const (
	DefaultEndpoint  = "https://search.naver.com/search.naver"
	DefaultPages     = 3
	DefaultInterval  = 300 * time.Millisecond
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0"

	resultsPerPage = 10
	maxPageSize    = 5 * 1024 * 1024
)

// Client fetches and parses news search result pages. Requests are paced by
// a shared limiter and are not retried.
type Client struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
	pages      int
	limiter    *rate.Limiter
	tagger     *tagger.Tagger
	logger     logging.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) { c.endpoint = endpoint }
}

func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithPages sets the number of result pages fetched per keyword.
func WithPages(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.pages = n
		}
	}
}

// WithInterval sets the minimum delay between requests. Zero disables pacing.
func WithInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithTimeout sets the per-request timeout on a copy of the HTTP client, so a
// client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

func WithLogger(l logging.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client that tags articles with tg.
func NewClient(tg *tagger.Tagger, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		endpoint:   DefaultEndpoint,
		userAgent:  DefaultUserAgent,
		pages:      DefaultPages,
		limiter:    rate.NewLimiter(rate.Every(DefaultInterval), 1),
		tagger:     tg,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchURL returns the URL of one result page for keyword. Pages start at 1
// and hold ten results each; the search is sorted newest first and limited to
// the last two weeks.
func (c *Client) SearchURL(keyword string, page int) string {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("where", "news")
	q.Set("query", keyword)
	q.Set("sort", "1")
	q.Set("nso", "so:dd,p:2w")
	q.Set("start", strconv.Itoa((page-1)*resultsPerPage+1))
	return c.endpoint + "?" + q.Encode()
}

// FetchPage downloads and parses one result page.
func (c *Client) FetchPage(ctx context.Context, keyword string, page int) ([]fn.Result[Item], error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := c.SearchURL(keyword, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching %s: status %d", u, resp.StatusCode)
	}

	return ParsePage(io.LimitReader(resp.Body, maxPageSize))
}

// Crawl fetches every page for keyword and returns the tagged, de-duplicated
// articles. A page that fails is recorded and the crawl moves on; only context
// cancellation returns an error.
func (c *Client) Crawl(ctx context.Context, keyword string) (*KeywordResult, error) {
	result := &KeywordResult{Keyword: keyword, Articles: []Article{}}
	seen := make(map[string]bool)
	log := c.logger.With(logging.F("keyword", keyword))

	for page := 1; page <= c.pages; page++ {
		items, err := c.FetchPage(ctx, keyword, page)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			log.Warn("result page failed", logging.F("page", page), logging.Err(err))
			result.Failures = append(result.Failures, PageFailure{
				Page:  page,
				URL:   c.SearchURL(keyword, page),
				Error: err.Error(),
			})
			continue
		}

		for _, r := range items {
			item, err := r.Unwrap()
			if err != nil {
				log.Debug("skipping search hit", logging.F("page", page), logging.Err(err))
				result.Skipped++
				continue
			}
			if seen[item.URL] || (item.Summary != "" && seen[item.Summary]) {
				result.Skipped++
				continue
			}
			seen[item.URL] = true
			if item.Summary != "" {
				seen[item.Summary] = true
			}
			result.Articles = append(result.Articles, NewArticle(keyword, item, c.tagger))
		}
	}

	log.Info("keyword crawled",
		logging.F("articles", len(result.Articles)),
		logging.F("skipped", result.Skipped),
		logging.F("failed_pages", len(result.Failures)))
	return result, nil
}

// CrawlAll crawls each keyword in turn. It stops early only when ctx is
// cancelled, returning the results gathered so far.
func (c *Client) CrawlAll(ctx context.Context, keywords []string) ([]KeywordResult, error) {
	results := make([]KeywordResult, 0, len(keywords))
	for _, kw := range keywords {
		r, err := c.Crawl(ctx, kw)
		if err != nil {
			return results, err
		}
		results = append(results, *r)
	}
	return results, nil
}
