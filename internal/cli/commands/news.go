package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/talklog/internal/logging"
	"github.com/ccollicutt/talklog/pkg/news"
	"github.com/ccollicutt/talklog/pkg/output"
	"github.com/ccollicutt/talklog/pkg/tagger"
)

// NewsOptions holds command-line options for the news command.
type NewsOptions struct {
	Output  string
	Out     string
	Pages   int
	DB      string
	Verbose bool
	Quiet   bool
	Limit   int

	Webhook WebhookOptions
}

// NewNewsCommand creates the news command.
func NewNewsCommand(g *GlobalOptions) *cobra.Command {
	opts := &NewsOptions{}

	cmd := &cobra.Command{
		Use:   "news [keyword...]",
		Short: "Collect and tag news articles for publisher keywords",
		Long: `Search the news portal for each keyword and tag the articles with the
configured category and publisher tables.

Keywords default to news.keywords from the config (the publisher list).
Requests are rate limited by news.interval; a page that fails is reported
and the crawl continues.

Exit codes:
  0 - Articles collected
  1 - No articles found
  2 - Configuration or runtime error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNews(cmd, args, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|csv)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write the report to a file instead of stdout")
	cmd.Flags().IntVar(&opts.Pages, "pages", 0, "Result pages per keyword (default from config)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "Archive the run in this SQLite database")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show article URLs and run details")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().IntVar(&opts.Limit, "limit", -1, "Articles listed in text output (0 lists all; default from config)")

	cmd.Flags().StringVar(&opts.Webhook.URL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.Webhook.Token, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.Webhook.Trigger, "webhook-trigger", "on_results", "When to fire webhook (on_results|always|never)")

	return cmd
}

func runNews(cmd *cobra.Command, args []string, g *GlobalOptions, opts *NewsOptions) error {
	ctx := commandContext(cmd)
	started := time.Now()

	log, err := g.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	cfg, err := g.LoadConfig(ctx)
	if err != nil {
		return err
	}

	if opts.Pages < 0 {
		return fmt.Errorf("invalid --pages %d (must be positive)", opts.Pages)
	}
	pages := cfg.News.Pages
	if opts.Pages > 0 {
		pages = opts.Pages
	}

	keywords := cfg.News.Keywords
	if len(args) > 0 {
		keywords = args
	}
	if len(keywords) == 0 {
		return fmt.Errorf("no keywords to search (set news.keywords or pass keywords)")
	}

	hooks, err := collectWebhooks(cfg, opts.Webhook)
	if err != nil {
		return err
	}

	client := news.NewClient(tagger.NewNewsTagger(cfg.Tagging.Tables()),
		news.WithEndpoint(cfg.News.Endpoint),
		news.WithUserAgent(cfg.News.UserAgent),
		news.WithPages(pages),
		news.WithInterval(cfg.News.Interval),
		news.WithTimeout(cfg.News.Timeout),
		news.WithLogger(log),
	)

	log.Info("crawl started", logging.F("keywords", len(keywords)), logging.F("pages", pages))
	results, err := client.CrawlAll(ctx, keywords)
	if err != nil {
		return fmt.Errorf("crawl interrupted after %d keyword(s): %w", len(results), err)
	}

	report := output.NewArticleReport(results, started, g.ConfigPath)

	limit := cfg.Export.TextLimit
	if opts.Limit >= 0 {
		limit = opts.Limit
	}
	formatOpts := output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
		Limit:   limit,
		BOM:     cfg.Export.CSVBOM,
	}
	if err := writeReport(ctx, cmd, report, opts.Output, opts.Out, formatOpts); err != nil {
		return err
	}

	if opts.DB != "" {
		if err := archiveReport(ctx, log, opts.DB, report); err != nil {
			return err
		}
	}

	sendWebhooks(ctx, log, hooks, report)

	if !report.HasResults() {
		fmt.Fprintf(cmd.ErrOrStderr(), "talklog: %v\n", news.ErrNoResults)
		ExitCode = ExitNoData
	}
	return nil
}
