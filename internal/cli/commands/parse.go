package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/talklog/internal/logging"
	"github.com/ccollicutt/talklog/pkg/analyzer"
	"github.com/ccollicutt/talklog/pkg/output"
	"github.com/ccollicutt/talklog/pkg/parser"
	"github.com/ccollicutt/talklog/pkg/tagger"
	"github.com/ccollicutt/talklog/pkg/textenc"
)

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	Output   string
	Out      string
	Merge    bool
	From     string
	To       string
	Encoding string
	Workers  int
	Summary  []string
	DB       string
	Verbose  bool
	Quiet    bool
	Limit    int

	Webhook WebhookOptions
}

// NewParseCommand creates the parse command.
func NewParseCommand(g *GlobalOptions) *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <transcript>...",
		Short: "Extract and tag messages from chat exports",
		Long: `Extract messages from exported KakaoTalk chat transcripts, tag them with
the configured keyword tables and print a report.

Both export formats are recognized:
  - inline:  2024년 9월 2일 오후 4:13, 홍길동 : 메시지
  - bracket: [홍길동] [오후 4:13] 메시지 (dated by "--- 2024년 9월 2일 ---" lines)

Arguments may be files, directories (every *.txt inside) or glob patterns.

Exit codes:
  0 - Messages extracted
  1 - No messages could be extracted (format not recognized)
  2 - Configuration or runtime error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|csv)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.Merge, "merge", false, "Interleave messages from all transcripts in time order")
	cmd.Flags().StringVar(&opts.From, "from", "", "Keep messages on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.To, "to", "", "Keep messages on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Encoding, "encoding", "", "Transcript encoding (auto, utf-8, utf-16le, euc-kr, cp949, ...)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Transcripts parsed concurrently (default from config)")
	cmd.Flags().StringSliceVar(&opts.Summary, "summary", nil, "Summaries to compute (categories, senders, complaints, daily)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "Archive the run in this SQLite database")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show zero-count buckets and run details")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().IntVar(&opts.Limit, "limit", -1, "Messages listed in text output (0 lists all; default from config)")

	cmd.Flags().StringVar(&opts.Webhook.URL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.Webhook.Token, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.Webhook.Trigger, "webhook-trigger", "on_results", "When to fire webhook (on_results|always|never)")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, g *GlobalOptions, opts *ParseOptions) error {
	ctx := commandContext(cmd)

	log, err := g.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	cfg, err := g.LoadConfig(ctx)
	if err != nil {
		return err
	}

	encoding := cfg.Transcript.Encoding
	if opts.Encoding != "" {
		if !textenc.Valid(opts.Encoding) {
			return fmt.Errorf("%w: %q", textenc.ErrUnknownEncoding, opts.Encoding)
		}
		encoding = opts.Encoding
	}
	workers := cfg.Transcript.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	hooks, err := collectWebhooks(cfg, opts.Webhook)
	if err != nil {
		return err
	}

	analyzerOpts, err := parseAnalyzerOptions(opts)
	if err != nil {
		return err
	}

	files, err := parser.ExpandGlobs(args)
	if err != nil {
		return fmt.Errorf("expanding transcripts: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no transcripts matched: %v", args)
	}

	tg := tagger.NewChatTagger(cfg.Tagging.Tables())
	a, err := analyzer.New(tg, analyzerOpts...)
	if err != nil {
		return err
	}

	p := parser.New(parser.WithExcludedSenders(cfg.Transcript.ExcludedSenders...))

	run, err := readTranscripts(ctx, a, p, files, encoding, workers, opts.Merge)
	if err != nil {
		return err
	}

	var lines parser.Stats
	for _, fr := range run.files {
		lines.Add(fr.Stats)
		fileLog := log.With(logging.F("file", fr.Path), logging.F("encoding", fr.Encoding))
		if fr.Empty() {
			fileLog.Warn("format not recognized", logging.F("lines", fr.Stats.Lines))
			continue
		}
		fileLog.Info("transcript parsed",
			logging.F("records", fr.Stats.Records),
			logging.F("dropped", fr.Stats.Dropped()))
	}

	report := output.NewMessageReport(run.analysis, lines, files, g.ConfigPath)
	for _, f := range run.failures {
		log.Error("transcript failed", logging.F("file", f.path), logging.Err(f.err))
		report.AddFailure(f.path, f.err.Error())
	}

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

	// Webhook failures are logged and don't fail the run.
	sendWebhooks(ctx, log, hooks, report)

	if lines.Records == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "talklog: %v (format not recognized)\n", parser.ErrNoMessages)
		ExitCode = ExitNoData
	}
	return nil
}

type fileFailure struct {
	path string
	err  error
}

type parseRun struct {
	files    []*parser.FileResult
	failures []fileFailure
	analysis *analyzer.AnalysisResult
}

// readTranscripts parses files and feeds their records to a. A single file is
// streamed and a read error fails the run. Several files are parsed
// concurrently; unreadable ones are reported as failures and skipped.
func readTranscripts(ctx context.Context, a *analyzer.Analyzer, p *parser.Parser, files []string, encoding string, workers int, merge bool) (*parseRun, error) {
	run := &parseRun{}

	if len(files) == 1 {
		fs := parser.NewFileSource(files, p, encoding)
		defer fs.Close()

		result, err := a.Analyze(ctx, fs)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", files[0], err)
		}
		run.files = fs.Files()
		run.analysis = result
		return run, nil
	}

	var sources []parser.RecordSource
	for i, r := range p.ParseFiles(ctx, files, encoding, workers) {
		fr, err := r.Unwrap()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			run.failures = append(run.failures, fileFailure{path: files[i], err: err})
			continue
		}
		run.files = append(run.files, fr)
		sources = append(sources, parser.NewSliceSource(fr.Records))
	}
	if len(run.files) == 0 {
		return nil, fmt.Errorf("no transcript could be read: %w", run.failures[0].err)
	}

	var source parser.RecordSource
	if merge {
		source = parser.NewMergedSource(sources...)
	} else {
		source = parser.NewConcatSource(sources...)
	}
	defer source.Close()

	result, err := a.Analyze(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	run.analysis = result
	return run, nil
}

func parseAnalyzerOptions(opts *ParseOptions) ([]analyzer.Option, error) {
	var out []analyzer.Option

	if opts.From != "" || opts.To != "" {
		var from, to parser.Date
		var err error
		if opts.From != "" {
			if from, err = parser.ParseDate(opts.From); err != nil {
				return nil, fmt.Errorf("invalid --from %q: %w", opts.From, err)
			}
		}
		if opts.To != "" {
			if to, err = parser.ParseDate(opts.To); err != nil {
				return nil, fmt.Errorf("invalid --to %q: %w", opts.To, err)
			}
		}
		if !from.IsZero() && !to.IsZero() && from.Compare(to) > 0 {
			return nil, fmt.Errorf("--from %s is after --to %s", from, to)
		}
		out = append(out, analyzer.WithDateRange(from, to))
	}

	if len(opts.Summary) > 0 {
		out = append(out, analyzer.WithEngines(opts.Summary...))
	}

	return out, nil
}
