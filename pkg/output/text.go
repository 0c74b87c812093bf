package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ccollicutt/talklog/pkg/analyzer"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		fmt.Fprintln(w, f.summaryLine(report))
		return nil
	}
	if report.Kind == KindArticles {
		return f.formatArticles(report, w)
	}
	return f.formatMessages(report, w)
}

func (f *TextFormatter) summaryLine(report *Report) string {
	if report.Kind == KindArticles {
		return fmt.Sprintf("talklog: %d articles for %d keywords, %d failures",
			report.Summary.Articles, report.Summary.Sources, report.Summary.Failures)
	}
	return fmt.Sprintf("talklog: %d messages from %d transcripts, %d failures",
		report.Summary.Messages, report.Summary.Sources, report.Summary.Failures)
}

func (f *TextFormatter) formatMessages(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "=== talklog Chat Report ===")
	fmt.Fprintln(w)

	for _, s := range report.Summaries {
		f.formatSummary(s, w)
	}

	if len(report.Messages) > 0 {
		shown := f.limit(len(report.Messages))
		fmt.Fprintf(w, "[MESSAGES] showing %d of %d\n", shown, len(report.Messages))
		for _, m := range report.Messages[:shown] {
			fmt.Fprintf(w, "  %s %s %s [%s] %s\n", m.Date, m.Time, m.Sender, m.Category, m.Message)
		}
		fmt.Fprintln(w)
	}

	f.formatFailures(report, w)

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d messages from %d transcripts\n", report.Summary.Messages, report.Summary.Sources)
	if lines := report.Summary.Lines; lines != nil {
		fmt.Fprintf(w, "Lines: %d read, %d dropped (%d unrecognized, %d undated, %d excluded, %d invalid)\n",
			lines.Lines, lines.Dropped(), lines.Unrecognized, lines.Undated, lines.Excluded, lines.Invalid)
	}
	if f.opts.Verbose {
		fmt.Fprintf(w, "Run: %s\n", report.Metadata.RunID)
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}
	return nil
}

func (f *TextFormatter) formatSummary(s *analyzer.Summary, w io.Writer) {
	fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(string(s.Kind)), s.Description)

	if s.Kind == analyzer.KindComplaint {
		if len(s.Messages) == 0 {
			fmt.Fprintln(w, "  No complaints found")
		}
		for _, m := range s.Messages[:f.limit(len(s.Messages))] {
			fmt.Fprintf(w, "  - %s %s %s: %s\n", m.Date, m.Time, m.Sender, m.Message)
		}
		fmt.Fprintln(w)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	printed := 0
	for _, b := range s.Buckets {
		if b.Count == 0 && !f.opts.Verbose {
			continue
		}
		fmt.Fprintf(tw, "  %s\t%d\n", b.Key, b.Count)
		printed++
	}
	tw.Flush()
	if printed == 0 {
		fmt.Fprintln(w, "  No messages")
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatArticles(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "=== talklog News Report ===")
	fmt.Fprintln(w)

	byKeyword := make(map[string]int)
	for _, a := range report.Articles {
		byKeyword[a.Keyword]++
	}

	shown := f.limit(len(report.Articles))
	current := ""
	for i, a := range report.Articles[:shown] {
		if i == 0 || a.Keyword != current {
			if i > 0 {
				fmt.Fprintln(w)
			}
			current = a.Keyword
			fmt.Fprintf(w, "[%s] %d article(s)\n", a.Keyword, byKeyword[a.Keyword])
		}
		fmt.Fprintf(w, "  - %s (%s) [%s] publisher=%s check=%s textbook=%s\n",
			a.Title, a.Press, a.Category, a.Publisher, flag(a.PublisherMentioned), flag(a.TextbookMentioned))
		if f.opts.Verbose {
			fmt.Fprintf(w, "    %s\n", a.URL)
		}
	}
	if shown > 0 {
		fmt.Fprintln(w)
	}
	if shown < len(report.Articles) {
		fmt.Fprintf(w, "... %d more article(s)\n\n", len(report.Articles)-shown)
	}

	f.formatFailures(report, w)

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d articles for %d keywords, %d failures\n",
		report.Summary.Articles, report.Summary.Sources, report.Summary.Failures)
	if f.opts.Verbose {
		fmt.Fprintf(w, "Run: %s\n", report.Metadata.RunID)
	}
	return nil
}

func (f *TextFormatter) formatFailures(report *Report, w io.Writer) {
	if len(report.Failures) == 0 {
		return
	}
	fmt.Fprintf(w, "[FAILURES] %d\n", len(report.Failures))
	for _, fl := range report.Failures {
		fmt.Fprintf(w, "  - %s: %s\n", fl.Source, fl.Error)
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) limit(n int) int {
	if f.opts.Limit > 0 && f.opts.Limit < n {
		return f.opts.Limit
	}
	return n
}
