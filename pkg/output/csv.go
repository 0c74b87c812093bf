package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

// MessageColumns is the CSV header for message reports.
var MessageColumns = []string{"date", "time", "sender", "message", "category", "publisher", "subject", "complaint"}

// ArticleColumns is the CSV header for article reports.
var ArticleColumns = []string{"keyword", "publisher", "category", "date", "title", "url", "summary", "press", "publisher_mentioned", "textbook_mentioned"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVFormatter writes one row per message or article.
type CSVFormatter struct {
	opts FormatOptions
}

// NewCSVFormatter creates a new CSV formatter with the given options.
func NewCSVFormatter(opts FormatOptions) *CSVFormatter {
	return &CSVFormatter{opts: opts}
}

// Name returns the format name.
func (f *CSVFormatter) Name() string {
	return "csv"
}

// Format renders the report rows. Boolean flags are written as O or X.
func (f *CSVFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.BOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	var err error
	switch report.Kind {
	case KindArticles:
		err = f.writeArticles(ctx, report, cw)
	default:
		err = f.writeMessages(ctx, report, cw)
	}
	if err != nil {
		return err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func (f *CSVFormatter) writeMessages(ctx context.Context, report *Report, cw *csv.Writer) error {
	if err := cw.Write(MessageColumns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, m := range report.Messages {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := []string{
			m.Date.String(),
			m.Time.String(),
			m.Sender,
			m.Message,
			m.Category,
			m.Publisher,
			m.Subject,
			flag(m.Complaint),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	return nil
}

func (f *CSVFormatter) writeArticles(ctx context.Context, report *Report, cw *csv.Writer) error {
	if err := cw.Write(ArticleColumns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, a := range report.Articles {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := []string{
			a.Keyword,
			a.Publisher,
			a.Category,
			a.Date,
			a.Title,
			a.URL,
			a.Summary,
			a.Press,
			flag(a.PublisherMentioned),
			flag(a.TextbookMentioned),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	return nil
}

func flag(b bool) string {
	if b {
		return "O"
	}
	return "X"
}
