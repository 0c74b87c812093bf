package output

import (
	"context"
	"fmt"
	"io"
)

// Formatter renders a report in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json, csv).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose adds per-file statistics and zero-count buckets.
	Verbose bool

	// Quiet reduces output to a one-line summary.
	Quiet bool

	// Limit caps the rows listed by the text formatter. 0 lists all.
	Limit int

	// BOM prefixes CSV output with a UTF-8 byte order mark.
	BOM bool
}

// Formats lists the supported format names.
func Formats() []string {
	return []string{"text", "json", "csv"}
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "text", "":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	case "csv":
		return NewCSVFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (must be text, json, or csv)", name)
	}
}
