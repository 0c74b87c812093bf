package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/talklog/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output     string
	SampleSize int
	Encoding   string
	ShowAll    bool
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <transcript>",
		Short: "Detect the export format of a chat transcript",
		Long: `Analyze a chat transcript to identify which export format it uses.

Samples the first non-empty lines of the file, decodes them (UTF-8, UTF-16 or
EUC-KR/CP949 are detected automatically) and classifies each line as an inline
message, a bracketed message or a date line.

Example:
  talklog detect chat.txt
  talklog detect --sample 500 -o json chat.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of lines to sample")
	cmd.Flags().StringVar(&opts.Encoding, "encoding", "auto", "Transcript encoding")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all detected line formats, not just the dominant one")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	path := args[0]
	ctx := commandContext(cmd)

	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("transcript not found: %s", path)
	}

	d := detector.New(
		detector.WithSampleSize(opts.SampleSize),
		detector.WithEncoding(opts.Encoding),
	)

	result, err := d.DetectFromFile(ctx, path)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	if result.Dominant() == nil {
		ExitCode = ExitNoData
	}

	w := cmd.OutOrStdout()
	if opts.Output == "json" {
		return outputDetectJSON(w, result, path, opts)
	}
	outputDetectText(w, result, path, opts)
	return nil
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, path string, opts *DetectOptions) {
	fmt.Fprintln(w, "=== Transcript Format Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", path)
	fmt.Fprintf(w, "Encoding: %s\n", result.Encoding)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Lines with messages: %d\n", result.ParsedLines)
	fmt.Fprintln(w)

	best := result.Dominant()
	if best == nil {
		fmt.Fprintln(w, "No chat format detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: The file may not be a chat export, or it may use another encoding.")
		fmt.Fprintln(w, "Try --encoding euc-kr or check the first few lines manually.")
		return
	}

	fmt.Fprintf(w, "Detected Format: %s\n", best.Format.Name)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d lines matched)\n",
		best.Confidence*100, best.MatchCount, result.SampledLines)
	fmt.Fprintf(w, "Description: %s\n", best.Format.Description)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sample match:\n  %s\n", best.SampleLine)
	fmt.Fprintln(w)

	for _, note := range result.Notes {
		fmt.Fprintf(w, "Note: %s\n", note)
	}
	if len(result.Notes) > 0 {
		fmt.Fprintln(w)
	}

	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- All line formats detected ---")
		for i, m := range result.Matches {
			fmt.Fprintf(w, "%d. %s (%.1f%%, %d lines)\n", i+1, m.Format.Name, m.Confidence*100, m.MatchCount)
			fmt.Fprintf(w, "   %s\n", m.SampleLine)
		}
		fmt.Fprintln(w)
	}
}

// JSONMatch represents a format match in JSON output.
type JSONMatch struct {
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"match_count"`
	SampleLine string  `json:"sample_line"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File         string      `json:"file"`
	Encoding     string      `json:"encoding"`
	Dominant     string      `json:"dominant,omitempty"`
	Matches      []JSONMatch `json:"matches"`
	SampledLines int         `json:"sampled_lines"`
	ParsedLines  int         `json:"parsed_lines"`
	Notes        []string    `json:"notes,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, path string, opts *DetectOptions) error {
	out := JSONOutput{
		File:         path,
		Encoding:     result.Encoding,
		SampledLines: result.SampledLines,
		ParsedLines:  result.ParsedLines,
		Notes:        result.Notes,
		Matches:      make([]JSONMatch, 0),
	}

	matches := result.Matches
	if best := result.Dominant(); best != nil {
		out.Dominant = best.Format.Kind.String()
		if !opts.ShowAll {
			matches = []detector.FormatMatch{*best}
		}
	}

	for _, m := range matches {
		out.Matches = append(out.Matches, JSONMatch{
			Name:       m.Format.Name,
			Kind:       m.Format.Kind.String(),
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			SampleLine: m.SampleLine,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(out)
}
