// Package detector inspects a chat transcript and reports which export format it uses.
package detector

import (
	"context"
	"sort"
	"strings"

	"github.com/ccollicutt/talklog/pkg/parser"
	"github.com/ccollicutt/talklog/pkg/textenc"
)

// DefaultSampleSize is the number of non-empty lines sampled by default.
const DefaultSampleSize = 200

// DetectionResult holds the result of analyzing a transcript.
type DetectionResult struct {
	Matches      []FormatMatch // Formats that matched, sorted by confidence descending
	SampledLines int           // Number of non-empty lines sampled
	ParsedLines  int           // Number of lines carrying a message
	Encoding     string        // Encoding used to decode the file
	Notes        []string      // Warnings about the sampled content
}

// FormatMatch represents a format that matched with its confidence score.
type FormatMatch struct {
	Format     *LineFormat
	Confidence float64 // 0.0 to 1.0 (share of sampled lines)
	MatchCount int     // Number of lines that matched
	SampleLine string  // First line that matched
}

// Detector analyzes transcripts to identify their export format.
type Detector struct {
	classifier *parser.Classifier
	sampleSize int
	encoding   string
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 200).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithEncoding sets the encoding used to decode files (default auto).
func WithEncoding(name string) Option {
	return func(d *Detector) {
		d.encoding = name
	}
}

// New creates a new Detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		classifier: parser.NewClassifier(),
		sampleSize: DefaultSampleSize,
		encoding:   textenc.Auto,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile decodes a transcript and analyzes its first lines.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, used, err := textenc.DecodeFile(path, d.encoding)
	if err != nil {
		return nil, err
	}
	result := d.DetectFromLines(d.sample(parser.SplitLines(text)))
	result.Encoding = used
	return result, nil
}

// DetectFromLines analyzes a slice of transcript lines. Blank lines are ignored.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{}

	type formatStats struct {
		matchCount int
		sampleLine string
	}
	stats := make(map[parser.LineKind]*formatStats)
	noMeridiem := 0

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		result.SampledLines++

		c := d.classifier.Classify(line)
		if c.Kind == parser.KindUnrecognized {
			continue
		}
		if c.Kind == parser.KindInline && c.Meridiem == parser.MeridiemNone {
			noMeridiem++
		}

		s := stats[c.Kind]
		if s == nil {
			s = &formatStats{sampleLine: strings.TrimSpace(line)}
			stats[c.Kind] = s
		}
		s.matchCount++
	}

	if result.SampledLines == 0 {
		return result
	}

	for kind, s := range stats {
		result.Matches = append(result.Matches, FormatMatch{
			Format:     formatFor(kind),
			Confidence: float64(s.matchCount) / float64(result.SampledLines),
			MatchCount: s.matchCount,
			SampleLine: s.sampleLine,
		})
		if kind != parser.KindDateSeparator {
			result.ParsedLines += s.matchCount
		}
	}

	// Message formats outrank date lines at equal confidence.
	sort.Slice(result.Matches, func(i, j int) bool {
		a, b := result.Matches[i], result.Matches[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.Format.Kind < b.Format.Kind
	})

	if stats[parser.KindBracket] != nil && stats[parser.KindDateSeparator] == nil {
		result.Notes = append(result.Notes,
			"Bracketed lines were found without any date line in the sample; they are dropped until a date line appears.")
	}
	if noMeridiem > 0 {
		result.Notes = append(result.Notes,
			"Some inline lines have no 오전/오후 marker; their hour is read as a 24-hour value.")
	}

	return result
}

// sample returns up to sampleSize non-empty lines.
func (d *Detector) sample(lines []string) []string {
	var out []string
	for _, line := range lines {
		if len(out) >= d.sampleSize {
			break
		}
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one format matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}

// Dominant returns the message format (inline or bracket) with the most lines,
// or nil if no message lines were found.
func (r *DetectionResult) Dominant() *FormatMatch {
	for i := range r.Matches {
		if r.Matches[i].Format.Kind != parser.KindDateSeparator {
			return &r.Matches[i]
		}
	}
	return nil
}
