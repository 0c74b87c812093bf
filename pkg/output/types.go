// Package output renders talklog reports as text, JSON or CSV.
package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/talklog/pkg/analyzer"
	"github.com/ccollicutt/talklog/pkg/news"
	"github.com/ccollicutt/talklog/pkg/parser"
	"github.com/ccollicutt/talklog/pkg/tagger"
)

// Kind says which rows a report carries.
type Kind string

const (
	KindMessages Kind = "messages"
	KindArticles Kind = "articles"
)

// Report is the complete output of one run.
type Report struct {
	Kind      Kind                   `json:"kind"`
	Summary   Summary                `json:"summary"`
	Messages  []tagger.TaggedMessage `json:"messages,omitempty"`
	Articles  []news.Article         `json:"articles,omitempty"`
	Summaries []*analyzer.Summary    `json:"summaries,omitempty"`
	Failures  []Failure              `json:"failures,omitempty"`
	Metadata  Metadata               `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	Messages int `json:"messages,omitempty"`
	Articles int `json:"articles,omitempty"`

	// Sources is the number of transcripts or keywords processed.
	Sources int `json:"sources"`

	Failures int `json:"failures"`

	// Lines is the line statistics summed over all transcripts.
	Lines *parser.Stats `json:"lines,omitempty"`
}

// Failure is a transcript or keyword that could not be fully processed.
type Failure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Metadata provides context about the run.
type Metadata struct {
	// RunID identifies the run in the archive and in webhook payloads.
	RunID string `json:"run_id"`

	ConfigFile string              `json:"config_file,omitempty"`
	Sources    []string            `json:"sources,omitempty"`
	DateRange  *analyzer.DateRange `json:"date_range,omitempty"`

	GeneratedAt time.Time     `json:"generated_at"`
	Duration    time.Duration `json:"duration_ns"`
}

// NewMessageReport creates a report from an analysis of chat transcripts.
// lines holds the parse statistics of every transcript read.
func NewMessageReport(result *analyzer.AnalysisResult, lines parser.Stats, sources []string, configFile string) *Report {
	stats := lines
	return &Report{
		Kind:      KindMessages,
		Messages:  result.Messages,
		Summaries: result.Summaries,
		Summary: Summary{
			Messages: len(result.Messages),
			Sources:  len(sources),
			Lines:    &stats,
		},
		Metadata: Metadata{
			RunID:       uuid.NewString(),
			ConfigFile:  configFile,
			Sources:     sources,
			DateRange:   result.Metadata.DateRange,
			GeneratedAt: result.Metadata.EndTime,
			Duration:    result.Metadata.EndTime.Sub(result.Metadata.StartTime),
		},
	}
}

// NewArticleReport creates a report from news crawl results.
func NewArticleReport(results []news.KeywordResult, started time.Time, configFile string) *Report {
	r := &Report{
		Kind:     KindArticles,
		Articles: news.Flatten(results),
		Metadata: Metadata{
			RunID:       uuid.NewString(),
			ConfigFile:  configFile,
			GeneratedAt: time.Now(),
		},
	}
	r.Metadata.Duration = r.Metadata.GeneratedAt.Sub(started)
	if r.Articles == nil {
		r.Articles = []news.Article{}
	}
	for _, kr := range results {
		r.Metadata.Sources = append(r.Metadata.Sources, kr.Keyword)
		for _, f := range kr.Failures {
			r.AddFailure(kr.Keyword, f.URL+": "+f.Error)
		}
	}
	r.Summary.Articles = len(r.Articles)
	r.Summary.Sources = len(results)
	return r
}

// AddFailure records a source that could not be processed.
func (r *Report) AddFailure(source, message string) {
	r.Failures = append(r.Failures, Failure{Source: source, Error: message})
	r.Summary.Failures = len(r.Failures)
}

// HasResults reports whether the report carries any rows.
func (r *Report) HasResults() bool {
	return len(r.Messages) > 0 || len(r.Articles) > 0
}
