package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ccollicutt/talklog/pkg/parser"
	"github.com/ccollicutt/talklog/pkg/tagger"
)

// Analyzer tags records from a source and feeds them through summary engines.
type Analyzer struct {
	tagger  *tagger.Tagger
	engines []Engine

	dateRange    *DateRange
	engineFilter []string
}

// DateRange is an inclusive date filter. A zero bound is open.
type DateRange struct {
	From parser.Date `json:"from,omitempty"`
	To   parser.Date `json:"to,omitempty"`
}

// Contains reports whether d falls inside the range.
func (r *DateRange) Contains(d parser.Date) bool {
	if r == nil {
		return true
	}
	if !r.From.IsZero() && d.Compare(r.From) < 0 {
		return false
	}
	if !r.To.IsZero() && d.Compare(r.To) > 0 {
		return false
	}
	return true
}

// Option configures analyzer behavior.
type Option func(*Analyzer)

// WithDateRange keeps only messages dated from..to, inclusive. Either bound
// may be the zero Date.
func WithDateRange(from, to parser.Date) Option {
	return func(a *Analyzer) {
		if from.IsZero() && to.IsZero() {
			return
		}
		a.dateRange = &DateRange{From: from, To: to}
	}
}

// WithEngines limits analysis to the named engines.
func WithEngines(names ...string) Option {
	return func(a *Analyzer) {
		a.engineFilter = names
	}
}

// EngineNames lists the available engines in reporting order.
func EngineNames() []string {
	return []string{EngineCategories, EngineSenders, EngineComplaints, EngineDaily}
}

// New creates an Analyzer that tags messages with tg.
func New(tg *tagger.Tagger, opts ...Option) (*Analyzer, error) {
	if tg == nil {
		return nil, errors.New("analyzer: tagger is required")
	}
	a := &Analyzer{tagger: tg}
	for _, opt := range opts {
		opt(a)
	}

	all := map[string]Engine{
		EngineCategories: NewCategoryEngine(tg.Tables().CategoryNames()),
		EngineSenders:    NewSenderEngine(),
		EngineComplaints: NewComplaintEngine(),
		EngineDaily:      NewDailyEngine(),
	}

	if len(a.engineFilter) == 0 {
		for _, name := range EngineNames() {
			a.engines = append(a.engines, all[name])
		}
		return a, nil
	}

	for _, name := range a.engineFilter {
		e, ok := all[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("unknown summary %q (must be one of %s)", name, strings.Join(EngineNames(), ", "))
		}
		a.engines = append(a.engines, e)
	}
	return a, nil
}

// AnalysisResult contains the tagged messages and their summaries.
type AnalysisResult struct {
	Messages  []tagger.TaggedMessage
	Summaries []*Summary
	Metadata  AnalysisMetadata
}

// AnalysisMetadata provides context about the run.
type AnalysisMetadata struct {
	// Sources lists the transcript files that contributed messages, in first-seen order.
	Sources []string

	DateRange *DateRange

	StartTime time.Time
	EndTime   time.Time

	// MessagesRead counts records read from the source; MessagesKept counts
	// those inside the date range.
	MessagesRead int
	MessagesKept int
}

// Summary returns the summary produced by the named engine, or nil.
func (r *AnalysisResult) Summary(name string) *Summary {
	for _, s := range r.Summaries {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Analyze drains source and returns the tagged messages and summaries.
func (a *Analyzer) Analyze(ctx context.Context, source parser.RecordSource) (*AnalysisResult, error) {
	result := &AnalysisResult{
		Messages:  []tagger.TaggedMessage{},
		Summaries: make([]*Summary, 0, len(a.engines)),
		Metadata: AnalysisMetadata{
			DateRange: a.dateRange,
			StartTime: time.Now(),
		},
	}

	for _, engine := range a.engines {
		engine.Reset()
	}

	sources := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading records: %w", err)
		}
		result.Metadata.MessagesRead++

		if rec.Source != "" && !sources[rec.Source] {
			sources[rec.Source] = true
			result.Metadata.Sources = append(result.Metadata.Sources, rec.Source)
		}

		if !a.dateRange.Contains(rec.Date) {
			continue
		}

		msg := tagger.TaggedMessage{Record: *rec, Tags: a.tagger.Tag(rec.Message)}
		result.Messages = append(result.Messages, msg)
		result.Metadata.MessagesKept++

		for _, engine := range a.engines {
			if err := engine.Process(ctx, &msg); err != nil {
				return nil, fmt.Errorf("processing message with %q: %w", engine.Name(), err)
			}
		}
	}

	for _, engine := range a.engines {
		s, err := engine.Finalize(ctx)
		if err != nil {
			return nil, fmt.Errorf("finalizing %q: %w", engine.Name(), err)
		}
		result.Summaries = append(result.Summaries, s)
	}

	result.Metadata.EndTime = time.Now()
	return result, nil
}
