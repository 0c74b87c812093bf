package parser

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// LineTrace describes what happened to a single line.
type LineTrace struct {
	Line    int
	Text    string
	Kind    LineKind
	Outcome Outcome
}

// Parser converts transcript text into records. A Parser holds no per-parse
// state and is safe for concurrent use.
type Parser struct {
	classifier *Classifier
	builder    *Builder
	trace      func(LineTrace)
}

// Option configures a Parser.
type Option func(*Parser)

// WithExcludedSenders replaces the default excluded sender list. An empty
// list excludes nobody.
func WithExcludedSenders(names ...string) Option {
	return func(p *Parser) {
		if names == nil {
			names = []string{}
		}
		p.builder = NewBuilder(names...)
	}
}

// WithTrace calls fn for every line, in order. fn must be safe for concurrent
// use if the Parser is shared.
func WithTrace(fn func(LineTrace)) Option {
	return func(p *Parser) {
		p.trace = fn
	}
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		classifier: NewClassifier(),
		builder:    NewBuilder(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts records from text in line order. It never fails: lines that
// cannot be used are counted in Stats and skipped. An empty Records slice
// means the text was not a recognized transcript.
func (p *Parser) Parse(text string) *Result {
	res := &Result{Records: []Record{}}
	var dc DateContext

	for i, line := range SplitLines(text) {
		num := i + 1
		res.Stats.Lines++

		var (
			kind    = KindUnrecognized
			rec     Record
			outcome Outcome
		)
		if strings.TrimSpace(line) == "" {
			outcome = OutcomeBlank
		} else {
			c := p.classifier.Classify(line)
			kind = c.Kind
			rec, outcome = p.builder.Build(c, &dc)
		}

		switch outcome {
		case OutcomeRecord:
			rec.Line = num
			res.Records = append(res.Records, rec)
			res.Stats.Records++
		case OutcomeDateSet:
			res.Stats.DateLines++
		case OutcomeBlank:
			res.Stats.Blank++
		case OutcomeUndated:
			res.Stats.Undated++
		case OutcomeExcluded:
			res.Stats.Excluded++
		case OutcomeInvalid:
			res.Stats.Invalid++
		default:
			res.Stats.Unrecognized++
		}

		if p.trace != nil {
			p.trace(LineTrace{Line: num, Text: line, Kind: kind, Outcome: outcome})
		}
	}

	return res
}

// ParseReader reads r fully and parses it. Only read errors are returned.
func (p *Parser) ParseReader(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return p.Parse(string(data)), nil
}

// SplitLines splits text on every Unicode line boundary:
// \n, \r\n, \r, \v, \f, \x1c-\x1e, U+0085, U+2028 and U+2029. A trailing line
// break does not produce an extra empty line.
func SplitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch r {
		case '\n', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			lines = append(lines, text[start:i])
			i += size
			start = i
			continue
		case '\r':
			lines = append(lines, text[start:i])
			i += size
			if i < len(text) && text[i] == '\n' {
				i++
			}
			start = i
			continue
		}
		i += size
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
