package parser

import (
	"regexp"
	"strconv"
)

// LineKind is the classification of one transcript line.
type LineKind int

const (
	KindUnrecognized LineKind = iota
	KindInline
	KindBracket
	KindDateSeparator
)

func (k LineKind) String() string {
	switch k {
	case KindInline:
		return "inline"
	case KindBracket:
		return "bracket"
	case KindDateSeparator:
		return "date"
	default:
		return "unrecognized"
	}
}

// Meridiem is the 오전/오후 marker of a 12-hour clock value.
type Meridiem int

const (
	MeridiemNone Meridiem = iota
	MeridiemAM
	MeridiemPM
)

const (
	markerAM = "오전"
	markerPM = "오후"
)

func parseMeridiem(s string) Meridiem {
	switch s {
	case markerAM:
		return MeridiemAM
	case markerPM:
		return MeridiemPM
	default:
		return MeridiemNone
	}
}

// Classification holds the fields captured from a line. Numeric fields are
// raw captures and have not been range-checked.
type Classification struct {
	Kind LineKind

	Year, Month, Day int
	Meridiem         Meridiem
	Hour, Minute     int

	// Sender and Message are untrimmed.
	Sender  string
	Message string
}

var (
	inlinePattern        = regexp.MustCompile(`^(\d{4})년 (\d{1,2})월 (\d{1,2})일 (?:(오전|오후) | )?(\d{1,2}):(\d{2}), (.+?) : (.+)`)
	bracketPattern       = regexp.MustCompile(`^\[(.*?)\] \[(오전|오후) (\d{1,2}):(\d{2})\] (.+)`)
	dateSeparatorPattern = regexp.MustCompile(`^-+ (\d{4})년 (\d{1,2})월 (\d{1,2})일`)
)

type lineRule struct {
	kind    LineKind
	pattern *regexp.Regexp
	extract func(m []string) Classification
}

// Rules are tried in order and the first match wins.
var defaultRules = []lineRule{
	{kind: KindInline, pattern: inlinePattern, extract: extractInline},
	{kind: KindBracket, pattern: bracketPattern, extract: extractBracket},
	{kind: KindDateSeparator, pattern: dateSeparatorPattern, extract: extractDateSeparator},
}

// Classifier assigns each line exactly one LineKind.
type Classifier struct {
	rules []lineRule
}

// NewClassifier returns the transcript line classifier.
func NewClassifier() *Classifier {
	return &Classifier{rules: defaultRules}
}

// Classify returns the classification of line. It never fails; lines that match
// no rule are KindUnrecognized.
func (c *Classifier) Classify(line string) Classification {
	for _, r := range c.rules {
		m := r.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		cl := r.extract(m)
		cl.Kind = r.kind
		return cl
	}
	return Classification{Kind: KindUnrecognized}
}

func extractInline(m []string) Classification {
	return Classification{
		Year:     atoi(m[1]),
		Month:    atoi(m[2]),
		Day:      atoi(m[3]),
		Meridiem: parseMeridiem(m[4]),
		Hour:     atoi(m[5]),
		Minute:   atoi(m[6]),
		Sender:   m[7],
		Message:  m[8],
	}
}

func extractBracket(m []string) Classification {
	return Classification{
		Sender:   m[1],
		Meridiem: parseMeridiem(m[2]),
		Hour:     atoi(m[3]),
		Minute:   atoi(m[4]),
		Message:  m[5],
	}
}

func extractDateSeparator(m []string) Classification {
	return Classification{
		Year:  atoi(m[1]),
		Month: atoi(m[2]),
		Day:   atoi(m[3]),
	}
}

// atoi converts a \d capture; RE2's \d is ASCII-only and the captures are
// bounded in length, so conversion cannot fail.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
