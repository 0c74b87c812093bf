package parser

import "strings"

// DefaultExcludedSender is the open-chat bot whose announcements are not
// participant messages.
const DefaultExcludedSender = "오픈채팅봇"

// Outcome is what a classified line turned into.
type Outcome int

const (
	OutcomeUnrecognized Outcome = iota
	OutcomeRecord
	OutcomeDateSet
	OutcomeUndated
	OutcomeExcluded
	OutcomeInvalid
	OutcomeBlank
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRecord:
		return "record"
	case OutcomeDateSet:
		return "date"
	case OutcomeUndated:
		return "undated"
	case OutcomeExcluded:
		return "excluded"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeBlank:
		return "blank"
	default:
		return "unrecognized"
	}
}

// Dropped reports whether the outcome discarded a non-blank line.
func (o Outcome) Dropped() bool {
	switch o {
	case OutcomeUnrecognized, OutcomeUndated, OutcomeExcluded, OutcomeInvalid:
		return true
	default:
		return false
	}
}

// To24Hour converts a 12-hour clock value. 오후 adds 12 except at 12, 오전 12
// is midnight, and anything else (including a missing marker) is unchanged.
func To24Hour(m Meridiem, hour int) int {
	switch {
	case m == MeridiemPM && hour != 12:
		return hour + 12
	case m == MeridiemAM && hour == 12:
		return 0
	default:
		return hour
	}
}

// Builder turns classified lines into records.
type Builder struct {
	excluded map[string]struct{}
}

// NewBuilder returns a Builder that suppresses the given senders. With no
// arguments the open-chat bot is excluded.
func NewBuilder(excluded ...string) *Builder {
	if excluded == nil {
		excluded = []string{DefaultExcludedSender}
	}
	b := &Builder{excluded: make(map[string]struct{}, len(excluded))}
	for _, name := range excluded {
		if name = strings.TrimSpace(name); name != "" {
			b.excluded[name] = struct{}{}
		}
	}
	return b
}

// Excluded reports whether sender is suppressed.
func (b *Builder) Excluded(sender string) bool {
	_, ok := b.excluded[sender]
	return ok
}

// Build applies one classified line to dc and returns the record it produced,
// if any. Only OutcomeRecord returns a meaningful Record.
func (b *Builder) Build(c Classification, dc *DateContext) (Record, Outcome) {
	switch c.Kind {
	case KindDateSeparator:
		d, ok := NewDate(c.Year, c.Month, c.Day)
		if !ok {
			// A new day was announced; the previous one no longer applies.
			dc.Clear()
			return Record{}, OutcomeInvalid
		}
		dc.Set(d)
		return Record{}, OutcomeDateSet

	case KindInline:
		d, ok := NewDate(c.Year, c.Month, c.Day)
		if !ok {
			return Record{}, OutcomeInvalid
		}
		return b.finish(d, c, FormatInline)

	case KindBracket:
		d, ok := dc.Get()
		if !ok {
			return Record{}, OutcomeUndated
		}
		return b.finish(d, c, FormatBracket)

	default:
		return Record{}, OutcomeUnrecognized
	}
}

func (b *Builder) finish(d Date, c Classification, f Format) (Record, Outcome) {
	clock, ok := NewClock(To24Hour(c.Meridiem, c.Hour), c.Minute)
	if !ok {
		return Record{}, OutcomeInvalid
	}
	sender := strings.TrimSpace(c.Sender)
	if sender == "" {
		return Record{}, OutcomeInvalid
	}
	if b.Excluded(sender) {
		return Record{}, OutcomeExcluded
	}
	return Record{
		Date:    d,
		Time:    clock,
		Sender:  sender,
		Message: strings.TrimSpace(c.Message),
		Format:  f,
	}, OutcomeRecord
}
