package detector

import "github.com/ccollicutt/talklog/pkg/parser"

// LineFormat describes a transcript line shape the parser understands.
type LineFormat struct {
	Kind        parser.LineKind
	Name        string
	Description string
	Examples    []string
}

// KnownFormats returns the line shapes recognized by the transcript parser, in
// classification order.
func KnownFormats() []*LineFormat {
	return []*LineFormat{
		{
			Kind:        parser.KindInline,
			Name:        "Inline datetime",
			Description: "date, optional 오전/오후, time, sender and message on one line (mobile export)",
			Examples:    []string{"2024년 9월 2일 오후 4:13, 홍길동 : 안녕하세요"},
		},
		{
			Kind:        parser.KindBracket,
			Name:        "Bracketed sender and time",
			Description: "[sender] [오전/오후 time] message; the date comes from the last date line (PC export)",
			Examples:    []string{"[홍길동] [오후 4:13] 안녕하세요"},
		},
		{
			Kind:        parser.KindDateSeparator,
			Name:        "Date separator",
			Description: "dashes followed by a date; sets the date for following bracketed lines",
			Examples:    []string{"--------------- 2024년 9월 2일 월요일 ---------------"},
		},
	}
}

func formatFor(kind parser.LineKind) *LineFormat {
	for _, f := range KnownFormats() {
		if f.Kind == kind {
			return f
		}
	}
	return nil
}
