// Package parser turns exported KakaoTalk chat transcripts into ordered message
// records.
//
// Two line layouts are recognized. The inline layout carries the full date on
// every line:
//
//	2024년 9월 2일 오후 4:13, 홍길동 : 안녕하세요
//
// The bracket layout carries only the time, and takes its date from the most
// recent date separator line:
//
//	--------------- 2024년 9월 2일 월요일 ---------------
//	[홍길동] [오전 9:05] 좋은 아침입니다
//
// Everything else (headers, join notices, continuation lines) is dropped.
package parser

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoMessages reports that a transcript produced no records: its lines were
// not in a recognized export format.
var ErrNoMessages = errors.New("no messages could be extracted")

// Date is a calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the date if year/month/day name a real calendar day.
func NewDate(year, month, day int) (Date, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return Date{}, false
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, true
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Month != o.Month:
		return sign(int(d.Month) - int(o.Month))
	default:
		return sign(d.Day - o.Day)
	}
}

// MarshalText renders YYYY-MM-DD; the zero Date is empty.
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Clock is a 24-hour time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// NewClock returns the clock if hour is 0-23 and minute is 0-59.
func NewClock(hour, minute int) (Clock, bool) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return Clock{}, false
	}
	return Clock{Hour: hour, Minute: minute}, true
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	t, err := time.Parse("15:04", string(b))
	if err != nil {
		return fmt.Errorf("invalid time %q (want HH:MM)", string(b))
	}
	*c = Clock{Hour: t.Hour(), Minute: t.Minute()}
	return nil
}

// Format identifies which line layout produced a record.
type Format string

const (
	FormatInline  Format = "inline"
	FormatBracket Format = "bracket"
)

// Record is one chat message.
type Record struct {
	// Date is always resolved; bracket lines without a known date never become records.
	Date Date `json:"date"`

	// Time is the 24-hour send time.
	Time Clock `json:"time"`

	// Sender is trimmed and never empty.
	Sender string `json:"sender"`

	// Message is the trimmed remainder of the line.
	Message string `json:"message"`

	// Format is the layout the line matched.
	Format Format `json:"format"`

	// Line is the 1-based line number in the transcript.
	Line int `json:"line"`

	// Source is the file path, when parsed from a file.
	Source string `json:"source,omitempty"`
}

// Timestamp returns the send time as a UTC time.Time, used for ordering.
func (r Record) Timestamp() time.Time {
	return time.Date(r.Date.Year, r.Date.Month, r.Date.Day, r.Time.Hour, r.Time.Minute, 0, 0, time.UTC)
}

// Stats counts what happened to each line of a transcript.
type Stats struct {
	Lines        int `json:"lines"`
	Records      int `json:"records"`
	DateLines    int `json:"date_lines"`
	Blank        int `json:"blank"`
	Unrecognized int `json:"unrecognized"`
	Undated      int `json:"undated"`
	Excluded     int `json:"excluded"`
	Invalid      int `json:"invalid"`
}

// Dropped returns the number of non-blank lines that produced neither a record
// nor a date change.
func (s Stats) Dropped() int {
	return s.Unrecognized + s.Undated + s.Excluded + s.Invalid
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Lines += o.Lines
	s.Records += o.Records
	s.DateLines += o.DateLines
	s.Blank += o.Blank
	s.Unrecognized += o.Unrecognized
	s.Undated += o.Undated
	s.Excluded += o.Excluded
	s.Invalid += o.Invalid
}

// Result is the outcome of parsing one transcript.
type Result struct {
	Records []Record
	Stats   Stats
}

// Empty reports whether no records were extracted.
func (r *Result) Empty() bool {
	return r == nil || len(r.Records) == 0
}

// Err returns ErrNoMessages for an empty result and nil otherwise.
func (r *Result) Err() error {
	if r.Empty() {
		return ErrNoMessages
	}
	return nil
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
