package parser

import (
	"context"
	"fmt"
	"io"

	"github.com/ccollicutt/talklog/pkg/textenc"
)

// RecordSource iterates over records.
// Implementations are for sequential use, not concurrent.
type RecordSource interface {
	// Next returns the next record, or io.EOF when the source is exhausted.
	Next(ctx context.Context) (*Record, error)

	// Close releases any resources held by the source.
	Close() error
}

// FileResult is the parse outcome for one transcript file.
type FileResult struct {
	Path     string
	Encoding string
	*Result
}

// ParseFile decodes path with the named encoding ("auto" to detect) and parses it.
// Every record is stamped with path as its Source.
func (p *Parser) ParseFile(path, encoding string) (*FileResult, error) {
	text, used, err := textenc.DecodeFile(path, encoding)
	if err != nil {
		return nil, fmt.Errorf("loading transcript: %w", err)
	}
	res := p.Parse(text)
	for i := range res.Records {
		res.Records[i].Source = path
	}
	return &FileResult{Path: path, Encoding: used, Result: res}, nil
}

// FileSource reads transcripts one after another, in the order given.
type FileSource struct {
	files    []string
	parser   *Parser
	encoding string

	current   []Record
	pos       int
	fileIndex int
	parsed    []*FileResult
}

// NewFileSource creates a RecordSource over files. encoding is passed to
// textenc; use textenc.Auto to detect per file.
func NewFileSource(files []string, p *Parser, encoding string) *FileSource {
	if p == nil {
		p = New()
	}
	return &FileSource{
		files:     files,
		parser:    p,
		encoding:  encoding,
		fileIndex: -1,
	}
}

// Next returns the next record. Files that yield no records contribute
// nothing; a file that cannot be read is an error.
func (s *FileSource) Next(ctx context.Context) (*Record, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.pos < len(s.current) {
			rec := &s.current[s.pos]
			s.pos++
			return rec, nil
		}

		if err := s.openNextFile(); err != nil {
			return nil, err
		}
	}
}

// Files returns the per-file results read so far.
func (s *FileSource) Files() []*FileResult {
	return s.parsed
}

// Stats returns line statistics aggregated over the files read so far.
func (s *FileSource) Stats() Stats {
	var total Stats
	for _, f := range s.parsed {
		total.Add(f.Stats)
	}
	return total
}

// Close releases buffered records.
func (s *FileSource) Close() error {
	s.current = nil
	s.pos = 0
	return nil
}

func (s *FileSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		s.current = nil
		return io.EOF
	}

	fr, err := s.parser.ParseFile(s.files[s.fileIndex], s.encoding)
	if err != nil {
		return err
	}
	s.parsed = append(s.parsed, fr)
	s.current = fr.Records
	s.pos = 0
	return nil
}

// SliceSource serves records that are already in memory.
type SliceSource struct {
	records []Record
	pos     int
}

// NewSliceSource creates a RecordSource over records, in order.
func NewSliceSource(records []Record) *SliceSource {
	return &SliceSource{records: records}
}

func (s *SliceSource) Next(ctx context.Context) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := &s.records[s.pos]
	s.pos++
	return rec, nil
}

func (s *SliceSource) Close() error { return nil }
