package analyzer

import (
	"context"
	"sort"

	"github.com/ccollicutt/talklog/pkg/parser"
	"github.com/ccollicutt/talklog/pkg/tagger"
)

// DailyEngine counts messages per calendar date, oldest first.
type DailyEngine struct {
	counts map[parser.Date]int
	total  int
}

func NewDailyEngine() *DailyEngine {
	e := &DailyEngine{}
	e.Reset()
	return e
}

func (e *DailyEngine) Name() string      { return EngineDaily }
func (e *DailyEngine) Kind() SummaryKind { return KindDaily }

func (e *DailyEngine) Process(_ context.Context, msg *tagger.TaggedMessage) error {
	e.total++
	e.counts[msg.Date]++
	return nil
}

func (e *DailyEngine) Finalize(_ context.Context) (*Summary, error) {
	dates := make([]parser.Date, 0, len(e.counts))
	for d := range e.counts {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Compare(dates[j]) < 0 })

	buckets := make([]Bucket, len(dates))
	for i, d := range dates {
		buckets[i] = Bucket{Key: d.String(), Count: e.counts[d]}
	}
	return &Summary{
		Name:        e.Name(),
		Kind:        e.Kind(),
		Description: "messages per day",
		Buckets:     buckets,
		Stats:       SummaryStats{MessagesProcessed: e.total, MessagesMatched: e.total},
	}, nil
}

func (e *DailyEngine) Reset() {
	e.counts = make(map[parser.Date]int)
	e.total = 0
}
