package analyzer

import (
	"context"
	"sort"

	"github.com/ccollicutt/talklog/pkg/tagger"
)

// SenderEngine counts messages per sender, most active first.
type SenderEngine struct {
	counts map[string]int
	total  int
}

func NewSenderEngine() *SenderEngine {
	e := &SenderEngine{}
	e.Reset()
	return e
}

func (e *SenderEngine) Name() string      { return EngineSenders }
func (e *SenderEngine) Kind() SummaryKind { return KindSender }

func (e *SenderEngine) Process(_ context.Context, msg *tagger.TaggedMessage) error {
	e.total++
	e.counts[msg.Sender]++
	return nil
}

func (e *SenderEngine) Finalize(_ context.Context) (*Summary, error) {
	buckets := make([]Bucket, 0, len(e.counts))
	for k, v := range e.counts {
		buckets = append(buckets, Bucket{Key: k, Count: v})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
	return &Summary{
		Name:        e.Name(),
		Kind:        e.Kind(),
		Description: "messages per sender",
		Buckets:     buckets,
		Stats:       SummaryStats{MessagesProcessed: e.total, MessagesMatched: e.total},
	}, nil
}

func (e *SenderEngine) Reset() {
	e.counts = make(map[string]int)
	e.total = 0
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
