package analyzer

import (
	"context"

	"github.com/ccollicutt/talklog/pkg/tagger"
)

// CategoryEngine counts messages per category. Buckets follow the category
// table order, with every category present even at zero.
type CategoryEngine struct {
	order  []string
	counts map[string]int
	total  int
}

// NewCategoryEngine creates a CategoryEngine for the given category names.
func NewCategoryEngine(names []string) *CategoryEngine {
	e := &CategoryEngine{order: append([]string(nil), names...)}
	e.Reset()
	return e
}

func (e *CategoryEngine) Name() string      { return EngineCategories }
func (e *CategoryEngine) Kind() SummaryKind { return KindCategory }

func (e *CategoryEngine) Process(_ context.Context, msg *tagger.TaggedMessage) error {
	e.total++
	e.counts[msg.Category]++
	return nil
}

func (e *CategoryEngine) Finalize(_ context.Context) (*Summary, error) {
	s := &Summary{
		Name:        e.Name(),
		Kind:        e.Kind(),
		Description: "messages per category",
		Stats:       SummaryStats{MessagesProcessed: e.total, MessagesMatched: e.total},
	}
	seen := make(map[string]bool, len(e.order))
	for _, name := range e.order {
		seen[name] = true
		s.Buckets = append(s.Buckets, Bucket{Key: name, Count: e.counts[name]})
	}
	// Categories outside the table (a tagger built from other tables) go last.
	for _, key := range sortedKeys(e.counts) {
		if !seen[key] {
			s.Buckets = append(s.Buckets, Bucket{Key: key, Count: e.counts[key]})
		}
	}
	return s, nil
}

func (e *CategoryEngine) Reset() {
	e.counts = make(map[string]int)
	e.total = 0
}
