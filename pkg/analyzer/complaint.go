package analyzer

import (
	"context"

	"github.com/ccollicutt/talklog/pkg/tagger"
)

// ComplaintEngine collects messages flagged as complaints, in input order.
type ComplaintEngine struct {
	messages []tagger.TaggedMessage
	total    int
}

func NewComplaintEngine() *ComplaintEngine {
	return &ComplaintEngine{}
}

func (e *ComplaintEngine) Name() string      { return EngineComplaints }
func (e *ComplaintEngine) Kind() SummaryKind { return KindComplaint }

func (e *ComplaintEngine) Process(_ context.Context, msg *tagger.TaggedMessage) error {
	e.total++
	if msg.Complaint {
		e.messages = append(e.messages, *msg)
	}
	return nil
}

func (e *ComplaintEngine) Finalize(_ context.Context) (*Summary, error) {
	return &Summary{
		Name:        e.Name(),
		Kind:        e.Kind(),
		Description: "messages containing complaint keywords",
		Buckets:     []Bucket{{Key: "complaints", Count: len(e.messages)}},
		Messages:    e.messages,
		Stats:       SummaryStats{MessagesProcessed: e.total, MessagesMatched: len(e.messages)},
	}, nil
}

func (e *ComplaintEngine) Reset() {
	e.messages = nil
	e.total = 0
}
