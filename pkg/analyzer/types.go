// Package analyzer summarizes tagged chat messages: counts per category,
// sender and day, and the list of complaint messages.
package analyzer

import "github.com/ccollicutt/talklog/pkg/tagger"

// SummaryKind enumerates the summaries an engine can produce.
type SummaryKind string

const (
	KindCategory  SummaryKind = "category"
	KindSender    SummaryKind = "sender"
	KindComplaint SummaryKind = "complaint"
	KindDaily     SummaryKind = "daily"
)

// Engine names accepted by WithEngines.
const (
	EngineCategories = "categories"
	EngineSenders    = "senders"
	EngineComplaints = "complaints"
	EngineDaily      = "daily"
)

// Bucket is one counted key.
type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Summary is the output of one engine.
type Summary struct {
	Name        string      `json:"name"`
	Kind        SummaryKind `json:"kind"`
	Description string      `json:"description,omitempty"`

	// Buckets holds counts, in an order defined by the engine.
	Buckets []Bucket `json:"buckets,omitempty"`

	// Messages holds selected messages for list-style summaries.
	Messages []tagger.TaggedMessage `json:"messages,omitempty"`

	Stats SummaryStats `json:"stats"`
}

// SummaryStats contains per-engine counters.
type SummaryStats struct {
	MessagesProcessed int `json:"messages_processed"`
	MessagesMatched   int `json:"messages_matched"`
}

// Count returns the count for key, or 0.
func (s *Summary) Count(key string) int {
	for _, b := range s.Buckets {
		if b.Key == key {
			return b.Count
		}
	}
	return 0
}
