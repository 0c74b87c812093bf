package analyzer

import (
	"context"

	"github.com/ccollicutt/talklog/pkg/tagger"
)

// Engine accumulates one summary over a stream of tagged messages.
type Engine interface {
	// Name returns the engine name used for filtering and reporting.
	Name() string

	Kind() SummaryKind

	// Process handles a single message, updating internal state.
	Process(ctx context.Context, msg *tagger.TaggedMessage) error

	// Finalize returns the summary. Called after all messages were processed.
	Finalize(ctx context.Context) (*Summary, error)

	// Reset clears internal state for reuse.
	Reset()
}
