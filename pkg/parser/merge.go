package parser

import (
	"container/heap"
	"context"
	"errors"
	"io"
)

// MergedSource combines several RecordSources into one stream ordered by
// timestamp, oldest first. Records with equal timestamps keep the order of
// the sources they came from, and each source's own order is preserved.
type MergedSource struct {
	sources []RecordSource
	heap    *recordHeap
	started bool
}

// NewMergedSource creates a RecordSource that merges sources by timestamp.
func NewMergedSource(sources ...RecordSource) *MergedSource {
	return &MergedSource{
		sources: sources,
		heap:    &recordHeap{},
	}
}

// Next returns the oldest pending record across all sources.
func (m *MergedSource) Next(ctx context.Context) (*Record, error) {
	if !m.started {
		if err := m.initHeap(ctx); err != nil {
			return nil, err
		}
		m.started = true
	}

	if m.heap.Len() == 0 {
		return nil, io.EOF
	}

	item := heap.Pop(m.heap).(*heapItem)

	next, err := m.sources[item.sourceIdx].Next(ctx)
	switch {
	case err == nil:
		heap.Push(m.heap, &heapItem{record: next, sourceIdx: item.sourceIdx})
	case !errors.Is(err, io.EOF):
		return nil, err
	}

	return item.record, nil
}

func (m *MergedSource) initHeap(ctx context.Context) error {
	heap.Init(m.heap)
	for i, src := range m.sources {
		rec, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			continue
		}
		if err != nil {
			return err
		}
		heap.Push(m.heap, &heapItem{record: rec, sourceIdx: i})
	}
	return nil
}

// Close closes every source and returns the first error.
func (m *MergedSource) Close() error {
	var firstErr error
	for _, src := range m.sources {
		if err := src.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type heapItem struct {
	record    *Record
	sourceIdx int
}

type recordHeap []*heapItem

func (h recordHeap) Len() int { return len(h) }

func (h recordHeap) Less(i, j int) bool {
	ti, tj := h[i].record.Timestamp(), h[j].record.Timestamp()
	if !ti.Equal(tj) {
		return ti.Before(tj)
	}
	return h[i].sourceIdx < h[j].sourceIdx
}

func (h recordHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *recordHeap) Push(x interface{}) {
	*h = append(*h, x.(*heapItem))
}

func (h *recordHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ConcatSource drains sources one after another.
type ConcatSource struct {
	sources []RecordSource
	idx     int
}

// NewConcatSource creates a RecordSource that yields each source in turn.
func NewConcatSource(sources ...RecordSource) *ConcatSource {
	return &ConcatSource{sources: sources}
}

func (c *ConcatSource) Next(ctx context.Context) (*Record, error) {
	for c.idx < len(c.sources) {
		rec, err := c.sources[c.idx].Next(ctx)
		if errors.Is(err, io.EOF) {
			c.idx++
			continue
		}
		return rec, err
	}
	return nil, io.EOF
}

func (c *ConcatSource) Close() error {
	var firstErr error
	for _, src := range c.sources {
		if err := src.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
