package harvest

import (
	"sync"

	"xhsharvest/pkg/xhs"
)

// Accumulator is an ordered, identity-keyed collection of feeds. Items
// arrive from two producers (the response listener and the state-blob parse
// path); the first occurrence of an id wins and encounter order is
// preserved across both.
//
// All methods are safe for concurrent use. Mutation is serialized under a
// single mutex so interleaved offers can never race on the seen set.
type Accumulator struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	items []*xhs.Feed
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{
		seen: make(map[string]struct{}),
	}
}

// Offer inserts a feed unless its id was already seen. It reports whether
// the feed was newly inserted. Nil feeds and feeds without an id are
// rejected; an item that failed normalization never enters the collection.
func (a *Accumulator) Offer(feed *xhs.Feed) bool {
	if feed == nil || feed.ID == "" {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, dup := a.seen[feed.ID]; dup {
		return false
	}

	a.seen[feed.ID] = struct{}{}
	a.items = append(a.items, feed)
	return true
}

// Size returns the number of distinct feeds collected so far
func (a *Accumulator) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// Items returns the collected feeds in first-seen order. The returned slice
// is a copy; later offers do not mutate it.
func (a *Accumulator) Items() []*xhs.Feed {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]*xhs.Feed, len(a.items))
	copy(out, a.items)
	return out
}

// Truncate drops trailing feeds beyond maxCount, preserving the prefix.
// It is a no-op when the collection is already within bound.
func (a *Accumulator) Truncate(maxCount int) {
	if maxCount < 0 {
		maxCount = 0
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.items) <= maxCount {
		return
	}

	for _, feed := range a.items[maxCount:] {
		delete(a.seen, feed.ID)
	}
	a.items = a.items[:maxCount]
}
