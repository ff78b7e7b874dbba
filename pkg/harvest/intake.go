package harvest

import (
	"sync"

	"xhsharvest/pkg/logger"
	"xhsharvest/pkg/xhs"
)

// intakeBuffer bounds how many raw records can be queued ahead of the
// consumer. A search API page carries ~20 items, so a couple of pages of
// headroom keeps the listener callback from ever blocking the page's event
// loop in practice.
const intakeBuffer = 64

// intake funnels raw records from both producers (the response listener and
// the state-blob parse path) into one channel consumed by a single
// goroutine, which normalizes each record and offers it to the accumulator.
// Keeping one mutation path means producer interleaving decides order and
// nothing else.
type intake struct {
	records chan map[string]interface{}
	acc     *Accumulator
	log     logger.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// newIntake starts the consumer goroutine. Call close to flush and stop it.
func newIntake(acc *Accumulator, log logger.Logger) *intake {
	in := &intake{
		records: make(chan map[string]interface{}, intakeBuffer),
		acc:     acc,
		log:     log,
		done:    make(chan struct{}),
	}
	go in.consume()
	return in
}

// offer queues one raw record for normalization. Safe to call from any
// goroutine; records offered after close are dropped.
func (in *intake) offer(raw map[string]interface{}) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if in.closed {
		// The harvest is finalizing; a straggler response loses its records
		return
	}
	in.records <- raw
}

// offerBatch queues a batch of raw records in order
func (in *intake) offerBatch(batch []map[string]interface{}) {
	for _, raw := range batch {
		in.offer(raw)
	}
}

// close stops accepting records and blocks until every queued record has
// been consumed.
func (in *intake) close() {
	in.mu.Lock()
	if !in.closed {
		in.closed = true
		close(in.records)
	}
	in.mu.Unlock()
	<-in.done
}

// consume is the single mutation path into the accumulator
func (in *intake) consume() {
	defer close(in.done)

	for raw := range in.records {
		feed := xhs.FeedFromRaw(raw)
		if feed == nil {
			// Structurally unusable record; drop it and keep going
			in.log.Debug("Dropped unusable record")
			continue
		}
		if in.acc.Offer(feed) {
			in.log.WithField("id", feed.ID).Debug("Collected feed")
		}
	}
}
