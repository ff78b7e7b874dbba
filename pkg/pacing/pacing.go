// Package pacing spaces browser actions out so a harvest reads like a
// person browsing. Delays between scroll cycles are randomized within a
// configured band, and page mutations are given time to settle before the
// next read.
package pacing

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"

	"xhsharvest/pkg/browser"
	"xhsharvest/pkg/errors"
	"xhsharvest/pkg/retry"
)

// Delayer produces randomized delays within a [min, max] band.
type Delayer struct {
	min           time.Duration
	max           time.Duration
	deterministic bool
}

// NewDelayer creates a delayer over the given band. Min and max are
// normalized so a misconfigured band never blocks a harvest.
func NewDelayer(min, max time.Duration) *Delayer {
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	return &Delayer{min: min, max: max}
}

// NewDeterministicDelayer creates a delayer whose output is a pure function
// of the seed, for reproducible tests.
func NewDeterministicDelayer(min, max time.Duration) *Delayer {
	d := NewDelayer(min, max)
	d.deterministic = true
	return d
}

// Delay returns the next delay for the given seed. A deterministic delayer
// maps equal seeds to equal delays; the production delayer mixes in entropy
// so repeated scroll cycles never pause for the same interval.
func (d *Delayer) Delay(seed string) time.Duration {
	span := d.max - d.min
	if span <= 0 {
		return d.min
	}

	h := fnv.New64a()
	h.Write([]byte(seed))
	source := int64(h.Sum64())
	if !d.deterministic {
		source ^= time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(source))
	return d.min + time.Duration(rng.Int63n(int64(span)))
}

// Sleep blocks for the seed's delay or until the context is cancelled.
func (d *Delayer) Sleep(ctx context.Context, seed string) error {
	return retry.Wait(ctx, d.Delay(seed))
}

// stabilityPollInterval is how often WaitForStable re-reads the page height.
const stabilityPollInterval = 500 * time.Millisecond

// stableReadings is how many consecutive unchanged heights count as settled.
const stableReadings = 2

// WaitForStable blocks until the page's scroll height stops growing, bounded
// by timeout. It is called after each scroll so lazily-loaded cards finish
// rendering before the next state read.
func WaitForStable(ctx context.Context, page browser.Page, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	var lastHeight float64
	unchanged := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if time.Now().After(deadline) {
			return errors.Newf(errors.ErrorTypeTimeout, "page did not settle within %s", timeout)
		}

		value, err := page.Evaluate("document.body.scrollHeight")
		if err != nil {
			return errors.Newf(errors.ErrorTypeTimeout, "reading scroll height: %v", err)
		}

		height, ok := asFloat(value)
		if ok && height == lastHeight {
			unchanged++
			if unchanged >= stableReadings {
				return nil
			}
		} else {
			unchanged = 0
			lastHeight = height
		}

		if err := retry.Wait(ctx, stabilityPollInterval); err != nil {
			return err
		}
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
