// Package ratelimit provides rate limiting for browser actions against
// the target site.
//
// Scroll cycles and filter clicks go through a limiter so a harvest never
// drives the page faster than a human plausibly would, which is the main
// trigger for anti-bot checks.
//
// Available Implementations:
//
// Token Bucket:
//   - Fixed capacity bucket that refills after a specified period
//   - Suitable for a burst of scrolls followed by quiet periods
//   - Default implementation used by the harvester
//
// Sliding Window:
//   - Tracks actions within a moving time window
//   - More accurate rate limiting over time
//
// Interface:
//
// All rate limiters implement the Limiter interface:
//   - Allow() bool - Check if an action is allowed
//   - Wait() - Block until an action is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// Token bucket: 30 scroll cycles per minute
//	limiter := ratelimit.NewTokenBucket(30, time.Minute)
//
//	if limiter.Allow() {
//	    // Proceed with scroll
//	} else {
//	    limiter.Wait()
//	}
package ratelimit
