// Package harvest implements the search harvesting pipeline.
//
// One harvest drives a single browser page: navigate to the search result
// page, optionally apply filters through the on-page control panel, then
// collect feed items from two independent sources running concurrently —
// a network listener intercepting the platform's internal search API, and
// a one-shot parse of the state blob the page embeds for its first screen.
//
// Both sources funnel raw records through one intake channel into a
// deduplicating accumulator, so encounter order is deterministic for a
// given interleaving and no id appears twice. Scroll cycles trigger the
// platform's own infinite-scroll fetches until the target count is met,
// the scroll cap is hit, or several consecutive cycles add nothing.
//
// A harvest degrades rather than fails: every step short of filter
// validation absorbs its errors into the Result's outcome tags and the
// caller always gets whatever was collected.
package harvest
