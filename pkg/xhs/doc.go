// Package xhs provides the platform-specific data layer for the harvester.
//
// This package includes:
//   - Wire models for search result entries (Feed, NoteCard and friends)
//   - A defensive normalizer that shapes raw records from either data
//     source into the canonical Feed form
//   - The filter translation table mapping human-readable filter labels to
//     the platform's internal (group, option) index pairs
//   - URL construction and search API path matching
//
// Example usage:
//
//	options, err := xhs.TranslateFilters(xhs.FilterSelection{SortBy: "最新"})
//	if err != nil {
//	    var filterErr *xhs.FilterError
//	    if errors.As(err, &filterErr) {
//	        // Surface to the caller; nothing was applied
//	    }
//	}
//
//	feed := xhs.FeedFromRaw(record)
//	if feed == nil {
//	    // Record was unusable; drop it and continue with the batch
//	}
package xhs
