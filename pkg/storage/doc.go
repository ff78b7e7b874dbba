// Package storage writes harvest artifacts to disk.
//
// A harvest can optionally dump three artifacts per session: the page state
// blob captured after navigation, the raw feed records before normalization,
// and the normalized content items. Each is a timestamped JSON file in the
// output directory, so successive sessions never overwrite each other.
//
// Features:
//   - Atomic file writes using temporary files and rename
//   - Thread-safe operations
//   - Timestamped filenames (one set of artifacts per session)
//
// Artifact writes are best-effort: the harvester logs a failed write and
// keeps going, because a missing debug dump should never cost a harvest its
// results.
//
// Usage:
//
//	manager, err := storage.NewManager("output_directory")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	path, err := manager.SaveParsedFeeds(items)
//	if err != nil {
//	    log.Printf("Failed to save artifact: %v", err)
//	}
package storage
