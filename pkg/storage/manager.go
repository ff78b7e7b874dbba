package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// timestampLayout names artifact files down to the second, matching the
// session they were captured in.
const timestampLayout = "20060102_150405"

// Manager writes harvest artifacts (state snapshots and feed dumps) to the
// output directory. Every write goes through a temp file and an atomic
// rename so a crashed harvest never leaves a truncated artifact behind.
type Manager struct {
	outputDir string
	now       func() time.Time
	mu        sync.Mutex
}

// NewManager creates a new storage manager
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		outputDir: outputDir,
		now:       time.Now,
	}, nil
}

// SaveInitialState dumps the page state blob captured after navigation.
func (m *Manager) SaveInitialState(state interface{}) (string, error) {
	return m.saveJSON("initial_state", state)
}

// SaveRawFeeds dumps the raw feed records before normalization.
func (m *Manager) SaveRawFeeds(feeds interface{}) (string, error) {
	return m.saveJSON("feeds_raw", feeds)
}

// SaveParsedFeeds dumps the normalized content items.
func (m *Manager) SaveParsedFeeds(items interface{}) (string, error) {
	return m.saveJSON("feeds_parsed", items)
}

// saveJSON marshals v and writes it as <prefix>_<timestamp>.json, returning
// the path it wrote.
func (m *Manager) saveJSON(prefix string, v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s artifact: %w", prefix, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	filename := filepath.Join(m.outputDir,
		fmt.Sprintf("%s_%s.json", prefix, m.now().Format(timestampLayout)))

	tempFile := filename + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile) // Clean up temp file
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return filename, nil
}
