package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists cookie profiles as plain JSON files, one file per
// profile, under a single directory
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates a file-based cookie store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) path(name string) string {
	return filepath.Join(f.dir, fmt.Sprintf("cookies_%s.json", name))
}

// Store saves a profile to disk
func (f *FileStore) Store(profile *Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if profile == nil || profile.Name == "" {
		return ErrInvalidProfile
	}

	if err := os.MkdirAll(f.dir, 0700); err != nil {
		return fmt.Errorf("failed to create cookie directory: %w", err)
	}

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	// Write to a temp file first so a crash never leaves a torn profile
	target := f.path(profile.Name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize profile: %w", err)
	}

	return nil
}

// Retrieve loads a profile from disk
func (f *FileStore) Retrieve(name string) (*Profile, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if name == "" {
		return nil, ErrInvalidProfile
	}

	data, err := os.ReadFile(f.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	return &profile, nil
}

// Delete removes a profile file
func (f *FileStore) Delete(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if name == "" {
		return ErrInvalidProfile
	}

	err := os.Remove(f.path(name))
	if os.IsNotExist(err) {
		return ErrProfileNotFound
	}
	return err
}

// Exists checks if a profile file is present
func (f *FileStore) Exists(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	_, err := os.Stat(f.path(name))
	return err == nil
}
