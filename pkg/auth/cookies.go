package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Common errors
var (
	ErrProfileNotFound = errors.New("cookie profile not found")
	ErrInvalidProfile  = errors.New("invalid cookie profile")
)

// Cookie is one browser cookie belonging to a profile. The shape matches
// what browser contexts export, so profiles can also be populated from a
// devtools/extension dump.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// Profile groups the cookies of one platform account
type Profile struct {
	Name         string    `json:"name"`
	Cookies      []Cookie  `json:"cookies"`
	LastModified time.Time `json:"last_modified"`
}

// Store is the interface for persisting cookie profiles
type Store interface {
	// Store saves a cookie profile
	Store(profile *Profile) error

	// Retrieve gets the cookies for a specific profile
	Retrieve(name string) (*Profile, error)

	// Delete removes a profile
	Delete(name string) error

	// Exists checks if a profile is stored
	Exists(name string) bool
}

// Manager handles cookie storage with fallback mechanisms
type Manager struct {
	stores []Store
}

// NewManager creates a cookie manager with the available storage backends,
// preferring the system keychain and falling back to a plain file
func NewManager() (*Manager, error) {
	var stores []Store

	// Try keyring first (system keychain)
	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	stores = append(stores, NewFileStore(filepath.Join(configDir, "cookies")))

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over an explicit backend chain
func NewManagerWithStores(stores ...Store) *Manager {
	return &Manager{stores: stores}
}

// Store saves a profile using the first backend that accepts it
func (m *Manager) Store(profile *Profile) error {
	if profile == nil || profile.Name == "" {
		return ErrInvalidProfile
	}
	if len(profile.Cookies) == 0 {
		return errors.New("profile has no cookies")
	}

	profile.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(profile); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	return fmt.Errorf("all cookie stores failed: %w", lastErr)
}

// Retrieve gets a profile from the first backend that has it
func (m *Manager) Retrieve(name string) (*Profile, error) {
	if name == "" {
		return nil, ErrInvalidProfile
	}

	for _, store := range m.stores {
		profile, err := store.Retrieve(name)
		if err == nil {
			return profile, nil
		}
	}

	return nil, ErrProfileNotFound
}

// Delete removes a profile from every backend that has it
func (m *Manager) Delete(name string) error {
	if name == "" {
		return ErrInvalidProfile
	}

	found := false
	for _, store := range m.stores {
		if store.Exists(name) {
			found = true
			if err := store.Delete(name); err != nil {
				return err
			}
		}
	}

	if !found {
		return ErrProfileNotFound
	}
	return nil
}

// Exists checks whether any backend stores the profile
func (m *Manager) Exists(name string) bool {
	for _, store := range m.stores {
		if store.Exists(name) {
			return true
		}
	}
	return false
}

// getConfigDir returns the platform-appropriate configuration directory
func getConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			baseDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(home, "Library", "Application Support")
	default:
		baseDir = os.Getenv("XDG_CONFIG_HOME")
		if baseDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(home, ".config")
		}
	}

	configDir := filepath.Join(baseDir, "xhsharvest")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}
