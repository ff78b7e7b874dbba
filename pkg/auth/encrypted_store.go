package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000
)

// EncryptedFileStore persists all cookie profiles in one AES-GCM encrypted
// file, keyed by a caller-supplied passphrase
type EncryptedFileStore struct {
	filepath   string
	passphrase string
	mu         sync.RWMutex
}

// encryptedData is the on-disk structure of the encrypted file
type encryptedData struct {
	Salt      string             `json:"salt"`
	Encrypted string             `json:"encrypted"`
	Profiles  map[string]Profile `json:"-"` // Not serialized directly
}

// NewEncryptedFileStore creates an encrypted cookie store at filePath
func NewEncryptedFileStore(filePath, passphrase string) (*EncryptedFileStore, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase is required")
	}

	dir := filepath.Dir(filePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	return &EncryptedFileStore{
		filepath:   filePath,
		passphrase: passphrase,
	}, nil
}

// Store saves a profile into the encrypted file
func (e *EncryptedFileStore) Store(profile *Profile) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if profile == nil || profile.Name == "" {
		return ErrInvalidProfile
	}

	data, err := e.loadData()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load existing data: %w", err)
	}

	if data == nil {
		data = &encryptedData{
			Profiles: make(map[string]Profile),
		}
	}

	data.Profiles[profile.Name] = *profile

	return e.saveData(data)
}

// Retrieve gets a profile from the encrypted file
func (e *EncryptedFileStore) Retrieve(name string) (*Profile, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if name == "" {
		return nil, ErrInvalidProfile
	}

	data, err := e.loadData()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	profile, exists := data.Profiles[name]
	if !exists {
		return nil, ErrProfileNotFound
	}

	return &profile, nil
}

// Delete removes a profile from the encrypted file
func (e *EncryptedFileStore) Delete(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if name == "" {
		return ErrInvalidProfile
	}

	data, err := e.loadData()
	if err != nil {
		if os.IsNotExist(err) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to load data: %w", err)
	}

	if _, exists := data.Profiles[name]; !exists {
		return ErrProfileNotFound
	}

	delete(data.Profiles, name)

	return e.saveData(data)
}

// Exists checks if a profile is present in the encrypted file
func (e *EncryptedFileStore) Exists(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	data, err := e.loadData()
	if err != nil {
		return false
	}

	_, exists := data.Profiles[name]
	return exists
}

// loadData reads and decrypts the store file
func (e *EncryptedFileStore) loadData() (*encryptedData, error) {
	raw, err := os.ReadFile(e.filepath)
	if err != nil {
		return nil, err
	}

	var data encryptedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse store file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(data.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(data.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	plaintext, err := decrypt(ciphertext, e.passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt store: %w", err)
	}

	data.Profiles = make(map[string]Profile)
	if err := json.Unmarshal(plaintext, &data.Profiles); err != nil {
		return nil, fmt.Errorf("failed to parse decrypted profiles: %w", err)
	}

	return &data, nil
}

// saveData encrypts and writes the store file
func (e *EncryptedFileStore) saveData(data *encryptedData) error {
	plaintext, err := json.Marshal(data.Profiles)
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	ciphertext, err := encrypt(plaintext, e.passphrase, salt)
	if err != nil {
		return fmt.Errorf("failed to encrypt profiles: %w", err)
	}

	out := encryptedData{
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Encrypted: base64.StdEncoding.EncodeToString(ciphertext),
	}

	raw, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store file: %w", err)
	}

	if err := os.WriteFile(e.filepath, raw, 0600); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}

	return nil
}

// deriveKey stretches the passphrase into an AES key
func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, iterations, keySize, sha256.New)
}

func encrypt(plaintext []byte, passphrase string, salt []byte) ([]byte, error) {
	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext []byte, passphrase string, salt []byte) ([]byte, error) {
	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, payload := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, payload, nil)
}
