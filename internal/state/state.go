// Package state persists named layout snapshots as JSON documents behind a
// small key/value interface. The layout core only sees Store; the daemon
// decides where the bytes live.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Reserved snapshot keys. DefaultKey holds the layout the user asked to come
// back to; LastKey is written automatically on shutdown and after actions.
const (
	DefaultKey = "default"
	LastKey    = "last"
)

// ErrNotFound reports a missing key.
var ErrNotFound = errors.New("state: key not found")

// Store is the persistence contract the layout daemon consumes.
type Store interface {
	Set(key string, value []byte) error
	Get(key string) ([]byte, error)
	Remove(key string) error
	List() ([]string, error)
}

// Snapshot captures region membership across displays at one point in time.
// Window ids are only meaningful on the session that wrote them; restore
// filters against the live window list.
type Snapshot struct {
	SavedAt  time.Time         `json:"saved_at"`
	Focused  uint32            `json:"focused,omitempty"`
	Displays []DisplaySnapshot `json:"displays"`
}

// DisplaySnapshot records one display's regions in order.
type DisplaySnapshot struct {
	Display int              `json:"display"`
	Name    string           `json:"name,omitempty"`
	Regions []RegionSnapshot `json:"regions"`
}

// RegionSnapshot records one region's window ids in layout order.
type RegionSnapshot struct {
	Name    string   `json:"name"`
	Windows []uint32 `json:"windows"`
}

// Encode renders the snapshot as indented JSON with a trailing newline.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeSnapshot parses a snapshot previously produced by Encode.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &snap, nil
}

// FileStore keeps one <key>.json file per key under a directory.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir. The directory is created on
// first write, not here.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// DefaultDir returns the conventional snapshot directory.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "zonetile", "layouts"), nil
}

func validateKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("state: key is required")
	}
	if strings.Contains(key, string(os.PathSeparator)) || key != filepath.Base(key) {
		return fmt.Errorf("state: invalid key %q", key)
	}
	if key == "." || key == ".." || strings.Contains(key, "..") {
		return fmt.Errorf("state: invalid key %q", key)
	}
	return nil
}

func (fs *FileStore) path(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(fs.dir, key+".json"), nil
}

// Set writes value under key, creating the store directory as needed.
func (fs *FileStore) Set(key string, value []byte) error {
	path, err := fs.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(fs.dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(path, value, 0644); err != nil {
		return fmt.Errorf("failed to write state %q: %w", key, err)
	}
	return nil
}

// Get returns the value stored under key, or ErrNotFound.
func (fs *FileStore) Get(key string) ([]byte, error) {
	path, err := fs.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read state %q: %w", key, err)
	}
	return data, nil
}

// Remove deletes the value stored under key. Missing keys are not an error.
func (fs *FileStore) Remove(key string) error {
	path, err := fs.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove state %q: %w", key, err)
	}
	return nil
}

// List returns all stored keys in sorted order.
func (fs *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list state: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}
