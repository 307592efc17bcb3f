package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dvcrn/ledspeed/internal/env"
	"github.com/dvcrn/ledspeed/internal/speed"
)

// Store persists the applied settings across restarts.
type Store interface {
	// Load returns the saved settings. ok is false when nothing was saved yet.
	Load(ctx context.Context) (s speed.Settings, ok bool, err error)

	// Save replaces the saved settings.
	Save(ctx context.Context, s speed.Settings) error

	// Name identifies the store in logs.
	Name() string
}

// SharedStore is implemented by stores that other processes write to as
// well. A Controller backed by one reloads before every read.
type SharedStore interface {
	Store
	Shared() bool
}

func isShared(s Store) bool {
	ss, ok := s.(SharedStore)
	return ok && ss.Shared()
}

// MemoryStore keeps settings for the lifetime of the process.
type MemoryStore struct {
	mu    sync.Mutex
	saved *speed.Settings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) (speed.Settings, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return speed.Settings{}, false, nil
	}
	return *m.saved, true, nil
}

func (m *MemoryStore) Save(_ context.Context, s speed.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = &s
	return nil
}

func (m *MemoryStore) Name() string { return "MemoryStore" }

// FileStore keeps settings in a JSON file.
type FileStore struct {
	path string
}

// NewFileStore uses LEDSPEED_STATE_PATH, or ~/.ledspeed/state.json when unset.
func NewFileStore() (*FileStore, error) {
	if path, ok := env.Get("LEDSPEED_STATE_PATH"); ok {
		return &FileStore{path: path}, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return &FileStore{path: filepath.Join(homeDir, ".ledspeed", "state.json")}, nil
}

// NewFileStoreAt uses an explicit path.
func NewFileStoreAt(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(context.Context) (speed.Settings, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return speed.Settings{}, false, nil
	}
	if err != nil {
		return speed.Settings{}, false, fmt.Errorf("failed to read state file: %w", err)
	}

	var s speed.Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return speed.Settings{}, false, fmt.Errorf("failed to parse state file %s: %w", f.path, err)
	}
	return s, true, nil
}

// Save writes through a temporary file so a crash never leaves a torn file.
func (f *FileStore) Save(_ context.Context, s speed.Settings) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to write settings to %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStore) Name() string {
	return fmt.Sprintf("FileStore(%s)", f.path)
}
