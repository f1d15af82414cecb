package storage

import (
	"os"
	"path/filepath"
	"sync"
)

// Backend is the key-value blob store the collections persist through.
// Implementations must tolerate concurrent use from a single process.
type Backend interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	Remove(key string) error
}

// FileBackend stores each key as a JSON file under a directory
type FileBackend struct {
	dir string
	mu  sync.Mutex
}

// NewFileBackend creates a file backend rooted at dir, creating it if needed
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

// Read returns the stored blob for key, or os.ErrNotExist
func (b *FileBackend) Read(key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return os.ReadFile(b.path(key))
}

// Write stores the blob for key. Writes go to a temporary file first, then
// rename, so a crash never leaves a half-written collection behind.
func (b *FileBackend) Write(key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tempFile := b.path(key) + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return err
	}

	return os.Rename(tempFile, b.path(key))
}

// Remove deletes the blob for key. Removing a missing key is not an error.
func (b *FileBackend) Remove(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := os.Remove(b.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemoryBackend keeps blobs in memory. It backs tests and environments with
// no durable storage, where all persistence degrades to the session lifetime.
type MemoryBackend struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string][]byte)}
}

// Read returns the stored blob for key, or os.ErrNotExist
func (b *MemoryBackend) Read(key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.blobs[key]
	if !ok {
		return nil, os.ErrNotExist
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write stores the blob for key
func (b *MemoryBackend) Write(key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	b.blobs[key] = stored
	return nil
}

// Remove deletes the blob for key
func (b *MemoryBackend) Remove(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.blobs, key)
	return nil
}
