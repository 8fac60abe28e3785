package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned by a Storage when the key has never been written.
var ErrNotFound = errors.New("storage key not found")

// DefaultStorageKey is the namespace holding the serialized notification collection.
const DefaultStorageKey = "jb_notifications"

// Storage is a durable key/value store standing in for browser local storage.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Persister serializes whole notification collections to a Storage key.
// It holds no state besides its configuration and is safe for concurrent use
// when the underlying Storage is.
type Persister struct {
	storage Storage
	key     string
}

// NewPersister creates a Persister. An empty key selects DefaultStorageKey.
func NewPersister(s Storage, key string) *Persister {
	if key == "" {
		key = DefaultStorageKey
	}
	return &Persister{storage: s, key: key}
}

// Key returns the storage key used by p.
func (p *Persister) Key() string { return p.key }

// Load reads the saved collection. A missing key yields an empty collection.
func (p *Persister) Load(ctx context.Context) ([]Record, error) {
	data, err := p.storage.Load(ctx, p.key)
	if errors.Is(err, ErrNotFound) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p.key, err)
	}
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", p.key, err)
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs, nil
}

// Save replaces the stored collection with recs.
func (p *Persister) Save(ctx context.Context, recs []Record) error {
	if recs == nil {
		recs = []Record{}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", p.key, err)
	}
	if err := p.storage.Save(ctx, p.key, data); err != nil {
		return fmt.Errorf("save %s: %w", p.key, err)
	}
	return nil
}

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

// Load implements Storage.
func (m *MemoryStorage) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Save implements Storage.
func (m *MemoryStorage) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(data))
	copy(v, data)
	m.data[key] = v
	return nil
}

// FileStorage stores each key as a JSON file inside a directory.
type FileStorage struct {
	dir string
	mu  sync.Mutex
}

// NewFileStorage creates dir if needed and returns a FileStorage rooted there.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (f *FileStorage) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(f.dir, safe+".json")
}

// Load implements Storage.
func (f *FileStorage) Load(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Save implements Storage. The file is replaced atomically.
func (f *FileStorage) Save(_ context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	dst := f.path(key)
	tmp, err := os.CreateTemp(f.dir, filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
