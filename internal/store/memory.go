package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"mediakit/internal/media"
)

// MemoryStore is an in-memory implementation of the media.RemoteStore interface.
// It is useful for testing. This implementation is safe for concurrent use.
type MemoryStore struct {
	name    string
	objects map[string]memoryObject // key -> object
	mu      sync.RWMutex
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryStore creates a new in-memory store with the given name.
func NewMemoryStore(name string) *MemoryStore {
	return &MemoryStore{
		name:    name,
		objects: make(map[string]memoryObject),
	}
}

func (m *MemoryStore) urlPrefix() string {
	return "memory://" + m.name + "/"
}

// Put stores content under key. Storing the same key again replaces it.
func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = memoryObject{data: data, contentType: contentType}
	return m.urlPrefix() + escapeKey(key), nil
}

// Open returns the object stored at url.
func (m *MemoryStore) Open(ctx context.Context, url string) (*media.RemoteObject, error) {
	escaped, ok := strings.CutPrefix(url, m.urlPrefix())
	if !ok {
		return nil, fmt.Errorf("url not served by store %q: %s", m.name, url)
	}
	key, ok := unescapeKey(escaped)
	if !ok {
		return nil, fmt.Errorf("malformed object url: %s", url)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", key)
	}
	return &media.RemoteObject{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentLength: int64(len(obj.data)),
	}, nil
}

// Keys returns the stored keys.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

// ContentType returns the content type recorded for key.
func (m *MemoryStore) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[key].contentType
}

// ValidateSetup always succeeds for the in-memory store.
func (m *MemoryStore) ValidateSetup(context.Context) error {
	return nil
}

// Compile-time check that MemoryStore implements media.RemoteStore interface
var _ media.RemoteStore = (*MemoryStore)(nil)
