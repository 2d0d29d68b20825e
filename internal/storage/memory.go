package storage

import (
	"context"
	"sync"
)

// MemoryStore is the development and test blob backend. It is injected the
// same way as the S3 store, so nothing downstream branches on the
// environment.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]*Object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string]*Object),
	}
}

func (m *MemoryStore) Put(ctx context.Context, blobName, contentType, originalName string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[blobName] = &Object{
		Data:         buf,
		ContentType:  contentType,
		OriginalName: originalName,
		Size:         int64(len(buf)),
	}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, blobName string) (*Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.blobs[blobName]
	if !ok {
		return nil, ErrNotFound
	}

	// Hand out a copy so callers cannot mutate the stored bytes.
	buf := make([]byte, len(obj.Data))
	copy(buf, obj.Data)
	return &Object{
		Data:         buf,
		ContentType:  obj.ContentType,
		OriginalName: obj.OriginalName,
		Size:         obj.Size,
	}, nil
}

func (m *MemoryStore) Delete(ctx context.Context, blobName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, blobName)
	return nil
}

// Len reports the number of stored blobs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

var _ BlobStore = (*MemoryStore)(nil)
