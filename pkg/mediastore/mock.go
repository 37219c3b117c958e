package mediastore

import (
	"io"
	"sync"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store for tests and for running without
// S3 credentials. It drains the payload and fabricates a stable URL
// without keeping the bytes.
type MockStore struct {
	// FailWith, when set, makes every Upload fail with that error.
	FailWith error

	mu      sync.Mutex
	uploads []string
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// Upload records the upload and returns a fabricated URL.
func (m *MockStore) Upload(r io.Reader, contentType, namespace string) (string, error) {
	if m.FailWith != nil {
		return "", m.FailWith
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}

	url := "https://media.invalid/" + namespace + "/" + uuid.New().String() + extForContentType(contentType)

	m.mu.Lock()
	m.uploads = append(m.uploads, url)
	m.mu.Unlock()
	return url, nil
}

// Uploads returns the URLs handed out so far.
func (m *MockStore) Uploads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.uploads...)
}
