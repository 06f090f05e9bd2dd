package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/printatelier/storefront/pkg/utils"
)

// Store persists binary assets and hands back long-lived public URLs.
// Writes to the same path overwrite, so retried jobs are idempotent.
type Store interface {
	Put(ctx context.Context, path string, data []byte) (publicURL string, err error)
	Get(ctx context.Context, path string) ([]byte, error)
}

// UpscaledImagePath derives the deterministic blob path for a product's
// upscaled rendition. The same product always maps to the same path.
func UpscaledImagePath(productID string) string {
	return "upscaled/" + utils.SafeSegment(productID) + ".png"
}

// FSStore implements Store on the local filesystem, served publicly by the
// HTTP server under the configured base URL.
type FSStore struct {
	dir     string
	baseURL string
}

// NewFSStore creates a filesystem-backed store rooted at dir
func NewFSStore(dir, publicBaseURL string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &FSStore{dir: dir, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Dir returns the root directory assets are written to
func (s *FSStore) Dir() string { return s.dir }

func (s *FSStore) fullPath(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	if clean == "/" {
		return "", fmt.Errorf("empty blob path")
	}
	return filepath.Join(s.dir, clean), nil
}

// Put writes data to path, creating parent directories as needed
func (s *FSStore) Put(ctx context.Context, path string, data []byte) (string, error) {
	full, err := s.fullPath(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create blob parent dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob %s: %w", path, err)
	}
	return s.baseURL + "/" + strings.TrimLeft(path, "/"), nil
}

// Get reads data from path
func (s *FSStore) Get(ctx context.Context, path string) ([]byte, error) {
	full, err := s.fullPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", path, err)
	}
	return data, nil
}

// MemoryStore implements Store in memory for tests
type MemoryStore struct {
	mu      sync.RWMutex
	blobs   map[string][]byte
	baseURL string
}

// NewMemoryStore creates an in-memory blob store
func NewMemoryStore(publicBaseURL string) *MemoryStore {
	return &MemoryStore{
		blobs:   make(map[string][]byte),
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Put stores data under path
func (s *MemoryStore) Put(ctx context.Context, path string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[path] = cp
	return s.baseURL + "/" + strings.TrimLeft(path, "/"), nil
}

// Get retrieves data stored under path
func (s *MemoryStore) Get(ctx context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.blobs[path]
	if !exists {
		return nil, fmt.Errorf("blob %s not found", path)
	}
	return data, nil
}
