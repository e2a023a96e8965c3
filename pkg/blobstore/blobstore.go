// Package blobstore is the opaque media store. Entities persist only the
// generated object key; resolving a key to a URL is the store's concern.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BlobStore stores uploaded media under generated keys.
type BlobStore interface {
	// Put stores the content and returns the generated key.
	Put(ctx context.Context, key string, contentType string, body io.Reader) error
	// URL resolves a key to a client-fetchable URL. Empty key yields "".
	URL(key string) string
}

// MemStore keeps objects in memory. Used in development and tests when no
// bucket is configured.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemStore creates an empty MemStore
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

func (s *MemStore) Put(_ context.Context, key string, _ string, body io.Reader) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	return nil
}

func (s *MemStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return "/media/" + key
}

// ProfileKey generates an object key for a user's avatar upload.
func ProfileKey(userID uint, filename string) string {
	return objectKey("profiles", userID, filename)
}

// PostKey generates an object key for a post image upload.
func PostKey(userID uint, filename string) string {
	return objectKey("posts", userID, filename)
}

func objectKey(prefix string, userID uint, filename string) string {
	ext := filepath.Ext(filename)
	ts := time.Now().UTC().Format("20060102150405")
	return fmt.Sprintf("%s/%d_%s_%s%s", prefix, userID, ts, uuid.New().String(), ext)
}
