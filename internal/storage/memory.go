package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Object is a stored file.
type Object struct {
	Path        string
	ContentType string
	Data        []byte
}

type grant struct {
	path    string
	expires time.Time
}

// MemoryStore keeps objects in process. Signed links have the form
// {baseURL}/{token}; every call mints a new token.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string]Object
	grants  map[string]grant
	now     func() time.Time

	// FailUpload makes the next uploads fail, for tests.
	FailUpload error
}

// NewMemoryStore creates a store whose links start with baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]Object),
		grants:  make(map[string]grant),
		now:     time.Now,
	}
}

// Upload reads the whole body into memory.
func (s *MemoryStore) Upload(_ context.Context, path string, reader io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read upload %q: %w", path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpload != nil {
		return s.FailUpload
	}
	s.objects[path] = Object{Path: path, ContentType: contentType, Data: data}
	return nil
}

// SignedURL mints a token valid for ttl. Expired tokens are dropped first.
func (s *MemoryStore) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[path]; !ok {
		return "", ErrObjectNotFound
	}
	now := s.now()
	for token, g := range s.grants {
		if now.After(g.expires) {
			delete(s.grants, token)
		}
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	s.grants[token] = grant{path: path, expires: now.Add(ttl)}
	return s.baseURL + "/" + token, nil
}

// Delete removes path and any links to it.
func (s *MemoryStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	for token, g := range s.grants {
		if g.path == path {
			delete(s.grants, token)
		}
	}
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Resolve returns the object behind a signed link while it is valid.
func (s *MemoryStore) Resolve(link string) (Object, bool) {
	token := link
	if i := strings.LastIndex(link, "/"); i >= 0 {
		token = link[i+1:]
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.grants[token]
	if !ok {
		return Object{}, false
	}
	if s.now().After(g.expires) {
		delete(s.grants, token)
		return Object{}, false
	}
	obj, ok := s.objects[g.path]
	if !ok {
		return Object{}, false
	}
	obj.Data = bytes.Clone(obj.Data)
	return obj, true
}

// Has reports whether path is stored.
func (s *MemoryStore) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok
}

// Len returns the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
