package token

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Key is the fixed name the credential is stored under.
const Key = "authToken"

var (
	ErrNotFound = errors.New("session not found")
)

// Reader yields the current credential. ok is false when the user is
// unauthenticated; an empty credential is never reported as present.
type Reader interface {
	Get() (token string, ok bool)
}

// Store saves, reads and clears a single opaque credential.
type Store interface {
	Reader
	Set(token string) error
	Clear() error
}

// Present reports whether r holds a credential. A nil Reader holds none.
func Present(r Reader) (string, bool) {
	if r == nil {
		return "", false
	}
	tok, ok := r.Get()
	if !ok || tok == "" {
		return "", false
	}
	return tok, true
}

// MemoryStore keeps the credential in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (s *MemoryStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Clear() error {
	return s.Set("")
}

// FileStore persists the credential in a single file so it survives restarts.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get() (string, bool) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	tok := strings.TrimSpace(string(b))
	return tok, tok != ""
}

func (s *FileStore) Set(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token+"\n"), 0o600)
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
