// cartclient/storage.go
package cartclient

import (
	"encoding/json"
	"log"
	"os"
	"strings"
	"sync"
)

// Storage slot keys kept stable for compatibility with existing clients.
const (
	KeyCartID            = "cartId"
	KeyGuestCartID       = "guestCartId"
	KeyCustomerShopifyID = "customerShopifyId"
)

// Store is a small persisted key/value surface. Implementations may fail
// (storage disabled by the host environment); callers should wrap a Store
// in SafeStore rather than handling errors at every call site.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// SafeStore wraps a Store so that every operation degrades to a no-op or
// empty return instead of failing. Failures are logged once per call.
type SafeStore struct {
	inner Store
}

func NewSafeStore(inner Store) *SafeStore {
	return &SafeStore{inner: inner}
}

func (s *SafeStore) Get(key string) string {
	if s == nil || s.inner == nil {
		return ""
	}
	v, err := s.inner.Get(key)
	if err != nil {
		log.Printf("[cartclient.storage] WARN: get %q failed: %v", key, err)
		return ""
	}
	return v
}

func (s *SafeStore) Set(key, value string) {
	if s == nil || s.inner == nil {
		return
	}
	if err := s.inner.Set(key, value); err != nil {
		log.Printf("[cartclient.storage] WARN: set %q failed: %v", key, err)
	}
}

func (s *SafeStore) Remove(key string) {
	if s == nil || s.inner == nil {
		return
	}
	if err := s.inner.Remove(key); err != nil {
		log.Printf("[cartclient.storage] WARN: remove %q failed: %v", key, err)
	}
}

// CartRef is the single local cart reference. Owned reports whether the id
// refers to a customer-owned cart; a guest id is tentative until merged or
// adopted. The two legacy slots are projections of this one value so they
// can never disagree.
type CartRef struct {
	ID    string
	Owned bool
}

func (r CartRef) Empty() bool { return strings.TrimSpace(r.ID) == "" }

// LoadCartRef reads the slots back into a CartRef. cartId wins when both
// slots are set; a bare guestCartId is a guest reference.
func LoadCartRef(s *SafeStore) CartRef {
	if id := strings.TrimSpace(s.Get(KeyCartID)); id != "" {
		guest := strings.TrimSpace(s.Get(KeyGuestCartID))
		return CartRef{ID: id, Owned: guest != id}
	}
	if id := strings.TrimSpace(s.Get(KeyGuestCartID)); id != "" {
		return CartRef{ID: id, Owned: false}
	}
	return CartRef{}
}

// SaveCartRef projects the reference onto both slots: an owned cart lives in
// cartId only, a guest cart is mirrored into guestCartId as well.
func SaveCartRef(s *SafeStore, ref CartRef) {
	if ref.Empty() {
		s.Remove(KeyCartID)
		s.Remove(KeyGuestCartID)
		return
	}
	s.Set(KeyCartID, ref.ID)
	if ref.Owned {
		s.Remove(KeyGuestCartID)
	} else {
		s.Set(KeyGuestCartID, ref.ID)
	}
}

// MemoryStore is an in-process Store, used in tests and as a fallback when
// no persistent path is available.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: map[string]string{}}
}

func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[key], nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// FileStore persists slots as a small JSON file. Every mutation rewrites the
// whole file; the value set is three short strings so this stays cheap.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	m := map[string]string{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *FileStore) save(m map[string]string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.load()
	if err != nil {
		return "", err
	}
	return m[key], nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.load()
	if err != nil {
		return err
	}
	m[key] = value
	return s.save(m)
}

func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.load()
	if err != nil {
		return err
	}
	delete(m, key)
	return s.save(m)
}
