package storage

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
)

// Fixed keys for the state the gateway keeps between runs.
const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
	KeyToken    = "token"
	KeyUser     = "user"
)

var ErrNotFound = errors.New("storage: key not found")

// Storage is a small key/value store for serialized client state.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// Memory keeps values for the lifetime of the process only. It plays the
// part of session storage: nothing in it survives a restart.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// LoadJSON decodes the value under key into v. A missing key returns
// ErrNotFound; undecodable data is returned as a wrapped decode error so
// callers can tell corruption apart from absence.
func LoadJSON(s Storage, key string, v any) error {
	raw, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "decode %q", key)
	}
	return nil
}

func SaveJSON(s Storage, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %q", key)
	}
	return errors.Wrapf(s.Set(key, raw), "save %q", key)
}
