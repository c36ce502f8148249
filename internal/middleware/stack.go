package middleware

import (
	"sync"

	"github.com/google/uuid"
	orderedmap "github.com/pb33f/ordered-map/v2"
)

// Key identifies an entry in a Stack. A key is either a name chosen by the
// caller or an opaque token; a named key never equals a token, so generated
// keys cannot collide with user-chosen names.
type Key struct {
	name  string
	token uuid.UUID
}

// Named returns the key for a caller-chosen name.
func Named(name string) Key {
	return Key{name: name}
}

// NewKey returns a fresh symbolic key that is unequal to every other key.
func NewKey() Key {
	return Key{token: uuid.New()}
}

// IsZero reports whether k is the zero key. Use treats the zero key as a
// request to generate one.
func (k Key) IsZero() bool {
	return k == Key{}
}

func (k Key) String() string {
	if k.name != "" {
		return k.name
	}
	return "key-" + k.token.String()
}

// Entry is one keyed function in a Stack snapshot.
type Entry[F any] struct {
	Key Key
	Fn  F
}

// Stack is an ordered, keyed collection of functions. Iteration order is the
// insertion order of the current members. Safe for concurrent use.
type Stack[F any] struct {
	mu      sync.RWMutex
	entries *orderedmap.OrderedMap[Key, F]
}

// NewStack creates an empty Stack.
func NewStack[F any]() *Stack[F] {
	return &Stack[F]{entries: orderedmap.New[Key, F]()}
}

// Use appends fn under key and returns the key. A zero key is replaced by a
// generated one. Using a key that is already present replaces its function
// in place without changing its position; Remove followed by Use moves the
// entry to the end.
func (s *Stack[F]) Use(fn F, key Key) Key {
	if key.IsZero() {
		key = NewKey()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Set(key, fn)
	return key
}

// Has reports whether key is present.
func (s *Stack[F]) Has(key Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries.Get(key)
	return ok
}

// Get returns the function stored under key.
func (s *Stack[F]) Get(key Key) (F, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.Get(key)
}

// Remove deletes key and reports whether it was present.
func (s *Stack[F]) Remove(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries.Delete(key)
	return ok
}

// Len returns the number of entries.
func (s *Stack[F]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.Len()
}

// Keys returns the keys in chain order.
func (s *Stack[F]) Keys() []Key {
	entries := s.Entries()
	keys := make([]Key, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a snapshot of the stack in chain order. The snapshot is
// unaffected by later Use or Remove calls, so a chain composed from it stays
// stable for the lifetime of one request.
func (s *Stack[F]) Entries() []Entry[F] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry[F], 0, s.entries.Len())
	for pair := s.entries.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Entry[F]{Key: pair.Key, Fn: pair.Value})
	}
	return out
}
