// Package determinism provides primitives for deterministic output.
// Reports iterate maps in key order and fingerprint their inputs.
package determinism

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"slices"
)

// StableMap is a map that iterates in ascending key order.
// It is not safe for concurrent use.
type StableMap[K cmp.Ordered, V any] struct {
	keys   []K
	values map[K]V
}

// NewStableMap creates a new StableMap
func NewStableMap[K cmp.Ordered, V any]() *StableMap[K, V] {
	return &StableMap[K, V]{values: make(map[K]V)}
}

// Set adds or updates a key-value pair
func (m *StableMap[K, V]) Set(key K, value V) {
	if _, exists := m.values[key]; !exists {
		i, _ := slices.BinarySearch(m.keys, key)
		m.keys = slices.Insert(m.keys, i, key)
	}
	m.values[key] = value
}

// Get retrieves a value by key
func (m *StableMap[K, V]) Get(key K) (V, bool) {
	val, ok := m.values[key]
	return val, ok
}

// Update replaces the value at key with fn(current), starting from the zero value
func (m *StableMap[K, V]) Update(key K, fn func(V) V) {
	current := m.values[key]
	m.Set(key, fn(current))
}

// Range iterates in key order until fn returns false
func (m *StableMap[K, V]) Range(fn func(K, V) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			break
		}
	}
}

// Keys returns all keys in order
func (m *StableMap[K, V]) Keys() []K {
	return slices.Clone(m.keys)
}

// Len returns the number of entries
func (m *StableMap[K, V]) Len() int {
	return len(m.keys)
}

// SortedKeys returns a map's keys in ascending order
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ContentHash is a SHA-256 hash of an input
type ContentHash [32]byte

// ComputeHash computes a content hash from bytes
func ComputeHash(data []byte) ContentHash {
	return sha256.Sum256(data)
}

// Hex returns the hash as a hex string
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex digits
func (h ContentHash) Short() string {
	return h.Hex()[:12]
}
