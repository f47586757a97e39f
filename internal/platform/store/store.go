// Package store persists named record collections in a key-value backend.
// Each collection lives under a single key as an ordered JSON array, and
// every mutation is a wholesale read-modify-write of that array. A single
// adapter mutex serializes writers; this is a single-process guarantee only.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Collection keys. Consumers must tolerate absent keys (empty collection).
const (
	CollectionUsers         = "users"
	CollectionPatients      = "patients"
	CollectionResults       = "screening_results"
	CollectionPrescriptions = "prescriptions"
)

// KV is the minimal key-value contract a backend must satisfy.
// Get returns (nil, nil) for an absent key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Store serializes collection access over a KV backend.
type Store struct {
	kv KV
	mu sync.Mutex
}

func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Load reads a collection. An absent key yields an empty slice.
func Load[T any](ctx context.Context, s *Store, collection string) ([]T, error) {
	raw, err := s.kv.Get(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", collection, err)
	}
	if raw == nil {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", collection, err)
	}
	return records, nil
}

// Save writes a collection wholesale, preserving record order.
func Save[T any](ctx context.Context, s *Store, collection string, records []T) error {
	if records == nil {
		records = []T{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", collection, err)
	}
	if err := s.kv.Put(ctx, collection, raw); err != nil {
		return fmt.Errorf("save collection %s: %w", collection, err)
	}
	return nil
}

// Update applies fn to the current contents of a collection and writes the
// result back under the adapter mutex.
func Update[T any](ctx context.Context, s *Store, collection string, fn func(records []T) ([]T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := Load[T](ctx, s, collection)
	if err != nil {
		return err
	}
	updated, err := fn(records)
	if err != nil {
		return err
	}
	return Save(ctx, s, collection, updated)
}

// Append adds a record to the end of a collection.
func Append[T any](ctx context.Context, s *Store, collection string, record T) error {
	return Update(ctx, s, collection, func(records []T) ([]T, error) {
		return append(records, record), nil
	})
}
