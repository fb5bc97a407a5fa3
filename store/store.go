// Package store is the durable device-local state of the storefront. It
// keeps one JSON record per logical key on disk, the way the browser kept
// them in local storage. Keys form a closed set so callers cannot collide
// by building key names dynamically.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type Key string

const (
	KeyAuth Key = "auth"
	KeyCart Key = "cart"
)

var keys = []Key{KeyAuth, KeyCart}

// ErrNotFound reports a key that was never written. A stored empty or
// zero value reads back fine and does not produce this error.
var ErrNotFound = errors.New("store: key not found")

type Store struct {
	dir string

	// Serializes read-modify-write cycles within this process. Access
	// from a second process is not coordinated; see Update.
	mu sync.Mutex
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key Key) string {
	return filepath.Join(s.dir, string(key)+".json")
}

// Write serializes val and stores it under key, replacing any prior value.
// A value that cannot be serialized surfaces an error and leaves the
// stored record untouched.
func (s *Store) Write(key Key, val any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(key, val)
}

func (s *Store) write(key Key, val any) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("serializing value for key %q: %w", key, err)
	}

	// Write-then-rename so a crash mid-write never leaves a torn record.
	tmp, err := os.CreateTemp(s.dir, string(key)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for key %q: %w", key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing value for key %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file for key %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storing value for key %q: %w", key, err)
	}
	return nil
}

// Read deserializes the value stored under key into val. It returns
// ErrNotFound if the key was never written.
func (s *Store) Read(key Key, val any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(key, val)
}

func (s *Store) read(key Key, val any) error {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading value for key %q: %w", key, err)
	}
	if err := json.Unmarshal(data, val); err != nil {
		return fmt.Errorf("deserializing value for key %q: %w", key, err)
	}
	return nil
}

// Delete removes the record for key. Deleting an absent key is a no-op.
func (s *Store) Delete(key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("deleting key %q: %w", key, err)
	}
	return nil
}

// Clear removes every record the storefront owns. Irreversible.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		err := os.Remove(s.path(key))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("clearing key %q: %w", key, err)
		}
	}
	return nil
}

// Update runs a read-modify-write cycle for key as one atomic step with
// respect to other callers in this process. The transform receives
// ErrNotFound as found=false rather than an error, so it can initialize
// state lazily. The read-modify-write is not coordinated across
// processes; running two storefront instances over one store directory
// can lose updates.
func Update[T any](s *Store, key Key, transform func(val T, found bool) (T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var val T
	found := true
	if err := s.read(key, &val); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		found = false
	}

	next, err := transform(val, found)
	if err != nil {
		return err
	}
	return s.write(key, next)
}
