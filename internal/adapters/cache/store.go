// Package cache implements the persisted validation cache as a flat JSON
// file keyed by path identity.
package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/storyloom/warden/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.ValidationStore using a flat JSON file. Keys are
// content-addressed identities, never positions, so reordering paths in
// the story leaves prior approvals intact.
type Store struct {
	path    string
	mu      sync.RWMutex
	entries map[domain.Identity]domain.PathEntry
}

// NewStore creates a validation store backed by the file at the given
// path. A missing file is treated as an empty cache.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:    filepath.Clean(path),
		entries: make(map[domain.Identity]domain.PathEntry),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() error {
	s.entries = make(map[domain.Identity]domain.PathEntry)

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read validation cache")
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		return zerr.Wrap(err, "failed to unmarshal validation cache")
	}

	// The identity lives in the map key on disk; restore it on the value.
	for id, entry := range s.entries {
		entry.Identity = id
		s.entries[id] = entry
	}

	return nil
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal validation cache")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for validation cache")
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return zerr.Wrap(err, "failed to write validation cache")
	}

	return nil
}

// Get retrieves the entry for an identity. Returns nil, nil if absent.
func (s *Store) Get(id domain.Identity) (*domain.PathEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Put stores or replaces an entry and persists the cache.
func (s *Store) Put(entry domain.PathEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.Identity] = entry
	return s.saveLocked()
}

// All returns a copy of every entry in the cache.
func (s *Store) All() (map[domain.Identity]domain.PathEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.Identity]domain.PathEntry, len(s.entries))
	for id, entry := range s.entries {
		out[id] = entry
	}
	return out, nil
}

// Approve marks the given identities approved and persists the cache if
// anything changed. Approval is a set-union operation: re-approving an
// already-approved identity reports success without rewriting the file.
func (s *Store) Approve(ids []domain.Identity) (approved, missing []domain.Identity, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, id := range ids {
		entry, ok := s.entries[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		if !entry.Approved {
			entry.Approved = true
			s.entries[id] = entry
			changed = true
		}
		approved = append(approved, id)
	}

	if changed {
		if err := s.saveLocked(); err != nil {
			return nil, nil, err
		}
	}
	return approved, missing, nil
}

// Reload re-reads the cache from disk, discarding the in-memory copy.
func (s *Store) Reload() error {
	return s.load()
}

// Path returns the location of the cache file.
func (s *Store) Path() string {
	return s.path
}
